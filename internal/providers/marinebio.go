package providers

import (
	"context"
	"fmt"
	"log/slog"

	"tidecast/internal/geo"
	"tidecast/internal/types"
)

// MarineBio fetches surface biogeochemistry (chlorophyll, KD490, dissolved
// oxygen, nutrients, salinity, temperature) from a Copernicus-style marine
// service. The dataset is selected per coordinate by the region rule table;
// the textual region label, when the caller supplies one, takes precedence
// over bounding boxes.
//
// Every variable is independently optional. Open-ocean cells routinely lack
// nutrients or KD490, and the scoring engine is built to degrade around
// absent fields, so a sparse response is a valid response.
type MarineBio struct {
	client  *Client
	baseURL string
	logger  *slog.Logger
}

// NewMarineBio creates the biogeochemical provider. baseURL is overridable
// for tests.
func NewMarineBio(client *Client, baseURL string, logger *slog.Logger) *MarineBio {
	if baseURL == "" {
		baseURL = "https://ocean.tidecast.io/v1/biogeochemistry"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MarineBio{client: client, baseURL: baseURL, logger: logger}
}

// ID returns the provider identifier.
func (p *MarineBio) ID() types.ProviderID { return types.ProviderMarineBio }

// Metric returns the data family this provider serves.
func (p *MarineBio) Metric() types.Metric { return types.MetricBiogeochemical }

// Tier returns the coordinate precision tier for cache keying.
// Biogeochemical model cells are ~4 km and refresh daily, so the
// environmental tier's 6-hour TTL is already conservative.
func (p *MarineBio) Tier() geo.PrecisionTier { return geo.TierEnvironmental }

// Fetch resolves the dataset region for the coordinate and normalizes the
// surface snapshot.
func (p *MarineBio) Fetch(ctx context.Context, req types.FetchRequest) (types.ProviderPayload, error) {
	region := geo.SelectMarineRegion(req.RegionLabel, req.Lat, req.Lon)
	lat, lon := p.Tier().Round(req.Lat, req.Lon)
	url := fmt.Sprintf("%s?dataset=%s&lat=%.2f&lon=%.2f", p.baseURL, region, lat, lon)

	var raw marineBioResponse
	if err := p.client.GetJSON(ctx, url, nil, &raw); err != nil {
		return types.ProviderPayload{}, err
	}

	bio, err := NormalizeMarineBio(raw)
	if err != nil {
		return types.ProviderPayload{}, err
	}
	return types.ProviderPayload{Bio: bio}, nil
}

// marineBioResponse mirrors the service schema: a dataset identifier plus a
// flat map of surface variables in Copernicus naming.
type marineBioResponse struct {
	Dataset string `json:"dataset"`
	Surface *struct {
		Chl    *float64 `json:"chl"`    // chlorophyll-a, mg/m3
		Kd490  *float64 `json:"kd490"`  // light attenuation, 1/m
		O2     *float64 `json:"o2"`     // dissolved oxygen, mg/L
		No3    *float64 `json:"no3"`    // nitrate, umol/L
		Po4    *float64 `json:"po4"`    // phosphate, umol/L
		So     *float64 `json:"so"`     // salinity, PSU
		Thetao *float64 `json:"thetao"` // potential temperature, Celsius
	} `json:"surface"`
}

// NormalizeMarineBio maps the surface snapshot to BiogeochemicalData. A
// missing surface object means the payload is malformed; missing individual
// variables are first-class absence and pass through as nil.
func NormalizeMarineBio(raw marineBioResponse) (*types.BiogeochemicalData, error) {
	if raw.Surface == nil {
		return nil, types.NewSchemaMismatch(types.ProviderMarineBio, "surface", nil)
	}
	s := raw.Surface
	return &types.BiogeochemicalData{
		ChlorophyllMgM3: s.Chl,
		WaterClarityKd:  s.Kd490,
		DissolvedOxygen: s.O2,
		NitrateUmolL:    s.No3,
		PhosphateUmolL:  s.Po4,
		SalinityPsu:     s.So,
		WaterTempC:      s.Thetao,
	}, nil
}
