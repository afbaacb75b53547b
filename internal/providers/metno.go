package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tidecast/internal/geo"
	"tidecast/internal/types"
)

// METNorway fetches the locationforecast/2.0 compact product. It is the
// priority weather source inside the Nordic/European coverage box: no API
// key, generous terms, but a strict identification policy (User-Agent is
// mandatory, and coordinates must be truncated to avoid cache-busting their
// CDN -- which the standard precision tier already guarantees).
type METNorway struct {
	client  *Client
	baseURL string
	logger  *slog.Logger
}

// NewMETNorway creates the MET Norway provider. baseURL is overridable for
// tests; pass "" for the production endpoint.
func NewMETNorway(client *Client, baseURL string, logger *slog.Logger) *METNorway {
	if baseURL == "" {
		baseURL = "https://api.met.no/weatherapi/locationforecast/2.0/compact"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &METNorway{client: client, baseURL: baseURL, logger: logger}
}

// ID returns the provider identifier.
func (p *METNorway) ID() types.ProviderID { return types.ProviderMETNorway }

// Metric returns the data family this provider serves.
func (p *METNorway) Metric() types.Metric { return types.MetricWeather }

// Tier returns the coordinate precision tier for cache keying.
func (p *METNorway) Tier() geo.PrecisionTier { return geo.TierStandard }

// Fetch retrieves and normalizes the hourly forecast for the coordinate.
func (p *METNorway) Fetch(ctx context.Context, req types.FetchRequest) (types.ProviderPayload, error) {
	lat, lon := p.Tier().Round(req.Lat, req.Lon)
	url := fmt.Sprintf("%s?lat=%.3f&lon=%.3f", p.baseURL, lat, lon)

	var raw metnoResponse
	if err := p.client.GetJSON(ctx, url, nil, &raw); err != nil {
		return types.ProviderPayload{}, err
	}

	records, err := NormalizeMETNorway(raw)
	if err != nil {
		return types.ProviderPayload{}, err
	}
	return types.ProviderPayload{Weather: records}, nil
}

// metnoResponse mirrors the locationforecast compact schema. Only the
// fields the canonical model needs are declared.
type metnoResponse struct {
	Properties struct {
		Timeseries []metnoTimestep `json:"timeseries"`
	} `json:"properties"`
}

type metnoTimestep struct {
	Time time.Time `json:"time"`
	Data struct {
		Instant struct {
			Details struct {
				AirPressureAtSeaLevel *float64 `json:"air_pressure_at_sea_level"`
				AirTemperature        *float64 `json:"air_temperature"`
				RelativeHumidity      *float64 `json:"relative_humidity"`
				WindFromDirection     *float64 `json:"wind_from_direction"`
				WindSpeed             *float64 `json:"wind_speed"`
				WindSpeedOfGust       *float64 `json:"wind_speed_of_gust"`
			} `json:"details"`
		} `json:"instant"`
		Next1Hours *struct {
			Summary struct {
				SymbolCode string `json:"symbol_code"`
			} `json:"summary"`
			Details struct {
				PrecipitationAmount        *float64 `json:"precipitation_amount"`
				ProbabilityOfPrecipitation *float64 `json:"probability_of_precipitation"`
			} `json:"details"`
		} `json:"next_1_hours"`
	} `json:"data"`
}

// NormalizeMETNorway maps a locationforecast payload to canonical weather
// records. MET Norway already reports metric units (Celsius, m/s, hPa), so
// no conversion is needed -- only schema flattening. Time-steps missing the
// core instant measurements (temperature, wind) are a schema violation, not
// something to default.
func NormalizeMETNorway(raw metnoResponse) ([]types.WeatherRecord, error) {
	steps := raw.Properties.Timeseries
	if len(steps) == 0 {
		return nil, types.NewSchemaMismatch(types.ProviderMETNorway, "properties.timeseries", nil)
	}

	records := make([]types.WeatherRecord, 0, len(steps))
	for _, step := range steps {
		if step.Time.IsZero() {
			return nil, types.NewSchemaMismatch(types.ProviderMETNorway, "timeseries.time", nil)
		}
		d := step.Data.Instant.Details
		if d.AirTemperature == nil || d.WindSpeed == nil || d.WindFromDirection == nil {
			return nil, types.NewSchemaMismatch(types.ProviderMETNorway, "instant.details", nil)
		}

		rec := types.WeatherRecord{
			Timestamp:    step.Time.UTC(),
			AirTempC:     *d.AirTemperature,
			WindSpeedMps: *d.WindSpeed,
			WindDirDeg:   *d.WindFromDirection,
			WindGustMps:  d.WindSpeedOfGust,
			PressureHpa:  d.AirPressureAtSeaLevel,
			HumidityPct:  d.RelativeHumidity,
		}
		if next := step.Data.Next1Hours; next != nil {
			rec.ConditionCode = next.Summary.SymbolCode
			rec.PrecipitationMm = next.Details.PrecipitationAmount
			rec.PrecipProbPct = next.Details.ProbabilityOfPrecipitation
		}
		rec.IsDaytime = metnoIsDaytime(rec.ConditionCode, rec.Timestamp)
		records = append(records, rec)
	}

	if err := checkWeatherSeries(types.ProviderMETNorway, records); err != nil {
		return nil, err
	}
	return records, nil
}

// metnoIsDaytime derives daylight from the symbol code variant suffix
// ("clearsky_day", "fair_night"); entries without a symbol fall back to a
// fixed 06-20 UTC window.
func metnoIsDaytime(symbolCode string, ts time.Time) bool {
	switch {
	case strings.HasSuffix(symbolCode, "_day"):
		return true
	case strings.HasSuffix(symbolCode, "_night"):
		return false
	default:
		h := ts.Hour()
		return h >= 6 && h < 20
	}
}
