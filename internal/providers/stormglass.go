package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tidecast/internal/geo"
	"tidecast/internal/types"
)

// Stormglass fetches the Stormglass-style marine point API. It is a paid,
// rate-limited source, which is why it carries the coarse paid-marine
// precision tier: one upstream call covers an ~11 km cell for 12 hours.
//
// Stormglass reports every variable as a per-model object ("sg", "noaa",
// "meto"). sourceValue models that union explicitly with a documented
// preference order instead of probing keys at runtime.
type Stormglass struct {
	client  *Client
	baseURL string
	apiKey  types.SecretString
	logger  *slog.Logger
}

// NewStormglass creates the Stormglass marine provider. baseURL is
// overridable for tests.
func NewStormglass(client *Client, baseURL string, apiKey types.SecretString, logger *slog.Logger) *Stormglass {
	if baseURL == "" {
		baseURL = "https://api.stormglass.io/v2/weather/point"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Stormglass{client: client, baseURL: baseURL, apiKey: apiKey, logger: logger}
}

// ID returns the provider identifier.
func (p *Stormglass) ID() types.ProviderID { return types.ProviderStormglass }

// Metric returns the data family this provider serves.
func (p *Stormglass) Metric() types.Metric { return types.MetricMarine }

// Tier returns the coordinate precision tier for cache keying.
func (p *Stormglass) Tier() geo.PrecisionTier { return geo.TierPaidMarine }

// Fetch retrieves and normalizes the hourly marine point forecast.
func (p *Stormglass) Fetch(ctx context.Context, req types.FetchRequest) (types.ProviderPayload, error) {
	lat, lon := p.Tier().Round(req.Lat, req.Lon)
	url := fmt.Sprintf(
		"%s?lat=%.1f&lng=%.1f&params=waterTemperature,waveHeight,swellHeight,swellDirection,swellPeriod,currentSpeed,visibility",
		p.baseURL, lat, lon)
	headers := map[string]string{"Authorization": p.apiKey.Unmask()}

	var raw stormglassResponse
	if err := p.client.GetJSON(ctx, url, headers, &raw); err != nil {
		return types.ProviderPayload{}, err
	}

	records, err := NormalizeStormglass(raw)
	if err != nil {
		return types.ProviderPayload{}, err
	}
	return types.ProviderPayload{Marine: records}, nil
}

// sourceValue is the typed union for one Stormglass variable: the same
// measurement as produced by up to three upstream models. Preference order
// is sg, then noaa, then meto; pick returns the first present value.
type sourceValue struct {
	SG   *float64 `json:"sg"`
	NOAA *float64 `json:"noaa"`
	Meto *float64 `json:"meto"`
}

// pick resolves the union by the documented preference order.
func (v sourceValue) pick() (float64, bool) {
	switch {
	case v.SG != nil:
		return *v.SG, true
	case v.NOAA != nil:
		return *v.NOAA, true
	case v.Meto != nil:
		return *v.Meto, true
	default:
		return 0, false
	}
}

// pickPtr is pick for optional record fields.
func (v sourceValue) pickPtr() *float64 {
	if val, ok := v.pick(); ok {
		return &val
	}
	return nil
}

type stormglassResponse struct {
	Hours []stormglassHour `json:"hours"`
}

type stormglassHour struct {
	Time             string      `json:"time"`
	WaterTemperature sourceValue `json:"waterTemperature"` // Celsius
	WaveHeight       sourceValue `json:"waveHeight"`       // metres
	SwellHeight      sourceValue `json:"swellHeight"`      // metres
	SwellDirection   sourceValue `json:"swellDirection"`   // degrees
	SwellPeriod      sourceValue `json:"swellPeriod"`      // seconds
	CurrentSpeed     sourceValue `json:"currentSpeed"`     // m/s
	Visibility       sourceValue `json:"visibility"`       // km
}

// NormalizeStormglass maps a Stormglass point payload to canonical marine
// records. Current speed converts m/s to knots. Hours missing any core
// variable across all three models are a schema mismatch; optional current
// and visibility simply stay absent.
func NormalizeStormglass(raw stormglassResponse) ([]types.MarineRecord, error) {
	if len(raw.Hours) == 0 {
		return nil, types.NewSchemaMismatch(types.ProviderStormglass, "hours", nil)
	}

	records := make([]types.MarineRecord, 0, len(raw.Hours))
	for _, hour := range raw.Hours {
		ts, err := time.Parse(time.RFC3339, hour.Time)
		if err != nil {
			return nil, types.NewSchemaMismatch(types.ProviderStormglass, "hours.time", err)
		}

		waterTemp, ok := hour.WaterTemperature.pick()
		if !ok {
			return nil, types.NewSchemaMismatch(types.ProviderStormglass, "hours.waterTemperature", nil)
		}
		waveHeight, ok := hour.WaveHeight.pick()
		if !ok {
			return nil, types.NewSchemaMismatch(types.ProviderStormglass, "hours.waveHeight", nil)
		}
		swellHeight, ok := hour.SwellHeight.pick()
		if !ok {
			return nil, types.NewSchemaMismatch(types.ProviderStormglass, "hours.swellHeight", nil)
		}
		swellDir, ok := hour.SwellDirection.pick()
		if !ok {
			return nil, types.NewSchemaMismatch(types.ProviderStormglass, "hours.swellDirection", nil)
		}
		swellPeriod, ok := hour.SwellPeriod.pick()
		if !ok {
			return nil, types.NewSchemaMismatch(types.ProviderStormglass, "hours.swellPeriod", nil)
		}

		rec := types.MarineRecord{
			Timestamp:    ts.UTC(),
			WaterTempC:   waterTemp,
			WaveHeightM:  waveHeight,
			SwellHeightM: swellHeight,
			SwellDirDeg:  swellDir,
			SwellPeriodS: swellPeriod,
			VisibilityKm: hour.Visibility.pickPtr(),
		}
		if cur := hour.CurrentSpeed.pickPtr(); cur != nil {
			rec.CurrentSpeedKn = ptr(*cur * mpsToKn)
		}
		if err := checkMarineRecord(types.ProviderStormglass, rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sortMarine(records)
	return records, nil
}
