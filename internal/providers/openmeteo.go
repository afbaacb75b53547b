package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"tidecast/internal/geo"
	"tidecast/internal/types"
)

// Open-Meteo is the keyless fallback at the end of every provider chain,
// for both weather and marine data. Its columnar hourly-array schema is
// shared between the two endpoints, so both providers live in this file.

// OpenMeteoWeather fetches the Open-Meteo forecast endpoint.
type OpenMeteoWeather struct {
	client  *Client
	baseURL string
	logger  *slog.Logger
}

// NewOpenMeteoWeather creates the Open-Meteo weather provider. baseURL is
// overridable for tests.
func NewOpenMeteoWeather(client *Client, baseURL string, logger *slog.Logger) *OpenMeteoWeather {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1/forecast"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenMeteoWeather{client: client, baseURL: baseURL, logger: logger}
}

// ID returns the provider identifier.
func (p *OpenMeteoWeather) ID() types.ProviderID { return types.ProviderOpenMeteo }

// Metric returns the data family this provider serves.
func (p *OpenMeteoWeather) Metric() types.Metric { return types.MetricWeather }

// Tier returns the coordinate precision tier for cache keying.
func (p *OpenMeteoWeather) Tier() geo.PrecisionTier { return geo.TierStandard }

// Fetch retrieves and normalizes the hourly forecast for the coordinate.
func (p *OpenMeteoWeather) Fetch(ctx context.Context, req types.FetchRequest) (types.ProviderPayload, error) {
	lat, lon := p.Tier().Round(req.Lat, req.Lon)
	url := fmt.Sprintf(
		"%s?latitude=%.3f&longitude=%.3f&hourly=temperature_2m,wind_speed_10m,wind_direction_10m,wind_gusts_10m,surface_pressure,relative_humidity_2m,precipitation,precipitation_probability,weather_code,is_day&timeformat=unixtime",
		p.baseURL, lat, lon)

	var raw openMeteoWeatherResponse
	if err := p.client.GetJSON(ctx, url, nil, &raw); err != nil {
		return types.ProviderPayload{}, err
	}

	records, err := NormalizeOpenMeteoWeather(raw)
	if err != nil {
		return types.ProviderPayload{}, err
	}
	return types.ProviderPayload{Weather: records}, nil
}

type openMeteoWeatherResponse struct {
	Hourly struct {
		Time                     []int64    `json:"time"`
		Temperature2m            []*float64 `json:"temperature_2m"`
		WindSpeed10m             []*float64 `json:"wind_speed_10m"` // km/h
		WindDirection10m         []*float64 `json:"wind_direction_10m"`
		WindGusts10m             []*float64 `json:"wind_gusts_10m"` // km/h
		SurfacePressure          []*float64 `json:"surface_pressure"`
		RelativeHumidity2m       []*float64 `json:"relative_humidity_2m"`
		Precipitation            []*float64 `json:"precipitation"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		WeatherCode              []*int     `json:"weather_code"`
		IsDay                    []*int     `json:"is_day"`
	} `json:"hourly"`
}

// NormalizeOpenMeteoWeather maps the columnar hourly arrays to canonical
// records. Open-Meteo reports wind in km/h by default; conversion to m/s
// happens here. Array columns shorter than the time column are a schema
// violation for core fields and treated as absent for optional ones.
func NormalizeOpenMeteoWeather(raw openMeteoWeatherResponse) ([]types.WeatherRecord, error) {
	h := raw.Hourly
	n := len(h.Time)
	if n == 0 {
		return nil, types.NewSchemaMismatch(types.ProviderOpenMeteo, "hourly.time", nil)
	}
	if len(h.Temperature2m) < n || len(h.WindSpeed10m) < n || len(h.WindDirection10m) < n {
		return nil, types.NewSchemaMismatch(types.ProviderOpenMeteo, "hourly", fmt.Errorf("core column shorter than time axis"))
	}

	records := make([]types.WeatherRecord, 0, n)
	for i := 0; i < n; i++ {
		if h.Temperature2m[i] == nil || h.WindSpeed10m[i] == nil || h.WindDirection10m[i] == nil {
			return nil, types.NewSchemaMismatch(types.ProviderOpenMeteo, "hourly["+strconv.Itoa(i)+"]", nil)
		}
		rec := types.WeatherRecord{
			Timestamp:    time.Unix(h.Time[i], 0).UTC(),
			AirTempC:     *h.Temperature2m[i],
			WindSpeedMps: *h.WindSpeed10m[i] * kmhToMps,
			WindDirDeg:   *h.WindDirection10m[i],
		}
		if v := col(h.WindGusts10m, i); v != nil {
			rec.WindGustMps = ptr(*v * kmhToMps)
		}
		rec.PressureHpa = col(h.SurfacePressure, i)
		rec.HumidityPct = col(h.RelativeHumidity2m, i)
		rec.PrecipitationMm = col(h.Precipitation, i)
		rec.PrecipProbPct = col(h.PrecipitationProbability, i)
		if i < len(h.WeatherCode) && h.WeatherCode[i] != nil {
			rec.ConditionCode = "wmo_" + strconv.Itoa(*h.WeatherCode[i])
		}
		if i < len(h.IsDay) && h.IsDay[i] != nil {
			rec.IsDaytime = *h.IsDay[i] == 1
		}
		records = append(records, rec)
	}

	if err := checkWeatherSeries(types.ProviderOpenMeteo, records); err != nil {
		return nil, err
	}
	return records, nil
}

// col safely indexes an optional column that may be shorter than the time
// axis.
func col(column []*float64, i int) *float64 {
	if i < len(column) {
		return column[i]
	}
	return nil
}

// OpenMeteoMarine fetches the Open-Meteo marine endpoint: the keyless
// fallback behind the Stormglass-style source.
type OpenMeteoMarine struct {
	client  *Client
	baseURL string
	logger  *slog.Logger
}

// NewOpenMeteoMarine creates the Open-Meteo marine provider. baseURL is
// overridable for tests.
func NewOpenMeteoMarine(client *Client, baseURL string, logger *slog.Logger) *OpenMeteoMarine {
	if baseURL == "" {
		baseURL = "https://marine-api.open-meteo.com/v1/marine"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenMeteoMarine{client: client, baseURL: baseURL, logger: logger}
}

// ID returns the provider identifier.
func (p *OpenMeteoMarine) ID() types.ProviderID { return types.ProviderOpenMeteo }

// Metric returns the data family this provider serves.
func (p *OpenMeteoMarine) Metric() types.Metric { return types.MetricMarine }

// Tier returns the coordinate precision tier for cache keying. Marine model
// cells are coarse, so the environmental tier is enough.
func (p *OpenMeteoMarine) Tier() geo.PrecisionTier { return geo.TierEnvironmental }

// Fetch retrieves and normalizes the hourly marine forecast.
func (p *OpenMeteoMarine) Fetch(ctx context.Context, req types.FetchRequest) (types.ProviderPayload, error) {
	lat, lon := p.Tier().Round(req.Lat, req.Lon)
	url := fmt.Sprintf(
		"%s?latitude=%.2f&longitude=%.2f&hourly=wave_height,swell_wave_height,swell_wave_direction,swell_wave_period,sea_surface_temperature,ocean_current_velocity&timeformat=unixtime",
		p.baseURL, lat, lon)

	var raw openMeteoMarineResponse
	if err := p.client.GetJSON(ctx, url, nil, &raw); err != nil {
		return types.ProviderPayload{}, err
	}

	records, err := NormalizeOpenMeteoMarine(raw)
	if err != nil {
		return types.ProviderPayload{}, err
	}
	return types.ProviderPayload{Marine: records}, nil
}

type openMeteoMarineResponse struct {
	Hourly struct {
		Time                  []int64    `json:"time"`
		WaveHeight            []*float64 `json:"wave_height"`
		SwellWaveHeight       []*float64 `json:"swell_wave_height"`
		SwellWaveDirection    []*float64 `json:"swell_wave_direction"`
		SwellWavePeriod       []*float64 `json:"swell_wave_period"`
		SeaSurfaceTemperature []*float64 `json:"sea_surface_temperature"`
		OceanCurrentVelocity  []*float64 `json:"ocean_current_velocity"` // km/h
	} `json:"hourly"`
}

// NormalizeOpenMeteoMarine maps the marine hourly arrays to canonical
// records. Current velocity converts km/h to knots; visibility is not
// offered by this endpoint and stays absent rather than defaulting.
// Physically invalid rows (negative wave height, impossible water
// temperature) reject the whole payload.
func NormalizeOpenMeteoMarine(raw openMeteoMarineResponse) ([]types.MarineRecord, error) {
	h := raw.Hourly
	n := len(h.Time)
	if n == 0 {
		return nil, types.NewSchemaMismatch(types.ProviderOpenMeteo, "hourly.time", nil)
	}

	records := make([]types.MarineRecord, 0, n)
	for i := 0; i < n; i++ {
		wave := col(h.WaveHeight, i)
		swellH := col(h.SwellWaveHeight, i)
		swellD := col(h.SwellWaveDirection, i)
		swellP := col(h.SwellWavePeriod, i)
		sst := col(h.SeaSurfaceTemperature, i)
		if wave == nil || swellH == nil || swellD == nil || swellP == nil || sst == nil {
			return nil, types.NewSchemaMismatch(types.ProviderOpenMeteo, "hourly["+strconv.Itoa(i)+"]", nil)
		}

		rec := types.MarineRecord{
			Timestamp:    time.Unix(h.Time[i], 0).UTC(),
			WaterTempC:   *sst,
			WaveHeightM:  *wave,
			SwellHeightM: *swellH,
			SwellDirDeg:  *swellD,
			SwellPeriodS: *swellP,
		}
		if v := col(h.OceanCurrentVelocity, i); v != nil {
			rec.CurrentSpeedKn = ptr(*v * kmhToKn)
		}
		if err := checkMarineRecord(types.ProviderOpenMeteo, rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sortMarine(records)
	return records, nil
}
