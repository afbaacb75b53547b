package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tidecast/internal/geo"
	"tidecast/internal/types"
)

// OpenWeather fetches the 5-day/3-hour forecast from OpenWeatherMap. It is
// the generic global provider: first choice outside the Nordic and CONUS
// boxes, second choice inside them. Requires an API key (freemium tier).
type OpenWeather struct {
	client  *Client
	baseURL string
	apiKey  types.SecretString
	logger  *slog.Logger
}

// NewOpenWeather creates the OpenWeather provider. baseURL is overridable
// for tests.
func NewOpenWeather(client *Client, baseURL string, apiKey types.SecretString, logger *slog.Logger) *OpenWeather {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5/forecast"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenWeather{client: client, baseURL: baseURL, apiKey: apiKey, logger: logger}
}

// ID returns the provider identifier.
func (p *OpenWeather) ID() types.ProviderID { return types.ProviderOpenWeather }

// Metric returns the data family this provider serves.
func (p *OpenWeather) Metric() types.Metric { return types.MetricWeather }

// Tier returns the coordinate precision tier for cache keying.
func (p *OpenWeather) Tier() geo.PrecisionTier { return geo.TierStandard }

// Fetch retrieves and normalizes the 3-hourly forecast for the coordinate.
func (p *OpenWeather) Fetch(ctx context.Context, req types.FetchRequest) (types.ProviderPayload, error) {
	lat, lon := p.Tier().Round(req.Lat, req.Lon)
	url := fmt.Sprintf("%s?lat=%.3f&lon=%.3f&units=metric&appid=%s",
		p.baseURL, lat, lon, p.apiKey.Unmask())

	var raw openWeatherResponse
	if err := p.client.GetJSON(ctx, url, nil, &raw); err != nil {
		return types.ProviderPayload{}, err
	}

	records, err := NormalizeOpenWeather(raw)
	if err != nil {
		return types.ProviderPayload{}, err
	}
	return types.ProviderPayload{Weather: records}, nil
}

type openWeatherResponse struct {
	List []openWeatherStep `json:"list"`
}

type openWeatherStep struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     *float64 `json:"temp"`
		Pressure *float64 `json:"pressure"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
		Deg   *float64 `json:"deg"`
		Gust  *float64 `json:"gust"`
	} `json:"wind"`
	Pop     *float64 `json:"pop"` // probability 0..1
	Rain    struct {
		ThreeHours *float64 `json:"3h"`
	} `json:"rain"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Sys struct {
		Pod string `json:"pod"` // "d" or "n"
	} `json:"sys"`
}

// NormalizeOpenWeather maps an OpenWeatherMap forecast payload to canonical
// weather records. With units=metric the temperatures are already Celsius
// and wind speeds m/s; the probability-of-precipitation fraction is scaled
// to a percentage.
func NormalizeOpenWeather(raw openWeatherResponse) ([]types.WeatherRecord, error) {
	if len(raw.List) == 0 {
		return nil, types.NewSchemaMismatch(types.ProviderOpenWeather, "list", nil)
	}

	records := make([]types.WeatherRecord, 0, len(raw.List))
	for _, step := range raw.List {
		if step.Dt == 0 {
			return nil, types.NewSchemaMismatch(types.ProviderOpenWeather, "list.dt", nil)
		}
		if step.Main.Temp == nil || step.Wind.Speed == nil || step.Wind.Deg == nil {
			return nil, types.NewSchemaMismatch(types.ProviderOpenWeather, "list.main/wind", nil)
		}

		rec := types.WeatherRecord{
			Timestamp:       time.Unix(step.Dt, 0).UTC(),
			AirTempC:        *step.Main.Temp,
			WindSpeedMps:    *step.Wind.Speed,
			WindDirDeg:      *step.Wind.Deg,
			WindGustMps:     step.Wind.Gust,
			PressureHpa:     step.Main.Pressure,
			HumidityPct:     step.Main.Humidity,
			PrecipitationMm: step.Rain.ThreeHours,
			IsDaytime:       step.Sys.Pod != "n",
		}
		if step.Pop != nil {
			rec.PrecipProbPct = ptr(*step.Pop * 100.0)
		}
		if len(step.Weather) > 0 {
			rec.ConditionCode = step.Weather[0].Main
		}
		records = append(records, rec)
	}

	if err := checkWeatherSeries(types.ProviderOpenWeather, records); err != nil {
		return nil, err
	}
	return records, nil
}
