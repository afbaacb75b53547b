package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tidecast/internal/geo"
	"tidecast/internal/types"
)

// NWS fetches hourly gridpoint forecasts from the NOAA National Weather
// Service API. Coverage is the conterminous US only; the region selector
// never puts it first outside the CONUS box. Resolution is a two-step
// lookup: /points/{lat},{lon} resolves the grid office and the hourly
// forecast URL, which is then fetched and normalized.
type NWS struct {
	client  *Client
	baseURL string
	logger  *slog.Logger
}

// NewNWS creates the NOAA NWS provider. baseURL is overridable for tests.
func NewNWS(client *Client, baseURL string, logger *slog.Logger) *NWS {
	if baseURL == "" {
		baseURL = "https://api.weather.gov"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NWS{client: client, baseURL: baseURL, logger: logger}
}

// ID returns the provider identifier.
func (p *NWS) ID() types.ProviderID { return types.ProviderNWS }

// Metric returns the data family this provider serves.
func (p *NWS) Metric() types.Metric { return types.MetricWeather }

// Tier returns the coordinate precision tier for cache keying. NWS grid
// cells are ~2.5 km, so the environmental tier avoids needless grid lookups.
func (p *NWS) Tier() geo.PrecisionTier { return geo.TierEnvironmental }

// Fetch resolves the gridpoint for the coordinate and normalizes its hourly
// forecast.
func (p *NWS) Fetch(ctx context.Context, req types.FetchRequest) (types.ProviderPayload, error) {
	lat, lon := p.Tier().Round(req.Lat, req.Lon)

	var point nwsPointResponse
	pointURL := fmt.Sprintf("%s/points/%.2f,%.2f", p.baseURL, lat, lon)
	if err := p.client.GetJSON(ctx, pointURL, nil, &point); err != nil {
		return types.ProviderPayload{}, err
	}
	if point.Properties.ForecastHourly == "" {
		return types.ProviderPayload{}, types.NewSchemaMismatch(types.ProviderNWS, "properties.forecastHourly", nil)
	}

	// The forecast URL is absolute in production; tests point it at the
	// fixture server by returning a relative path.
	forecastURL := point.Properties.ForecastHourly
	if strings.HasPrefix(forecastURL, "/") {
		forecastURL = p.baseURL + forecastURL
	}

	var raw nwsForecastResponse
	if err := p.client.GetJSON(ctx, forecastURL, nil, &raw); err != nil {
		return types.ProviderPayload{}, err
	}

	records, err := NormalizeNWS(raw)
	if err != nil {
		return types.ProviderPayload{}, err
	}
	return types.ProviderPayload{Weather: records}, nil
}

type nwsPointResponse struct {
	Properties struct {
		ForecastHourly string `json:"forecastHourly"`
	} `json:"properties"`
}

type nwsForecastResponse struct {
	Properties struct {
		Periods []nwsPeriod `json:"periods"`
	} `json:"properties"`
}

type nwsPeriod struct {
	StartTime       string   `json:"startTime"`
	Temperature     *float64 `json:"temperature"`
	TemperatureUnit string   `json:"temperatureUnit"`
	WindSpeed       string   `json:"windSpeed"`     // e.g. "10 mph", "5 to 10 mph"
	WindDirection   string   `json:"windDirection"` // 16-point compass
	IsDaytime       bool     `json:"isDaytime"`
	ShortForecast   string   `json:"shortForecast"`
	ProbabilityOfPrecipitation struct {
		Value *float64 `json:"value"`
	} `json:"probabilityOfPrecipitation"`
	RelativeHumidity struct {
		Value *float64 `json:"value"`
	} `json:"relativeHumidity"`
}

// NormalizeNWS maps an NWS hourly forecast to canonical weather records.
// NWS reports imperial units: Fahrenheit temperatures and mph wind speeds
// as free text. Conversions are exact; a period missing its timestamp,
// temperature, or wind speed is rejected as a schema mismatch.
func NormalizeNWS(raw nwsForecastResponse) ([]types.WeatherRecord, error) {
	periods := raw.Properties.Periods
	if len(periods) == 0 {
		return nil, types.NewSchemaMismatch(types.ProviderNWS, "properties.periods", nil)
	}

	records := make([]types.WeatherRecord, 0, len(periods))
	for _, period := range periods {
		ts, err := time.Parse(time.RFC3339, period.StartTime)
		if err != nil {
			return nil, types.NewSchemaMismatch(types.ProviderNWS, "periods.startTime", err)
		}
		if period.Temperature == nil {
			return nil, types.NewSchemaMismatch(types.ProviderNWS, "periods.temperature", nil)
		}

		tempC := *period.Temperature
		if strings.EqualFold(period.TemperatureUnit, "F") {
			tempC = fahrenheitToCelsius(tempC)
		}

		windMps, err := parseNWSWindSpeed(period.WindSpeed)
		if err != nil {
			return nil, types.NewSchemaMismatch(types.ProviderNWS, "periods.windSpeed", err)
		}

		windDeg, ok := compassDegrees[strings.ToUpper(period.WindDirection)]
		if !ok {
			// Variable/calm winds have no compass direction; report 0
			// with the condition text still intact.
			windDeg = 0
		}

		records = append(records, types.WeatherRecord{
			Timestamp:     ts.UTC(),
			AirTempC:      tempC,
			WindSpeedMps:  windMps,
			WindDirDeg:    windDeg,
			HumidityPct:   period.RelativeHumidity.Value,
			PrecipProbPct: period.ProbabilityOfPrecipitation.Value,
			ConditionCode: strings.ToLower(strings.ReplaceAll(period.ShortForecast, " ", "_")),
			IsDaytime:     period.IsDaytime,
		})
	}

	if err := checkWeatherSeries(types.ProviderNWS, records); err != nil {
		return nil, err
	}
	return records, nil
}

// parseNWSWindSpeed parses the NWS free-text wind speed ("10 mph",
// "5 to 10 mph") and converts to m/s. Ranges resolve to their upper bound,
// matching how the NWS presents sustained winds.
func parseNWSWindSpeed(s string) (float64, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) < 2 || strings.ToLower(fields[len(fields)-1]) != "mph" {
		return 0, fmt.Errorf("unparseable wind speed %q", s)
	}
	mph, err := strconv.ParseFloat(fields[len(fields)-2], 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable wind speed %q: %w", s, err)
	}
	return mph * mphToMps, nil
}
