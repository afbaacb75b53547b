package providers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tidecast/internal/types"
)

const nwsForecastFixture = `{
  "properties": {
    "periods": [
      {
        "startTime": "2026-03-01T12:00:00-05:00",
        "temperature": 50,
        "temperatureUnit": "F",
        "windSpeed": "5 to 10 mph",
        "windDirection": "SW",
        "isDaytime": true,
        "shortForecast": "Partly Cloudy",
        "probabilityOfPrecipitation": {"value": 20},
        "relativeHumidity": {"value": 60}
      },
      {
        "startTime": "2026-03-01T13:00:00-05:00",
        "temperature": 52,
        "temperatureUnit": "F",
        "windSpeed": "10 mph",
        "windDirection": "Variable",
        "isDaytime": true,
        "shortForecast": "Sunny",
        "probabilityOfPrecipitation": {"value": null},
        "relativeHumidity": {"value": null}
      }
    ]
  }
}`

func decodeNWS(t *testing.T, payload string) nwsForecastResponse {
	t.Helper()
	var raw nwsForecastResponse
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return raw
}

func TestNormalizeNWS(t *testing.T) {
	records, err := NormalizeNWS(decodeNWS(t, nwsForecastFixture))
	if err != nil {
		t.Fatalf("NormalizeNWS() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Timestamp != time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC) {
		t.Errorf("timestamp = %v, want offset normalized to UTC", first.Timestamp)
	}
	if math.Abs(first.AirTempC-10.0) > 1e-9 {
		t.Errorf("temperature = %v C, want 10 (from 50 F)", first.AirTempC)
	}
	// Range wind speeds resolve to the upper bound.
	if math.Abs(first.WindSpeedMps-10*mphToMps) > 1e-9 {
		t.Errorf("wind = %v m/s, want %v", first.WindSpeedMps, 10*mphToMps)
	}
	if first.WindDirDeg != 225 {
		t.Errorf("wind dir = %v, want 225 for SW", first.WindDirDeg)
	}
	if first.ConditionCode != "partly_cloudy" {
		t.Errorf("condition = %q, want partly_cloudy", first.ConditionCode)
	}
	if first.PrecipProbPct == nil || *first.PrecipProbPct != 20 {
		t.Errorf("precip probability = %v, want 20", first.PrecipProbPct)
	}

	second := records[1]
	if second.WindDirDeg != 0 {
		t.Errorf("variable wind dir = %v, want 0 fallback", second.WindDirDeg)
	}
	if second.PrecipProbPct != nil || second.HumidityPct != nil {
		t.Error("null nested values should stay absent")
	}
}

func TestNormalizeNWSMissingTemperature(t *testing.T) {
	payload := `{
	  "properties": {
	    "periods": [
	      {"startTime": "2026-03-01T12:00:00Z", "windSpeed": "10 mph", "windDirection": "N"}
	    ]
	  }
	}`
	_, err := NormalizeNWS(decodeNWS(t, payload))
	if err == nil {
		t.Fatal("expected error for missing temperature")
	}
	if code := appErrCode(t, err); code != types.ErrCodeSchemaMismatch {
		t.Errorf("code = %s, want %s", code, types.ErrCodeSchemaMismatch)
	}
}

func TestNormalizeNWSEmptyPeriods(t *testing.T) {
	_, err := NormalizeNWS(decodeNWS(t, `{"properties": {"periods": []}}`))
	if err == nil {
		t.Fatal("expected error for empty periods")
	}
	if code := appErrCode(t, err); code != types.ErrCodeSchemaMismatch {
		t.Errorf("code = %s, want %s", code, types.ErrCodeSchemaMismatch)
	}
}

func TestNWSFetchTwoStepLookup(t *testing.T) {
	var pointsPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
		pointsPath = r.URL.Path
		w.Write([]byte(`{"properties": {"forecastHourly": "/gridpoints/OKX/33,35/forecast/hourly"}}`))
	})
	mux.HandleFunc("/gridpoints/OKX/33,35/forecast/hourly", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nwsForecastFixture))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewNWS(newTestClient(NoRetry()), srv.URL, logger)

	payload, err := p.Fetch(context.Background(), types.FetchRequest{
		Lat: 40.71427, Lon: -74.00597, Metric: types.MetricWeather,
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(payload.Weather) != 2 {
		t.Fatalf("got %d weather records, want 2", len(payload.Weather))
	}
	// The environmental tier rounds to two decimals for the grid lookup.
	if pointsPath != "/points/40.71,-74.01" {
		t.Errorf("points path = %q, want two-decimal coordinates", pointsPath)
	}
}

func TestNWSFetchMissingForecastURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"properties": {}}`))
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewNWS(newTestClient(NoRetry()), srv.URL, logger)

	_, err := p.Fetch(context.Background(), types.FetchRequest{Lat: 40.71, Lon: -74.01, Metric: types.MetricWeather})
	if err == nil {
		t.Fatal("expected error when points response has no forecast URL")
	}
	if code := appErrCode(t, err); code != types.ErrCodeSchemaMismatch {
		t.Errorf("code = %s, want %s", code, types.ErrCodeSchemaMismatch)
	}
}
