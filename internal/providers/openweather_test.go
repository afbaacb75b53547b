package providers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"tidecast/internal/types"
)

const openWeatherFixture = `{
  "list": [
    {
      "dt": 1772348400,
      "main": {"temp": 8.3, "pressure": 1009, "humidity": 71},
      "wind": {"speed": 4.1, "deg": 190, "gust": 7.2},
      "pop": 0.35,
      "rain": {"3h": 1.2},
      "weather": [{"main": "Rain"}],
      "sys": {"pod": "d"}
    },
    {
      "dt": 1772359200,
      "main": {"temp": 6.9},
      "wind": {"speed": 3.0, "deg": 200},
      "sys": {"pod": "n"}
    }
  ]
}`

func decodeOpenWeather(t *testing.T, payload string) openWeatherResponse {
	t.Helper()
	var raw openWeatherResponse
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return raw
}

func TestNormalizeOpenWeather(t *testing.T) {
	records, err := NormalizeOpenWeather(decodeOpenWeather(t, openWeatherFixture))
	if err != nil {
		t.Fatalf("NormalizeOpenWeather() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.Timestamp != time.Unix(1772348400, 0).UTC() {
		t.Errorf("timestamp = %v", first.Timestamp)
	}
	if first.AirTempC != 8.3 || first.WindSpeedMps != 4.1 || first.WindDirDeg != 190 {
		t.Errorf("core fields = %v/%v/%v", first.AirTempC, first.WindSpeedMps, first.WindDirDeg)
	}
	// pop is a 0..1 fraction upstream; canonical records carry percent.
	if first.PrecipProbPct == nil || *first.PrecipProbPct != 35 {
		t.Errorf("precip probability = %v, want 35", first.PrecipProbPct)
	}
	if first.PrecipitationMm == nil || *first.PrecipitationMm != 1.2 {
		t.Errorf("precipitation = %v, want 1.2", first.PrecipitationMm)
	}
	if first.ConditionCode != "Rain" {
		t.Errorf("condition = %q", first.ConditionCode)
	}
	if !first.IsDaytime {
		t.Error("pod d should mark daytime")
	}

	second := records[1]
	if second.IsDaytime {
		t.Error("pod n should mark night")
	}
	if second.PrecipProbPct != nil || second.PressureHpa != nil {
		t.Error("absent optional fields should stay nil")
	}
}

func TestNormalizeOpenWeatherRejectsZeroTimestamp(t *testing.T) {
	payload := `{"list": [{"main": {"temp": 5}, "wind": {"speed": 2, "deg": 90}}]}`
	_, err := NormalizeOpenWeather(decodeOpenWeather(t, payload))
	if err == nil {
		t.Fatal("expected error for missing dt")
	}
	if code := appErrCode(t, err); code != types.ErrCodeSchemaMismatch {
		t.Errorf("code = %s, want %s", code, types.ErrCodeSchemaMismatch)
	}
}

func TestNormalizeOpenWeatherEmptyList(t *testing.T) {
	_, err := NormalizeOpenWeather(decodeOpenWeather(t, `{"list": []}`))
	if err == nil {
		t.Fatal("expected error for empty list")
	}
}

func TestOpenWeatherFetchSendsKeyAndUnits(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(openWeatherFixture))
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := NewOpenWeather(newTestClient(NoRetry()), srv.URL, types.SecretString("ow-key-123"), logger)

	payload, err := p.Fetch(context.Background(), types.FetchRequest{
		Lat: 51.5074, Lon: -0.1278, Metric: types.MetricWeather,
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(payload.Weather) != 2 {
		t.Fatalf("got %d weather records, want 2", len(payload.Weather))
	}
	if gotQuery.Get("appid") != "ow-key-123" {
		t.Errorf("appid = %q", gotQuery.Get("appid"))
	}
	if gotQuery.Get("units") != "metric" {
		t.Errorf("units = %q, want metric", gotQuery.Get("units"))
	}
	if gotQuery.Get("lat") != "51.507" || gotQuery.Get("lon") != "-0.128" {
		t.Errorf("coordinates = %s,%s, want three-decimal rounding", gotQuery.Get("lat"), gotQuery.Get("lon"))
	}
}
