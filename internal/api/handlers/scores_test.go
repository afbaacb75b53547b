package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidecast/internal/core"
	"tidecast/internal/types"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func makeScoresRouter(clock types.Clock) http.Handler {
	logger := testLogger()
	h := NewScoresHandler(core.NewValidator(logger), logger, clock)
	r := chi.NewRouter()
	r.Route("/v1", h.RegisterRoutes)
	return r
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

// pressureSeriesJSON builds a three-sample series ending at target with the
// given 3h and 6h pressure deltas.
func pressureSeriesJSON(target time.Time, p6, p3, pNow float64) string {
	sample := func(ts time.Time, p float64) string {
		return fmt.Sprintf(
			`{"timestamp":%q,"air_temp_c":5,"wind_speed_mps":3,"wind_dir_deg":180,"pressure_hpa":%g,"condition_code":"cloudy","is_daytime":true}`,
			ts.Format(time.RFC3339), p)
	}
	return "[" +
		sample(target.Add(-6*time.Hour), p6) + "," +
		sample(target.Add(-3*time.Hour), p3) + "," +
		sample(target, pNow) + "]"
}

// --- Pressure trend ---

func TestHandlePressureTrend_ExplicitTarget(t *testing.T) {
	target := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	body := fmt.Sprintf(`{"series": %s, "target_time": %q}`,
		pressureSeriesJSON(target, 1015, 1012, 1006), target.Format(time.RFC3339))

	rec := postJSON(t, makeScoresRouter(nil), "/v1/scores/pressure-trend", body)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var trend types.PressureTrend
	require.NoError(t, json.Unmarshal(env.Data, &trend))

	assert.Equal(t, types.TrendRapidFalling, trend.Category)
	require.NotNil(t, trend.Delta3h)
	assert.Equal(t, -6.0, *trend.Delta3h)
	assert.NotEmpty(t, trend.Explanation)
}

func TestHandlePressureTrend_DefaultsToClockNow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	body := fmt.Sprintf(`{"series": %s}`, pressureSeriesJSON(now, 1010, 1010, 1013))

	rec := postJSON(t, makeScoresRouter(fixedClock{now: now}), "/v1/scores/pressure-trend", body)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var trend types.PressureTrend
	require.NoError(t, json.Unmarshal(env.Data, &trend))
	assert.Equal(t, types.TrendRising, trend.Category)
}

func TestHandlePressureTrend_EmptySeries(t *testing.T) {
	rec := postJSON(t, makeScoresRouter(nil), "/v1/scores/pressure-trend", `{"series": []}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, string(types.ErrCodeValidationMissingField), env.Error.Code)
}

func TestHandlePressureTrend_MalformedBody(t *testing.T) {
	rec := postJSON(t, makeScoresRouter(nil), "/v1/scores/pressure-trend", `{"series": [`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, string(types.ErrCodeValidationBadPayload), env.Error.Code)
}

// --- Enhancement ---

func TestHandleEnhancement_KnownSpecies(t *testing.T) {
	body := `{
		"bio": {"chlorophyll_mg_m3": 2.0, "dissolved_oxygen_mg_l": 8.0, "water_temp_c": 14.0, "water_clarity_kd490": 0.12, "salinity_psu": 33.0},
		"species": "sea bass",
		"time_of_day": "dawn"
	}`
	rec := postJSON(t, makeScoresRouter(nil), "/v1/scores/enhancement", body)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Nil(t, env.Meta, "known species must not produce a warning")

	var result types.EnhancementResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 100, result.Confidence)
	assert.GreaterOrEqual(t, result.Multiplier, 0.5)
	assert.LessOrEqual(t, result.Multiplier, 2.0)
}

func TestHandleEnhancement_UnknownSpeciesFallsBackWithWarning(t *testing.T) {
	rec := postJSON(t, makeScoresRouter(nil), "/v1/scores/enhancement",
		`{"bio": {"chlorophyll_mg_m3": 2.0}, "species": "kraken"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Meta)
	require.Len(t, env.Meta.Warnings, 1)
	assert.Contains(t, env.Meta.Warnings[0], "kraken")
	assert.Contains(t, env.Meta.Warnings[0], "default")
}

func TestHandleEnhancement_EmptyBodyDegradesGracefully(t *testing.T) {
	rec := postJSON(t, makeScoresRouter(nil), "/v1/scores/enhancement", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var result types.EnhancementResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 0, result.Confidence)
	assert.Equal(t, 50, result.BaitfishIndex)
}

func TestHandleEnhancement_InvalidTimeOfDay(t *testing.T) {
	rec := postJSON(t, makeScoresRouter(nil), "/v1/scores/enhancement", `{"time_of_day": "midnight"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, string(types.ErrCodeValidationBadPayload), env.Error.Code)
}

// --- Surf day ---

func TestHandleSurfDay_Success(t *testing.T) {
	body := `{
		"hours": [
			{"timestamp": "2026-03-01T10:00:00Z", "wave_height_m": 1.5, "swell_period_s": 13, "wind_speed_mps": 2, "wind_dir_deg": 0}
		]
	}`
	rec := postJSON(t, makeScoresRouter(nil), "/v1/scores/surf-day", body)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var grade types.DayGrade
	require.NoError(t, json.Unmarshal(env.Data, &grade))

	require.NotNil(t, grade.BestHour)
	assert.Equal(t, types.LightGreen, grade.BestHour.Light)
	assert.Equal(t, 90, grade.BestHour.Score)
	assert.Equal(t, types.LightGreen, grade.DayLight)
}

func TestHandleSurfDay_NoviceGateApplies(t *testing.T) {
	// 2m waves are green for the default intermediate skill but capped at
	// amber for a novice.
	body := `{
		"hours": [
			{"timestamp": "2026-03-01T10:00:00Z", "wave_height_m": 2.0, "swell_period_s": 13, "wind_speed_mps": 2, "wind_dir_deg": 0}
		],
		"skill": "novice"
	}`
	rec := postJSON(t, makeScoresRouter(nil), "/v1/scores/surf-day", body)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var grade types.DayGrade
	require.NoError(t, json.Unmarshal(env.Data, &grade))
	require.NotEmpty(t, grade.Hours)
	assert.Equal(t, types.LightAmber, grade.Hours[0].Light)
}

func TestHandleSurfDay_InvalidFacing(t *testing.T) {
	body := `{
		"hours": [{"timestamp": "2026-03-01T10:00:00Z", "wave_height_m": 1.0, "swell_period_s": 10, "wind_speed_mps": 3, "wind_dir_deg": 90}],
		"beach_facing_deg": 400
	}`
	rec := postJSON(t, makeScoresRouter(nil), "/v1/scores/surf-day", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, string(types.ErrCodeValidationBadPayload), env.Error.Code)
}

func TestHandleSurfDay_UnknownField(t *testing.T) {
	rec := postJSON(t, makeScoresRouter(nil), "/v1/scores/surf-day",
		`{"hours": [], "board_type": "longboard"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeError(t, rec)
	assert.Equal(t, string(types.ErrCodeValidationBadPayload), env.Error.Code)
}
