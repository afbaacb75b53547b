package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tidecast/internal/types"
)

// --- JSON helper tests ---

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	data := APIResponse{Data: map[string]string{"name": "test"}}
	JSON(w, r, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	var body APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	dataMap, ok := body.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected data to be a map, got %T", body.Data)
	}
	if dataMap["name"] != "test" {
		t.Errorf("expected name=test, got %v", dataMap["name"])
	}
}

func TestJSON_WithMeta(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	data := APIResponse{
		Data: map[string]string{"metric": "weather"},
		Meta: &types.ResponseMeta{
			Source:      types.ProviderMETNorway.SourceTag(),
			CacheStatus: types.CacheHit,
		},
	}
	JSON(w, r, http.StatusOK, data)

	var body map[string]interface{}
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	meta, ok := body["meta"].(map[string]interface{})
	if !ok {
		t.Fatal("expected meta field in response")
	}
	if meta["source"] != "free:metno" {
		t.Errorf("expected source free:metno, got %v", meta["source"])
	}
	if meta["cache_status"] != "hit" {
		t.Errorf("expected cache_status hit, got %v", meta["cache_status"])
	}
}

func TestJSON_MarshalFailure(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(types.WithRequestID(r.Context(), "req-marshal-fail"))

	// Channels cannot be marshalled to JSON.
	unmarshalable := make(chan int)
	JSON(w, r, http.StatusOK, unmarshalable)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}

	var errResp APIErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode fallback error: %v", err)
	}
	if errResp.Error.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("expected code %s, got %s", types.ErrCodeInternalUnexpected, errResp.Error.Code)
	}
	if errResp.Error.RequestID != "req-marshal-fail" {
		t.Errorf("expected request_id req-marshal-fail, got %s", errResp.Error.RequestID)
	}
}

// --- Error helper tests ---

func TestError_AppError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(types.WithRequestID(r.Context(), "req-1"))

	appErr := types.NewAppError(types.ErrCodeProvidersExhausted, "no provider could serve the request", nil).
		WithDetails(map[string]any{"metric": "marine"})
	Error(w, r, appErr)

	resp := w.Result()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", resp.StatusCode)
	}

	var errResp APIErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error.Code != string(types.ErrCodeProvidersExhausted) {
		t.Errorf("expected code %s, got %s", types.ErrCodeProvidersExhausted, errResp.Error.Code)
	}
	if errResp.Error.Details["metric"] != "marine" {
		t.Errorf("expected details.metric marine, got %v", errResp.Error.Details["metric"])
	}
	if errResp.Error.RequestID != "req-1" {
		t.Errorf("expected request_id req-1, got %s", errResp.Error.RequestID)
	}
}

func TestError_WrappedAppError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	inner := types.NewAppError(types.ErrCodeValidationInvalidLat, "latitude must be between -90 and 90", nil)
	Error(w, r, fmt.Errorf("parsing request: %w", inner))

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400 from wrapped AppError, got %d", resp.StatusCode)
	}
}

func TestError_GenericDoesNotLeak(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(w, r, errors.New("dial tcp: connection to sensitive-internal-host refused"))

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}

	bodyStr := w.Body.String()
	if strings.Contains(bodyStr, "sensitive-internal-host") {
		t.Error("internal error details leaked to client")
	}

	var errResp APIErrorResponse
	if err := json.Unmarshal([]byte(bodyStr), &errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error.Code != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("expected code %s, got %s", types.ErrCodeInternalUnexpected, errResp.Error.Code)
	}
}

// --- DecodeJSON tests ---

type decodeTarget struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func TestDecodeJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lat": 58.97, "lon": 5.73}`))

	var dst decodeTarget
	if err := DecodeJSON(w, r, &dst); err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if dst.Lat != 58.97 || dst.Lon != 5.73 {
		t.Errorf("decoded = %+v", dst)
	}
}

func TestDecodeJSON_UnknownField(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lat": 1, "lonn": 2}`))

	var dst decodeTarget
	err := DecodeJSON(w, r, &dst)
	assertBadPayload(t, err)
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))

	var dst decodeTarget
	err := DecodeJSON(w, r, &dst)
	assertBadPayload(t, err)
}

func TestDecodeJSON_MalformedSyntax(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lat": `))

	var dst decodeTarget
	err := DecodeJSON(w, r, &dst)
	assertBadPayload(t, err)
}

func TestDecodeJSON_TypeMismatch(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lat": "north"}`))

	var dst decodeTarget
	err := DecodeJSON(w, r, &dst)
	appErr := assertBadPayload(t, err)
	if appErr.Details["field"] != "lat" {
		t.Errorf("expected details.field lat, got %v", appErr.Details["field"])
	}
}

func TestDecodeJSON_MultipleValues(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lat": 1}{"lat": 2}`))

	var dst decodeTarget
	err := DecodeJSON(w, r, &dst)
	assertBadPayload(t, err)
}

func TestDecodeJSON_BodyTooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	oversized := `{"lat": 1, "lon": "` + strings.Repeat("x", maxRequestBodySize) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(oversized))

	var dst decodeTarget
	err := DecodeJSON(w, r, &dst)
	assertBadPayload(t, err)
}

func assertBadPayload(t *testing.T, err error) *types.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("expected decode error")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeValidationBadPayload {
		t.Errorf("expected code %s, got %s", types.ErrCodeValidationBadPayload, appErr.Code)
	}
	return appErr
}
