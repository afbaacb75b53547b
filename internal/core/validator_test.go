package core

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"tidecast/internal/types"
)

func newTestValidator() *Validator {
	return NewValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validationCode(t *testing.T, err error) *types.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T", err)
	}
	return appErr
}

func TestValidateStruct_Valid(t *testing.T) {
	v := newTestValidator()
	req := types.FetchRequest{Lat: 58.97, Lon: 5.73, Metric: types.MetricWeather}
	if err := v.ValidateStruct(req); err != nil {
		t.Fatalf("ValidateStruct() error = %v", err)
	}
}

func TestValidateStruct_InvalidLatitude(t *testing.T) {
	v := newTestValidator()
	req := types.FetchRequest{Lat: 95, Lon: 5.73, Metric: types.MetricWeather}

	appErr := validationCode(t, v.ValidateStruct(req))
	if appErr.Code != types.ErrCodeValidationInvalidLat {
		t.Errorf("expected code %s, got %s", types.ErrCodeValidationInvalidLat, appErr.Code)
	}
	if appErr.Details["field"] != "lat" {
		t.Errorf("expected details.field lat, got %v", appErr.Details["field"])
	}
}

func TestValidateStruct_InvalidLongitude(t *testing.T) {
	v := newTestValidator()
	req := types.FetchRequest{Lat: 58.97, Lon: -190, Metric: types.MetricWeather}

	appErr := validationCode(t, v.ValidateStruct(req))
	if appErr.Code != types.ErrCodeValidationInvalidLon {
		t.Errorf("expected code %s, got %s", types.ErrCodeValidationInvalidLon, appErr.Code)
	}
}

func TestValidateStruct_MissingRequiredField(t *testing.T) {
	v := newTestValidator()
	req := types.FetchRequest{Lat: 58.97, Lon: 5.73}

	appErr := validationCode(t, v.ValidateStruct(req))
	if appErr.Code != types.ErrCodeValidationMissingField {
		t.Errorf("expected code %s, got %s", types.ErrCodeValidationMissingField, appErr.Code)
	}
	if appErr.Details["rule"] != "required" {
		t.Errorf("expected details.rule required, got %v", appErr.Details["rule"])
	}
}

func TestValidateStruct_InvalidMetric(t *testing.T) {
	v := newTestValidator()
	req := types.FetchRequest{Lat: 58.97, Lon: 5.73, Metric: "astrology"}

	appErr := validationCode(t, v.ValidateStruct(req))
	if appErr.Code != types.ErrCodeValidationInvalidMetric {
		t.Errorf("expected code %s, got %s", types.ErrCodeValidationInvalidMetric, appErr.Code)
	}
}

func TestValidateStruct_OneofOnOtherField(t *testing.T) {
	v := newTestValidator()
	payload := struct {
		Skill string `validate:"oneof=novice intermediate advanced"`
	}{Skill: "wizard"}

	appErr := validationCode(t, v.ValidateStruct(payload))
	if appErr.Code != types.ErrCodeValidationBadPayload {
		t.Errorf("expected code %s, got %s", types.ErrCodeValidationBadPayload, appErr.Code)
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	v := newTestValidator()
	appErr := validationCode(t, v.ValidateStruct("not a struct"))
	if appErr.Code != types.ErrCodeInternalUnexpected {
		t.Errorf("expected code %s, got %s", types.ErrCodeInternalUnexpected, appErr.Code)
	}
}
