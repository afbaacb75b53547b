package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Complete error code constants. Handlers and providers MUST use these
// constants instead of hardcoded strings.
const (
	// Validation (400) -- rejected before any network call.
	ErrCodeValidationInvalidLat    ErrorCode = "validation_invalid_latitude"
	ErrCodeValidationInvalidLon    ErrorCode = "validation_invalid_longitude"
	ErrCodeValidationInvalidMetric ErrorCode = "validation_invalid_metric"
	ErrCodeValidationMissingField  ErrorCode = "validation_missing_required_field"
	ErrCodeValidationBadPayload    ErrorCode = "validation_malformed_payload"

	// Not Found (404)
	ErrCodeNotFoundSpecies ErrorCode = "not_found_species"

	// Upstream (502/503) -- provider-level failures. All of these are
	// absorbed by the orchestrator's fallback chain; only exhaustion
	// crosses the component boundary.
	ErrCodeProviderUnavailable ErrorCode = "upstream_provider_unavailable"
	ErrCodeProviderRateLimited ErrorCode = "upstream_provider_rate_limited"
	ErrCodeSchemaMismatch      ErrorCode = "upstream_schema_mismatch"
	ErrCodeProvidersExhausted  ErrorCode = "upstream_all_providers_exhausted"

	// Internal (500)
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Returns 500 for unrecognized error codes as a safe default.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest // 400
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound // 404
	case c == ErrCodeProvidersExhausted:
		return http.StatusServiceUnavailable // 503
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

// AppError is the standard application error type used throughout the
// pipeline. All domain and handler errors are expressed as AppError to
// enable consistent error formatting, HTTP status mapping, and error chain
// support via errors.Is/errors.As.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error with the provided details merged
// in, leaving the original untouched.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and
// optional underlying error. This is the standard constructor for domain
// errors.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewSchemaMismatch builds the adapter-level rejection error, carrying the
// provider and offending field so fallback logging retains context.
func NewSchemaMismatch(provider ProviderID, field string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeSchemaMismatch,
		Message: fmt.Sprintf("%s payload missing or malformed field %q", provider, field),
		Err:     err,
		Details: map[string]any{
			"provider": string(provider),
			"field":    field,
		},
	}
}
