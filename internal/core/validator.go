package core

import (
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"tidecast/internal/types"
)

// Validator wraps go-playground/validator and translates field-level failures
// into the structured AppError codes the API contract promises. Coordinate
// tags (latitude, longitude) are built into the library; the translation here
// keeps handlers free of validator internals.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new Validator.
func NewValidator(logger *slog.Logger) *Validator {
	return &Validator{
		validate: validator.New(),
		logger:   logger,
	}
}

// ValidateStruct validates s against its struct tags. It returns nil on
// success, or a *types.AppError describing the first failed field. The field
// name and failed rule are attached as details.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		// Non-field error (e.g. passing a non-struct). Programming error.
		return types.NewAppError(types.ErrCodeInternalUnexpected, "validation failed", err)
	}

	fe := verrs[0]
	code, message := classifyFieldError(fe)
	return types.NewAppError(code, message, err).WithDetails(map[string]any{
		"field": strings.ToLower(fe.Field()),
		"rule":  fe.Tag(),
	})
}

// classifyFieldError maps a validator tag failure to the matching API error
// code. Coordinate and metric failures get dedicated codes so clients can
// distinguish them; everything else collapses to the generic payload code.
func classifyFieldError(fe validator.FieldError) (types.ErrorCode, string) {
	switch fe.Tag() {
	case "latitude":
		return types.ErrCodeValidationInvalidLat, "latitude must be between -90 and 90"
	case "longitude":
		return types.ErrCodeValidationInvalidLon, "longitude must be between -180 and 180"
	case "required":
		return types.ErrCodeValidationMissingField, "missing required field: " + strings.ToLower(fe.Field())
	case "oneof":
		if strings.EqualFold(fe.Field(), "metric") {
			return types.ErrCodeValidationInvalidMetric, "metric must be one of: weather, marine, biogeochemical"
		}
		return types.ErrCodeValidationBadPayload, "invalid value for field: " + strings.ToLower(fe.Field())
	default:
		return types.ErrCodeValidationBadPayload, "invalid value for field: " + strings.ToLower(fe.Field())
	}
}
