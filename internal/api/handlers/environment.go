// Package handlers contains the HTTP handler implementations for the TideCast API.
//
// This file implements the environment handler. It covers:
//   - Weather series retrieval (GET /v1/environment/weather)
//   - Marine series retrieval (GET /v1/environment/marine)
//   - Biogeochemical snapshot retrieval (GET /v1/environment/biogeochemical)
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tidecast/internal/core"
	"tidecast/internal/types"
)

// Fetcher defines the orchestrator contract for the environment handler.
// Matches fetch.Orchestrator but is defined locally to avoid tight coupling
// per the handler injection pattern.
type Fetcher interface {
	Fetch(ctx context.Context, req types.FetchRequest) (*types.FetchResult, error)
}

// EnvironmentHandler maps HTTP requests to orchestrated provider fetches.
type EnvironmentHandler struct {
	fetcher   Fetcher
	validator *core.Validator
	logger    *slog.Logger
}

// NewEnvironmentHandler creates a new EnvironmentHandler with the provided
// dependencies.
func NewEnvironmentHandler(f Fetcher, val *core.Validator, logger *slog.Logger) *EnvironmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnvironmentHandler{
		fetcher:   f,
		validator: val,
		logger:    logger,
	}
}

// RegisterRoutes mounts the environment endpoints onto the mux.
func (h *EnvironmentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/environment", func(r chi.Router) {
		r.Get("/weather", h.HandleGetWeather)
		r.Get("/marine", h.HandleGetMarine)
		r.Get("/biogeochemical", h.HandleGetBiogeochemical)
	})
}

// HandleGetWeather handles GET /v1/environment/weather.
func (h *EnvironmentHandler) HandleGetWeather(w http.ResponseWriter, r *http.Request) {
	h.handleFetch(w, r, types.MetricWeather)
}

// HandleGetMarine handles GET /v1/environment/marine.
func (h *EnvironmentHandler) HandleGetMarine(w http.ResponseWriter, r *http.Request) {
	h.handleFetch(w, r, types.MetricMarine)
}

// HandleGetBiogeochemical handles GET /v1/environment/biogeochemical.
func (h *EnvironmentHandler) HandleGetBiogeochemical(w http.ResponseWriter, r *http.Request) {
	h.handleFetch(w, r, types.MetricBiogeochemical)
}

// handleFetch is the shared flow for all three environment endpoints:
//  1. Parse query params: lat, lon, optional region_label.
//  2. Validate the assembled FetchRequest.
//  3. Call the orchestrator.
//  4. Return the canonical payload with provenance metadata.
func (h *EnvironmentHandler) handleFetch(w http.ResponseWriter, r *http.Request, metric types.Metric) {
	req, err := h.parseFetchRequest(r, metric)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.fetcher.Fetch(r.Context(), *req)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	resp := core.APIResponse{
		Data: environmentData(metric, result),
		Meta: &types.ResponseMeta{
			Source:      result.Provider.SourceTag(),
			CacheStatus: result.CacheStatus,
		},
	}
	core.JSON(w, r, http.StatusOK, resp)
}

// parseFetchRequest extracts and validates lat/lon/region_label query params.
func (h *EnvironmentHandler) parseFetchRequest(r *http.Request, metric types.Metric) (*types.FetchRequest, error) {
	q := r.URL.Query()

	lat, err := parseCoordinate(q.Get("lat"), "lat", types.ErrCodeValidationInvalidLat)
	if err != nil {
		return nil, err
	}
	lon, err := parseCoordinate(q.Get("lon"), "lon", types.ErrCodeValidationInvalidLon)
	if err != nil {
		return nil, err
	}

	req := types.FetchRequest{
		Lat:         lat,
		Lon:         lon,
		Metric:      metric,
		RegionLabel: q.Get("region_label"),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	return &req, nil
}

// parseCoordinate parses a required float query parameter.
func parseCoordinate(raw, name string, code types.ErrorCode) (float64, error) {
	if raw == "" {
		return 0, types.NewAppError(
			types.ErrCodeValidationMissingField,
			name+" query parameter is required",
			nil,
		)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, types.NewAppError(code, name+" must be a valid number", nil)
	}
	return v, nil
}

// environmentData projects the fetched payload down to the slice the metric
// promises. The orchestrator returns the full ProviderPayload; clients of a
// weather endpoint should not receive empty marine/bio stubs alongside it.
func environmentData(metric types.Metric, result *types.FetchResult) interface{} {
	switch metric {
	case types.MetricWeather:
		return result.Payload.Weather
	case types.MetricMarine:
		return result.Payload.Marine
	case types.MetricBiogeochemical:
		return result.Payload.Bio
	default:
		return result.Payload
	}
}
