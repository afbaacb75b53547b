// This file implements the scoring handler. It covers:
//   - Pressure trend classification (POST /v1/scores/pressure-trend)
//   - Biogeochemical enhancement (POST /v1/scores/enhancement)
//   - Surf day grading (POST /v1/scores/surf-day)
//
// The scoring endpoints are pure: they compute over the series supplied in
// the request body and never reach upstream providers. Callers that want
// scores over live data fetch the environment endpoints first.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tidecast/internal/core"
	"tidecast/internal/scoring"
	"tidecast/internal/types"
)

// ScoresHandler maps HTTP requests to the scoring engine.
type ScoresHandler struct {
	validator *core.Validator
	logger    *slog.Logger
	clock     types.Clock
}

// NewScoresHandler creates a new ScoresHandler with the provided dependencies.
// A nil clock falls back to the real clock; tests inject a fake to pin the
// pressure trend's reference time.
func NewScoresHandler(val *core.Validator, logger *slog.Logger, clock types.Clock) *ScoresHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &ScoresHandler{
		validator: val,
		logger:    logger,
		clock:     clock,
	}
}

// RegisterRoutes mounts the scoring endpoints onto the mux.
func (h *ScoresHandler) RegisterRoutes(r chi.Router) {
	r.Route("/scores", func(r chi.Router) {
		r.Post("/pressure-trend", h.HandlePressureTrend)
		r.Post("/enhancement", h.HandleEnhancement)
		r.Post("/surf-day", h.HandleSurfDay)
	})
}

// pressureTrendRequest is the request body for POST /v1/scores/pressure-trend.
// TargetTime is optional; when absent the trend is computed relative to now.
type pressureTrendRequest struct {
	Series     []types.WeatherRecord `json:"series" validate:"required,min=1"`
	TargetTime *time.Time            `json:"target_time,omitempty"`
}

// HandlePressureTrend handles POST /v1/scores/pressure-trend.
func (h *ScoresHandler) HandlePressureTrend(w http.ResponseWriter, r *http.Request) {
	var req pressureTrendRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	target := h.clock.Now()
	if req.TargetTime != nil {
		target = *req.TargetTime
	}

	trend := scoring.ClassifyPressureTrend(req.Series, target)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: trend})
}

// enhancementRequest is the request body for POST /v1/scores/enhancement.
// Every field is optional: the enhancer is total and degrades confidence
// instead of failing when data is absent. An unknown species name falls back
// to the default tolerance profile.
type enhancementRequest struct {
	Bio       *types.BiogeochemicalData `json:"bio,omitempty"`
	Species   string                    `json:"species,omitempty"`
	TimeOfDay types.TimeOfDay           `json:"time_of_day,omitempty" validate:"omitempty,oneof=dawn day dusk night"`
}

// HandleEnhancement handles POST /v1/scores/enhancement.
func (h *ScoresHandler) HandleEnhancement(w http.ResponseWriter, r *http.Request) {
	var req enhancementRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	timeOfDay := req.TimeOfDay
	if timeOfDay == "" {
		timeOfDay = types.TimeDay
	}

	result := scoring.Enhance(req.Bio, req.Species, timeOfDay)

	var meta *types.ResponseMeta
	if _, known := scoring.FindSpecies(req.Species); req.Species != "" && !known {
		meta = &types.ResponseMeta{
			Warnings: []string{"unknown species '" + req.Species + "'; scored with the default tolerance profile"},
		}
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: result, Meta: meta})
}

// surfDayRequest is the request body for POST /v1/scores/surf-day.
type surfDayRequest struct {
	Hours          []types.SurfHour `json:"hours" validate:"required,min=1"`
	BeachFacingDeg *float64         `json:"beach_facing_deg,omitempty" validate:"omitempty,gte=0,lt=360"`
	Skill          types.SkillLevel `json:"skill,omitempty" validate:"omitempty,oneof=novice intermediate advanced"`
}

// HandleSurfDay handles POST /v1/scores/surf-day.
func (h *ScoresHandler) HandleSurfDay(w http.ResponseWriter, r *http.Request) {
	var req surfDayRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	skill := req.Skill
	if skill == "" {
		skill = types.SkillIntermediate
	}

	grade := scoring.GradeDay(types.DayMarine{
		Hours:          req.Hours,
		BeachFacingDeg: req.BeachFacingDeg,
		Skill:          skill,
	})
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: grade})
}
