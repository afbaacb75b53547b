// This file implements the species catalog handler:
//   - Catalog listing (GET /v1/species)
//   - Single profile lookup (GET /v1/species/{name})
//
// Clients use the catalog to populate species pickers before requesting
// enhancement scores.
package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"tidecast/internal/core"
	"tidecast/internal/scoring"
	"tidecast/internal/types"
)

// SpeciesHandler serves the static species tolerance catalog.
type SpeciesHandler struct{}

// NewSpeciesHandler creates a new SpeciesHandler.
func NewSpeciesHandler() *SpeciesHandler {
	return &SpeciesHandler{}
}

// RegisterRoutes mounts the species endpoints onto the mux.
func (h *SpeciesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/species", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{name}", h.HandleGet)
	})
}

// speciesResponse is the client-facing projection of a tolerance profile.
type speciesResponse struct {
	Name          string  `json:"name"`
	TempMinC      float64 `json:"temp_min_c"`
	TempOptMinC   float64 `json:"temp_opt_min_c"`
	TempOptMaxC   float64 `json:"temp_opt_max_c"`
	TempMaxC      float64 `json:"temp_max_c"`
	SalinityMin   float64 `json:"salinity_min_psu"`
	SalinityMax   float64 `json:"salinity_max_psu"`
	PrefersTurbid bool    `json:"prefers_turbid"`
}

func toSpeciesResponse(p scoring.SpeciesProfile) speciesResponse {
	return speciesResponse{
		Name:          p.Name,
		TempMinC:      p.TempMinC,
		TempOptMinC:   p.TempOptMinC,
		TempOptMaxC:   p.TempOptMaxC,
		TempMaxC:      p.TempMaxC,
		SalinityMin:   p.SalinityMin,
		SalinityMax:   p.SalinityMax,
		PrefersTurbid: p.PrefersTurbid,
	}
}

// HandleList handles GET /v1/species.
func (h *SpeciesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles := scoring.Species()
	out := make([]speciesResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toSpeciesResponse(p))
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: out})
}

// HandleGet handles GET /v1/species/{name}. Unlike the enhancement endpoint,
// a direct lookup of an unknown name is a 404, not a silent fallback.
func (h *SpeciesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}

	profile, ok := scoring.FindSpecies(name)
	if !ok {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeNotFoundSpecies,
			"unknown species: "+name,
			nil,
		))
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: toSpeciesResponse(profile)})
}
