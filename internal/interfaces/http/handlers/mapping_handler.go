package handlers

import (
	"net/http"

	"github.com/turtacn/LitiDocket/internal/application/mapping"
)

// MappingHandler exposes venue geometry analysis backed by the geospatial
// collaborator: compactness scoring and cross-layer spatial alignment.
type MappingHandler struct {
	service mapping.Service
}

// NewMappingHandler creates a MappingHandler.
func NewMappingHandler(service mapping.Service) *MappingHandler {
	return &MappingHandler{service: service}
}

// Compactness handles POST /api/v1/venue/compactness.  The body carries a
// GeoJSON geometry and an optional metric selection; an unreachable
// collaborator surfaces as 502, never as an empty result.
func (h *MappingHandler) Compactness(w http.ResponseWriter, r *http.Request) {
	var req mapping.CompactnessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	result, err := h.service.CalculateCompactness(r.Context(), &req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Align handles POST /api/v1/venue/alignment.  It crosswalks two spatial
// layers through a shared grid at the requested resolution.
func (h *MappingHandler) Align(w http.ResponseWriter, r *http.Request) {
	var req mapping.AlignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	result, err := h.service.AlignSpatial(r.Context(), &req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
