package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/LitiDocket/internal/application/conflictcheck"
	"github.com/turtacn/LitiDocket/pkg/types/common"
)

// ConflictHandler exposes per-case conflict reports.
type ConflictHandler struct {
	router *conflictcheck.Router
}

// NewConflictHandler creates a ConflictHandler.
func NewConflictHandler(router *conflictcheck.Router) *ConflictHandler {
	return &ConflictHandler{router: router}
}

// Get handles GET /api/v1/cases/{caseID}/conflicts.  It returns the retained
// report without touching the upstream checker; a case never checked reports
// status "unchecked".
func (h *ConflictHandler) Get(w http.ResponseWriter, r *http.Request) {
	caseID := common.CaseID(chi.URLParam(r, "caseID"))
	writeJSON(w, http.StatusOK, h.router.StateFor(caseID))
}

// Refresh handles POST /api/v1/cases/{caseID}/conflicts/refresh.  It runs a
// synchronous check against the upstream service and returns the new report.
// An unreachable checker yields status "unknown", not an error.
func (h *ConflictHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	caseID := common.CaseID(chi.URLParam(r, "caseID"))

	report, err := h.router.Refresh(r.Context(), caseID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
