package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appdocket "github.com/turtacn/LitiDocket/internal/application/docket"
	domaindocket "github.com/turtacn/LitiDocket/internal/domain/docket"
	"github.com/turtacn/LitiDocket/pkg/errors"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// DeadlineHandler serves the deadline CRUD and lifecycle endpoints.
type DeadlineHandler struct {
	service appdocket.DeadlineService
}

// NewDeadlineHandler creates a DeadlineHandler.
func NewDeadlineHandler(service appdocket.DeadlineService) *DeadlineHandler {
	return &DeadlineHandler{service: service}
}

// Create handles POST /api/v1/deadlines.
func (h *DeadlineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req appdocket.CreateDeadlineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	d, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// Get handles GET /api/v1/deadlines/{deadlineID}.
func (h *DeadlineHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := dockettypes.DeadlineID(chi.URLParam(r, "deadlineID"))

	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// List handles GET /api/v1/deadlines.  Filter values arrive as query
// parameters; absent or "all" values match everything.
func (h *DeadlineHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()

	req := appdocket.ListDeadlinesRequest{
		Filter: domaindocket.Filter{
			CaseID:   q.Get("case_id"),
			Type:     q.Get("type"),
			Priority: q.Get("priority"),
			Status:   q.Get("status"),
		},
		SortKey:   appdocket.SortKey(q.Get("sort")),
		SortOrder: appdocket.SortOrder(q.Get("order")),
		Page:      page,
		PageSize:  pageSize,
	}
	if req.SortKey == "" {
		req.SortKey = appdocket.SortByDate
	}
	if req.SortOrder == "" {
		req.SortOrder = appdocket.OrderAsc
	}

	deadlines, total, err := h.service.List(r.Context(), &req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{
		Items:    deadlines,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Update handles PUT /api/v1/deadlines/{deadlineID}.
func (h *DeadlineHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := dockettypes.DeadlineID(chi.URLParam(r, "deadlineID"))

	var req appdocket.UpdateDeadlineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	d, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Delete handles DELETE /api/v1/deadlines/{deadlineID}.
func (h *DeadlineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := dockettypes.DeadlineID(chi.URLParam(r, "deadlineID"))

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Complete handles POST /api/v1/deadlines/{deadlineID}/complete.
func (h *DeadlineHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Complete)
}

// Miss handles POST /api/v1/deadlines/{deadlineID}/miss.
func (h *DeadlineHandler) Miss(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Miss)
}

// Cancel handles POST /api/v1/deadlines/{deadlineID}/cancel.
func (h *DeadlineHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

// ExtendDeadlineRequest is the body for POST .../extend.
type ExtendDeadlineRequest struct {
	NewDate time.Time `json:"new_date"`
}

// Extend handles POST /api/v1/deadlines/{deadlineID}/extend.
func (h *DeadlineHandler) Extend(w http.ResponseWriter, r *http.Request) {
	id := dockettypes.DeadlineID(chi.URLParam(r, "deadlineID"))

	var req ExtendDeadlineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if req.NewDate.IsZero() {
		writeAppError(w, errors.New(errors.ErrCodeDeadlineInvalidDate, "new_date is required"))
		return
	}

	d, err := h.service.Extend(r.Context(), id, req.NewDate)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DeadlineHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error),
) {
	id := dockettypes.DeadlineID(chi.URLParam(r, "deadlineID"))

	d, err := apply(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
