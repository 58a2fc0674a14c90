package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/LitiDocket/internal/application/triage"
	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// TriageHandler serves triage job submission, polling, and acknowledgement.
type TriageHandler struct {
	service triage.Service
}

// NewTriageHandler creates a TriageHandler.
func NewTriageHandler(service triage.Service) *TriageHandler {
	return &TriageHandler{service: service}
}

// Submit handles POST /api/v1/cases/{caseID}/triage.  A second submission
// while a job of the same type is running returns 409.
func (h *TriageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	caseID := common.CaseID(chi.URLParam(r, "caseID"))

	var req triage.SubmitJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	req.CaseID = caseID

	job, err := h.service.Submit(r.Context(), &req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

// ListByCase handles GET /api/v1/cases/{caseID}/triage.  With ?active=true
// only the currently running jobs are returned.
func (h *TriageHandler) ListByCase(w http.ResponseWriter, r *http.Request) {
	caseID := common.CaseID(chi.URLParam(r, "caseID"))
	_, pageSize := parsePagination(r)

	jobs, err := h.service.ListByCase(r.Context(), caseID, pageSize)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if r.URL.Query().Get("active") == "true" {
		active := make([]dockettypes.Job, 0, len(jobs))
		for _, j := range jobs {
			if j.Status == dockettypes.JobRunning {
				active = append(active, j)
			}
		}
		jobs = active
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Items:    jobs,
		Total:    int64(len(jobs)),
		Page:     1,
		PageSize: pageSize,
	})
}

// Get handles GET /api/v1/triage/jobs/{jobID}, the polling endpoint.
func (h *TriageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := dockettypes.JobID(chi.URLParam(r, "jobID"))

	job, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ProgressReport is the body for PUT .../progress.
type ProgressReport struct {
	Progress float64 `json:"progress"`
}

// ReportProgress handles PUT /api/v1/triage/jobs/{jobID}/progress.  Workers
// report percentage completion in [0, 100]; reports against terminal jobs
// are rejected.
func (h *TriageHandler) ReportProgress(w http.ResponseWriter, r *http.Request) {
	id := dockettypes.JobID(chi.URLParam(r, "jobID"))

	var report ProgressReport
	if err := decodeJSON(r, &report); err != nil {
		writeAppError(w, err)
		return
	}
	if report.Progress < 0 || report.Progress > 100 {
		writeAppError(w, errors.Newf(errors.ErrCodeValidation,
			"progress %v is out of range [0, 100]", report.Progress))
		return
	}

	if err := h.service.ReportProgress(r.Context(), id, report.Progress); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Acknowledge handles DELETE /api/v1/triage/jobs/{jobID}.  Only terminal
// jobs can be acknowledged; the call removes the inspectable result.
func (h *TriageHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id := dockettypes.JobID(chi.URLParam(r, "jobID"))

	if err := h.service.Acknowledge(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
