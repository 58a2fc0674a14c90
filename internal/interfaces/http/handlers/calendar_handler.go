package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appdocket "github.com/turtacn/LitiDocket/internal/application/docket"
	"github.com/turtacn/LitiDocket/pkg/errors"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// CalendarHandler serves the month grid and the upcoming feed.
type CalendarHandler struct {
	service appdocket.CalendarService
}

// NewCalendarHandler creates a CalendarHandler.
func NewCalendarHandler(service appdocket.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// MonthGrid handles GET /api/v1/calendar/{year}/{month}.
func (h *CalendarHandler) MonthGrid(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeAppError(w, errors.Newf(errors.ErrCodeCalendarMonthInvalid,
			"year %q is not a number", chi.URLParam(r, "year")))
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeAppError(w, errors.Newf(errors.ErrCodeCalendarMonthInvalid,
			"month %q is not a number", chi.URLParam(r, "month")))
		return
	}

	grid, err := h.service.MonthGrid(r.Context(), year, time.Month(month))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

// Upcoming handles GET /api/v1/deadlines/upcoming.  The optional "window"
// query parameter overrides the configured horizon in days.
func (h *CalendarHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	windowDays := 0
	if v := r.URL.Query().Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeAppError(w, errors.Newf(errors.ErrCodeBadRequest,
				"window %q must be a positive number of days", v))
			return
		}
		windowDays = n
	}

	entries, err := h.service.Upcoming(r.Context(), windowDays)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UpcomingResponse{
		WindowDays: windowDays,
		Count:      len(entries),
		Entries:    entries,
	})
}

// UpcomingResponse is the envelope for the upcoming feed.  WindowDays is the
// caller-requested override; zero means the configured default was used.
type UpcomingResponse struct {
	WindowDays int                            `json:"window_days,omitempty"`
	Count      int                            `json:"count"`
	Entries    []dockettypes.UpcomingDeadline `json:"entries"`
}
