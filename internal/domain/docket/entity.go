// Package docket defines the litigation deadline aggregate and the pure
// calendar/urgency business logic built on top of it.
package docket

import (
	"fmt"
	"sort"
	"time"

	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// maxAlertIntervalDays bounds how far ahead an alert may be scheduled.
const maxAlertIntervalDays = 365

// Deadline is the aggregate root for a single time-bound litigation
// obligation.  All state changes go through the command methods below so the
// status machine stays consistent.
type Deadline struct {
	// ID uniquely identifies this deadline.
	ID dockettypes.DeadlineID `json:"id"`

	// CaseID references the litigation case this deadline belongs to.
	CaseID common.CaseID `json:"case_id"`

	// Title is the short display name, e.g. "Reply brief due".
	Title string `json:"title"`

	// Description provides human-readable context about what action is required.
	Description string `json:"description"`

	// Notes carries free-form annotations added by staff.
	Notes string `json:"notes"`

	// Type categorizes the procedural nature of the deadline.
	Type dockettypes.DeadlineType `json:"deadline_type"`

	// Priority indicates the impact of missing this deadline.
	Priority dockettypes.Priority `json:"priority"`

	// Status is the lifecycle stage; transitions are one-way out of the open
	// states (pending, extended).
	Status dockettypes.DeadlineStatus `json:"status"`

	// DeadlineDate is the date the obligation falls due.  Day bucketing uses
	// the calendar day of this value, independent of time-of-day.
	DeadlineDate time.Time `json:"deadline_date"`

	// AlertIntervals lists the day offsets before DeadlineDate at which
	// reminders fire, sorted ascending and deduplicated.
	AlertIntervals []int `json:"alert_intervals"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDeadline creates a Deadline with validation applied.
//
// Business rules:
//   - CaseID and Title must not be empty
//   - DeadlineDate must not be zero
//   - Type and Priority must be known enum values
//   - AlertIntervals are normalized (deduplicated, sorted ascending)
func NewDeadline(
	caseID common.CaseID,
	title string,
	deadlineType dockettypes.DeadlineType,
	priority dockettypes.Priority,
	deadlineDate time.Time,
) (*Deadline, error) {
	d := &Deadline{
		ID:           dockettypes.DeadlineID(common.NewID()),
		CaseID:       caseID,
		Title:        title,
		Type:         deadlineType,
		Priority:     priority,
		Status:       dockettypes.StatusPending,
		DeadlineDate: deadlineDate,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks every invariant of the aggregate.  It is invoked by the
// factory and again by the application layer before persisting updates that
// were assembled from external input.
func (d *Deadline) Validate() error {
	if d.CaseID == "" {
		return errors.New(errors.ErrCodeValidation, "case_id must not be empty")
	}
	if d.Title == "" {
		return errors.New(errors.ErrCodeValidation, "title must not be empty")
	}
	if d.DeadlineDate.IsZero() {
		return errors.New(errors.ErrCodeDeadlineInvalidDate, "deadline_date must not be zero")
	}
	if !d.Type.IsValid() {
		return errors.Newf(errors.ErrCodeDeadlineInvalidEnum, "unknown deadline type %q", d.Type)
	}
	if !d.Priority.IsValid() {
		return errors.Newf(errors.ErrCodeDeadlineInvalidEnum, "unknown priority %q", d.Priority)
	}
	if !d.Status.IsValid() {
		return errors.Newf(errors.ErrCodeDeadlineInvalidEnum, "unknown status %q", d.Status)
	}
	for _, iv := range d.AlertIntervals {
		if iv < 0 || iv > maxAlertIntervalDays {
			return errors.Newf(errors.ErrCodeDeadlineAlertInvalid,
				"alert interval %d is out of range [0, %d]", iv, maxAlertIntervalDays)
		}
	}
	return nil
}

// NormalizeAlertIntervals deduplicates the alert intervals and sorts them
// ascending for display.
func (d *Deadline) NormalizeAlertIntervals() {
	if len(d.AlertIntervals) == 0 {
		return
	}
	seen := make(map[int]struct{}, len(d.AlertIntervals))
	out := d.AlertIntervals[:0]
	for _, iv := range d.AlertIntervals {
		if _, dup := seen[iv]; dup {
			continue
		}
		seen[iv] = struct{}{}
		out = append(out, iv)
	}
	sort.Ints(out)
	d.AlertIntervals = out
}

// IsOpen reports whether the deadline still demands attention.
func (d *Deadline) IsOpen() bool {
	return d.Status.IsOpen()
}

// ─────────────────────────────────────────────────────────────────────────────
// Command methods — status machine
// ─────────────────────────────────────────────────────────────────────────────

// Complete marks an open deadline as completed.
func (d *Deadline) Complete() error {
	return d.transition(dockettypes.StatusCompleted)
}

// Miss marks an open deadline as missed.
func (d *Deadline) Miss() error {
	return d.transition(dockettypes.StatusMissed)
}

// Cancel marks an open deadline as cancelled.
func (d *Deadline) Cancel() error {
	return d.transition(dockettypes.StatusCancelled)
}

// Extend moves an open deadline to a later date and marks it extended.
// The obligation stays open under the new date.
func (d *Deadline) Extend(newDate time.Time) error {
	if !d.IsOpen() {
		return errors.Newf(errors.ErrCodeConflict,
			"cannot extend a %s deadline", d.Status)
	}
	if newDate.IsZero() {
		return errors.New(errors.ErrCodeDeadlineInvalidDate, "extension date must not be zero")
	}
	if !newDate.After(d.DeadlineDate) {
		return errors.New(errors.ErrCodeDeadlineInvalidDate,
			fmt.Sprintf("extension date %s is not after the current deadline %s",
				newDate.Format("2006-01-02"), d.DeadlineDate.Format("2006-01-02")))
	}
	d.DeadlineDate = newDate
	d.Status = dockettypes.StatusExtended
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *Deadline) transition(to dockettypes.DeadlineStatus) error {
	if !d.IsOpen() {
		return errors.Newf(errors.ErrCodeConflict,
			"deadline is already %s; transitions out of a closed state are not allowed", d.Status)
	}
	d.Status = to
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Calendar-day helpers
// ─────────────────────────────────────────────────────────────────────────────

// SameCalendarDay reports whether a and b fall on the same year/month/day
// after translating both into loc.  Time-of-day is ignored.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ToWire converts the aggregate into its wire representation.
func (d *Deadline) ToWire() dockettypes.Deadline {
	return dockettypes.Deadline{
		ID:             d.ID,
		CaseID:         d.CaseID,
		Title:          d.Title,
		Description:    d.Description,
		Notes:          d.Notes,
		DeadlineType:   d.Type,
		Priority:       d.Priority,
		Status:         d.Status,
		DeadlineDate:   d.DeadlineDate,
		AlertIntervals: append([]int(nil), d.AlertIntervals...),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// FromWire builds an aggregate from a wire Deadline without validating; call
// Validate before persisting.
func FromWire(w dockettypes.Deadline) *Deadline {
	return &Deadline{
		ID:             w.ID,
		CaseID:         w.CaseID,
		Title:          w.Title,
		Description:    w.Description,
		Notes:          w.Notes,
		Type:           w.DeadlineType,
		Priority:       w.Priority,
		Status:         w.Status,
		DeadlineDate:   w.DeadlineDate,
		AlertIntervals: append([]int(nil), w.AlertIntervals...),
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}
