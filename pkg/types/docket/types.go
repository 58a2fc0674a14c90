// Package docket defines the wire-level types for litigation deadlines,
// calendar views, and triage jobs.  These types are shared between the HTTP
// interface, the Go client SDK, and the CLI; the domain layer builds on the
// enum types declared here so there is a single source of truth for the
// closed vocabularies.
package docket

import (
	"time"

	"github.com/turtacn/LitiDocket/pkg/types/common"
)

// DeadlineID is a string alias for a deadline identifier.
type DeadlineID string

// JobID is a string alias for a triage job identifier.
type JobID string

// DeadlineType classifies the procedural nature of a deadline.
type DeadlineType string

const (
	TypeFiling       DeadlineType = "filing"
	TypeDiscovery    DeadlineType = "discovery"
	TypeMotion       DeadlineType = "motion"
	TypeHearing      DeadlineType = "hearing"
	TypeTrial        DeadlineType = "trial"
	TypeAppeal       DeadlineType = "appeal"
	TypeResponse     DeadlineType = "response"
	TypeExpertReport DeadlineType = "expert_report"
	TypeBrief        DeadlineType = "brief"
)

// IsValid checks if the DeadlineType is one of the known kinds.
func (t DeadlineType) IsValid() bool {
	switch t {
	case TypeFiling, TypeDiscovery, TypeMotion, TypeHearing, TypeTrial,
		TypeAppeal, TypeResponse, TypeExpertReport, TypeBrief:
		return true
	default:
		return false
	}
}

// AllDeadlineTypes returns every known deadline type in display order.
func AllDeadlineTypes() []DeadlineType {
	return []DeadlineType{
		TypeFiling, TypeDiscovery, TypeMotion, TypeHearing, TypeTrial,
		TypeAppeal, TypeResponse, TypeExpertReport, TypeBrief,
	}
}

// Priority expresses how consequential missing a deadline would be.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// IsValid checks if the Priority is valid.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	default:
		return false
	}
}

// Rank returns the ordering weight of the priority; lower ranks dominate.
// Critical is 0 so that the highest priority has the smallest rank.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// AllPriorities returns every priority from most to least severe.
func AllPriorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow}
}

// DeadlineStatus represents the lifecycle stage of a deadline.
type DeadlineStatus string

const (
	StatusPending   DeadlineStatus = "pending"
	StatusCompleted DeadlineStatus = "completed"
	StatusMissed    DeadlineStatus = "missed"
	StatusExtended  DeadlineStatus = "extended"
	StatusCancelled DeadlineStatus = "cancelled"
)

// IsValid checks if the DeadlineStatus is valid.
func (s DeadlineStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusMissed, StatusExtended, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the deadline still demands attention.  Extended
// deadlines remain open because the obligation persists under a new date.
func (s DeadlineStatus) IsOpen() bool {
	return s == StatusPending || s == StatusExtended
}

// AllDeadlineStatuses returns every known status.
func AllDeadlineStatuses() []DeadlineStatus {
	return []DeadlineStatus{StatusPending, StatusCompleted, StatusMissed, StatusExtended, StatusCancelled}
}

// FilterAll is the sentinel filter value that matches every deadline.
const FilterAll = "all"

// Deadline is the wire representation of a litigation deadline.
type Deadline struct {
	ID             DeadlineID      `json:"id"`
	CaseID         common.CaseID   `json:"case_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	DeadlineType   DeadlineType    `json:"deadline_type"`
	Priority       Priority        `json:"priority"`
	Status         DeadlineStatus  `json:"status"`
	DeadlineDate   time.Time       `json:"deadline_date"`
	AlertIntervals []int           `json:"alert_intervals,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Metadata       common.Metadata `json:"metadata,omitempty"`
}

// UrgencyLabel is a human-readable countdown such as "Due tomorrow" or
// "3 week(s) remaining".
type UrgencyLabel string

// Urgency is the derived countdown classification of an open deadline.
type Urgency struct {
	DaysUntil int          `json:"days_until"`
	Label     UrgencyLabel `json:"label"`
	Urgent    bool         `json:"urgent"`
	Overdue   bool         `json:"overdue"`
}

// UpcomingDeadline pairs a deadline with its derived urgency for the
// upcoming-window feed.
type UpcomingDeadline struct {
	Deadline Deadline `json:"deadline"`
	Urgency  Urgency  `json:"urgency"`
}

// CalendarDay is one cell of the 42-cell month grid.
type CalendarDay struct {
	Date            time.Time  `json:"date"`
	InMonth         bool       `json:"in_month"`
	IsToday         bool       `json:"is_today"`
	Deadlines       []Deadline `json:"deadlines"`
	HighestPriority *Priority  `json:"highest_priority,omitempty"`
}

// CalendarMonth is the fully materialized month view: exactly 42 cells in
// Sunday-first order, spanning the leading and trailing out-of-month days.
type CalendarMonth struct {
	Year  int           `json:"year"`
	Month time.Month    `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// JobType identifies the kind of background job admitted per case.
type JobType string

const (
	JobDocumentTriage JobType = "document_triage"
	JobConflictSweep  JobType = "conflict_sweep"
)

// IsValid checks if the JobType is known.
func (t JobType) IsValid() bool {
	switch t {
	case JobDocumentTriage, JobConflictSweep:
		return true
	default:
		return false
	}
}

// JobStatus represents the lifecycle stage of a triage job.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// IsValid checks if the JobStatus is valid.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobRunning, JobCompleted, JobFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the job can no longer change state.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is the wire representation of an admitted background job.
type Job struct {
	ID      JobID         `json:"id"`
	CaseID  common.CaseID `json:"case_id"`
	JobType JobType       `json:"job_type"`
	Status  JobStatus     `json:"status"`

	// Progress is the percentage of work done, in [0, 100].
	Progress           float64 `json:"progress"`
	Threshold          float64 `json:"threshold,omitempty"`
	PrivilegeThreshold float64 `json:"privilege_threshold,omitempty"`

	DocumentIDs []string      `json:"document_ids,omitempty"`
	Result      *TriageResult `json:"result,omitempty"`
	Error       string        `json:"error,omitempty"`
	SubmittedAt time.Time     `json:"submitted_at"`
	FinishedAt  *time.Time    `json:"finished_at,omitempty"`
}

// ScoredDocument is one document's verdict within a triage result: relevance
// against the job threshold and attorney-client privilege against the
// privilege threshold.
type ScoredDocument struct {
	DocumentID     string  `json:"document_id"`
	Score          float64 `json:"score"`
	Relevant       bool    `json:"relevant"`
	PrivilegeScore float64 `json:"privilege_score"`
	Privileged     bool    `json:"privileged"`
}

// TriageResult summarizes a completed document-triage job.
type TriageResult struct {
	Documents          []ScoredDocument `json:"documents"`
	RelevantCount      int              `json:"relevant_count"`
	PrivilegedCount    int              `json:"privileged_count"`
	Threshold          float64          `json:"threshold"`
	PrivilegeThreshold float64          `json:"privilege_threshold"`
}

// ConflictStatus is the verdict of a scheduling-conflict check.
type ConflictStatus string

const (
	// ConflictUnchecked means no check has run for the case yet.
	ConflictUnchecked ConflictStatus = "unchecked"
	ConflictClear     ConflictStatus = "clear"
	ConflictDetected  ConflictStatus = "conflict"
	// ConflictUnknown means the last check failed.  It is deliberately
	// distinct from clear: a failed check is never "no conflicts".
	ConflictUnknown ConflictStatus = "unknown"
)

// IsValid checks if the ConflictStatus is valid.
func (s ConflictStatus) IsValid() bool {
	switch s {
	case ConflictUnchecked, ConflictClear, ConflictDetected, ConflictUnknown:
		return true
	default:
		return false
	}
}

// ConflictMatch identifies one collision between two deadlines on a case.
// DeadlineIDs holds the pair in lexicographic order so equal collisions
// compare equal regardless of discovery order.
type ConflictMatch struct {
	DeadlineIDs [2]DeadlineID `json:"deadline_ids"`
	Titles      [2]string     `json:"titles"`
	Dates       [2]time.Time  `json:"dates"`
	Severity    Priority      `json:"severity"`
	Detail      string        `json:"detail,omitempty"`
}

// ConflictReport is the full outcome of a conflict check for a case.
type ConflictReport struct {
	CaseID    common.CaseID   `json:"case_id"`
	Status    ConflictStatus  `json:"status"`
	Matches   []ConflictMatch `json:"matches,omitempty"`
	CheckedAt time.Time       `json:"checked_at"`
}
