package docket

import (
	"context"
	"time"

	domaindocket "github.com/turtacn/LitiDocket/internal/domain/docket"
	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// Deadline event types published on mutations.
const (
	EventDeadlineCreated   = "deadline.created"
	EventDeadlineUpdated   = "deadline.updated"
	EventDeadlineCompleted = "deadline.completed"
	EventDeadlineMissed    = "deadline.missed"
	EventDeadlineExtended  = "deadline.extended"
	EventDeadlineCancelled = "deadline.cancelled"
	EventDeadlineDeleted   = "deadline.deleted"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// CreateDeadlineRequest carries the fields for a new deadline.
type CreateDeadlineRequest struct {
	CaseID         string    `json:"case_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	DeadlineType   string    `json:"deadline_type"`
	Priority       string    `json:"priority"`
	DeadlineDate   time.Time `json:"deadline_date"`
	AlertIntervals []int     `json:"alert_intervals,omitempty"`
}

// UpdateDeadlineRequest carries editable fields; nil pointers leave the
// current value untouched.
type UpdateDeadlineRequest struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	DeadlineType   *string    `json:"deadline_type,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	DeadlineDate   *time.Time `json:"deadline_date,omitempty"`
	AlertIntervals []int      `json:"alert_intervals,omitempty"`
}

// ListDeadlinesRequest combines filtering, sorting, and pagination.
type ListDeadlinesRequest struct {
	Filter    domaindocket.Filter
	SortKey   SortKey
	SortOrder SortOrder
	Page      int
	PageSize  int
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

// DeadlineService defines the application-level contract for deadline
// lifecycle management.
type DeadlineService interface {
	Create(ctx context.Context, req *CreateDeadlineRequest) (*dockettypes.Deadline, error)
	Update(ctx context.Context, id dockettypes.DeadlineID, req *UpdateDeadlineRequest) (*dockettypes.Deadline, error)
	Get(ctx context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error)
	List(ctx context.Context, req *ListDeadlinesRequest) ([]dockettypes.Deadline, int64, error)
	Delete(ctx context.Context, id dockettypes.DeadlineID) error

	Complete(ctx context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error)
	Miss(ctx context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error)
	Cancel(ctx context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error)
	Extend(ctx context.Context, id dockettypes.DeadlineID, newDate time.Time) (*dockettypes.Deadline, error)
}

type deadlineServiceImpl struct {
	repo      domaindocket.DeadlineRepository
	cache     CachePort
	events    EventPublisher
	conflicts ConflictRouter
	logger    Logger
	loc       *time.Location
}

// NewDeadlineService constructs a DeadlineService.  events and conflicts may
// be nil in contexts (CLI, tests) that have no broker or checker attached.
func NewDeadlineService(
	repo domaindocket.DeadlineRepository,
	cache CachePort,
	events EventPublisher,
	conflicts ConflictRouter,
	logger Logger,
	loc *time.Location,
) DeadlineService {
	if loc == nil {
		loc = time.Local
	}
	return &deadlineServiceImpl{
		repo:      repo,
		cache:     cache,
		events:    events,
		conflicts: conflicts,
		logger:    logger,
		loc:       loc,
	}
}

func (s *deadlineServiceImpl) Create(ctx context.Context, req *CreateDeadlineRequest) (*dockettypes.Deadline, error) {
	if req == nil {
		return nil, errors.NewValidationError("request must not be nil")
	}

	d, err := domaindocket.NewDeadline(
		common.CaseID(req.CaseID),
		req.Title,
		dockettypes.DeadlineType(req.DeadlineType),
		dockettypes.Priority(req.Priority),
		req.DeadlineDate,
	)
	if err != nil {
		return nil, err
	}
	d.Description = req.Description
	d.Notes = req.Notes
	d.AlertIntervals = req.AlertIntervals
	d.NormalizeAlertIntervals()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to persist deadline")
	}

	s.afterMutation(ctx, EventDeadlineCreated, d)
	s.logger.Info("deadline created",
		"deadline_id", string(d.ID), "case_id", string(d.CaseID), "type", string(d.Type))
	return wirePtr(d), nil
}

func (s *deadlineServiceImpl) Update(ctx context.Context, id dockettypes.DeadlineID, req *UpdateDeadlineRequest) (*dockettypes.Deadline, error) {
	if req == nil {
		return nil, errors.NewValidationError("request must not be nil")
	}

	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	prevDate := d.DeadlineDate

	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Notes != nil {
		d.Notes = *req.Notes
	}
	if req.DeadlineType != nil {
		d.Type = dockettypes.DeadlineType(*req.DeadlineType)
	}
	if req.Priority != nil {
		d.Priority = dockettypes.Priority(*req.Priority)
	}
	if req.DeadlineDate != nil {
		d.DeadlineDate = *req.DeadlineDate
	}
	if req.AlertIntervals != nil {
		d.AlertIntervals = req.AlertIntervals
		d.NormalizeAlertIntervals()
	}
	d.UpdatedAt = time.Now().UTC()

	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update deadline")
	}

	s.afterMutation(ctx, EventDeadlineUpdated, d, prevDate)
	return wirePtr(d), nil
}

func (s *deadlineServiceImpl) Get(ctx context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return wirePtr(d), nil
}

func (s *deadlineServiceImpl) List(ctx context.Context, req *ListDeadlinesRequest) ([]dockettypes.Deadline, int64, error) {
	if req == nil {
		req = &ListDeadlinesRequest{}
	}
	if err := ValidateFilter(req.Filter); err != nil {
		return nil, 0, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := 0
	if req.Page > 1 {
		offset = (req.Page - 1) * pageSize
	}

	deadlines, total, err := s.repo.List(ctx, req.Filter,
		domaindocket.WithLimit(pageSize), domaindocket.WithOffset(offset))
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list deadlines")
	}

	sorted := ApplyFilterSort(deadlines, domaindocket.Filter{}, req.SortKey, req.SortOrder)
	out := make([]dockettypes.Deadline, 0, len(sorted))
	for _, d := range sorted {
		out = append(out, d.ToWire())
	}
	return out, total, nil
}

func (s *deadlineServiceImpl) Delete(ctx context.Context, id dockettypes.DeadlineID) error {
	d, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete deadline")
	}
	s.afterMutation(ctx, EventDeadlineDeleted, d)
	return nil
}

func (s *deadlineServiceImpl) Complete(ctx context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error) {
	return s.applyTransition(ctx, id, EventDeadlineCompleted, (*domaindocket.Deadline).Complete)
}

func (s *deadlineServiceImpl) Miss(ctx context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error) {
	return s.applyTransition(ctx, id, EventDeadlineMissed, (*domaindocket.Deadline).Miss)
}

func (s *deadlineServiceImpl) Cancel(ctx context.Context, id dockettypes.DeadlineID) (*dockettypes.Deadline, error) {
	return s.applyTransition(ctx, id, EventDeadlineCancelled, (*domaindocket.Deadline).Cancel)
}

func (s *deadlineServiceImpl) Extend(ctx context.Context, id dockettypes.DeadlineID, newDate time.Time) (*dockettypes.Deadline, error) {
	return s.applyTransition(ctx, id, EventDeadlineExtended, func(d *domaindocket.Deadline) error {
		return d.Extend(newDate)
	})
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

func (s *deadlineServiceImpl) load(ctx context.Context, id dockettypes.DeadlineID) (*domaindocket.Deadline, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load deadline")
	}
	if d == nil {
		return nil, errors.Newf(errors.ErrCodeDeadlineNotFound, "deadline %s not found", id)
	}
	return d, nil
}

func (s *deadlineServiceImpl) applyTransition(
	ctx context.Context,
	id dockettypes.DeadlineID,
	eventType string,
	transition func(*domaindocket.Deadline) error,
) (*dockettypes.Deadline, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	prevDate := d.DeadlineDate
	if err := transition(d); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to persist transition")
	}

	s.afterMutation(ctx, eventType, d, prevDate)
	s.logger.Info("deadline transitioned",
		"deadline_id", string(d.ID), "event", eventType, "status", string(d.Status))
	return wirePtr(d), nil
}

// afterMutation invalidates the cached grids touched by the deadline,
// publishes the mutation event, and routes a conflict check for the case.
// These are best-effort side channels: failures are logged, never returned,
// so a broker or cache outage cannot block a court-deadline write.
// previousDates carries dates the deadline occupied before the mutation, so a
// date-moving update also drops the grid it moved away from.
func (s *deadlineServiceImpl) afterMutation(ctx context.Context, eventType string, d *domaindocket.Deadline, previousDates ...time.Time) {
	if s.cache != nil {
		s.invalidateGrids(ctx, d, append(previousDates, d.DeadlineDate)...)
	}
	if s.events != nil {
		if err := s.events.PublishDeadlineEvent(ctx, eventType, d.ToWire()); err != nil {
			s.logger.Warn("deadline: event publish failed",
				"deadline_id", string(d.ID), "event", eventType, "error", err)
		}
	}
	if s.conflicts != nil && eventType != EventDeadlineDeleted {
		if err := s.conflicts.RouteCheck(ctx, d.CaseID); err != nil {
			s.logger.Warn("deadline: conflict check routing failed",
				"case_id", string(d.CaseID), "error", err)
		}
	}
}

// invalidateGrids drops the cached month grid for each date, plus the
// neighboring months: a deadline near a month boundary also renders in the
// adjacent grid's leading or trailing cells.
func (s *deadlineServiceImpl) invalidateGrids(ctx context.Context, d *domaindocket.Deadline, dates ...time.Time) {
	seen := make(map[string]struct{}, 3*len(dates))
	for _, date := range dates {
		local := date.In(s.loc)
		first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, s.loc)
		for _, month := range [3]time.Time{first.AddDate(0, -1, 0), first, first.AddDate(0, 1, 0)} {
			key := monthCacheKey(month.Year(), month.Month())
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			if err := s.cache.Delete(ctx, key); err != nil {
				s.logger.Warn("deadline: cache invalidation failed",
					"deadline_id", string(d.ID), "key", key, "error", err)
			}
		}
	}
}

func wirePtr(d *domaindocket.Deadline) *dockettypes.Deadline {
	w := d.ToWire()
	return &w
}
