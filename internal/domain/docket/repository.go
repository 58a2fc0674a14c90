package docket

import (
	"context"
	"time"

	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// Filter carries the conjunctive list predicates.  The zero value (or the
// "all" sentinel in any field) matches everything; all supplied predicates
// must hold.
type Filter struct {
	CaseID   string
	Type     string
	Priority string
	Status   string
}

// QueryOptions defines pagination for deadline list queries.
type QueryOptions struct {
	Limit  int
	Offset int
}

// QueryOption is a functional option for deadline queries.
type QueryOption func(*QueryOptions)

// WithLimit sets the limit for the query.
func WithLimit(limit int) QueryOption {
	return func(o *QueryOptions) {
		o.Limit = limit
	}
}

// WithOffset sets the offset for the query.
func WithOffset(offset int) QueryOption {
	return func(o *QueryOptions) {
		o.Offset = offset
	}
}

// ApplyQueryOptions applies the given options and clamps them to sane bounds.
func ApplyQueryOptions(opts ...QueryOption) QueryOptions {
	options := QueryOptions{
		Limit:  50,
		Offset: 0,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Limit > 500 {
		options.Limit = 500
	}
	if options.Limit <= 0 {
		options.Limit = 50
	}
	if options.Offset < 0 {
		options.Offset = 0
	}
	return options
}

// DeadlineRepository defines the persistence contract for the docket domain.
type DeadlineRepository interface {
	Create(ctx context.Context, d *Deadline) error
	Update(ctx context.Context, d *Deadline) error
	Delete(ctx context.Context, id dockettypes.DeadlineID) error

	GetByID(ctx context.Context, id dockettypes.DeadlineID) (*Deadline, error)
	List(ctx context.Context, filter Filter, opts ...QueryOption) ([]*Deadline, int64, error)
	ListByCase(ctx context.Context, caseID common.CaseID) ([]*Deadline, error)

	// ListInRange returns the deadlines whose DeadlineDate falls inside
	// [from, to) — the half-open interval keeps month windows adjacent
	// without double counting.
	ListInRange(ctx context.Context, from, to time.Time) ([]*Deadline, error)

	// ListOpenDueWithin returns open deadlines due within the next days days,
	// ordered ascending by date.  It backs the upcoming feed.
	ListOpenDueWithin(ctx context.Context, now time.Time, days int) ([]*Deadline, error)

	// CountByStatus powers dashboard gauges.
	CountByStatus(ctx context.Context) (map[dockettypes.DeadlineStatus]int64, error)

	// WithTx runs fn inside a transaction scoped to a repository bound to it.
	WithTx(ctx context.Context, fn func(DeadlineRepository) error) error
}

// JobRepository defines the persistence contract for triage jobs.
type JobRepository interface {
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	Delete(ctx context.Context, id dockettypes.JobID) error
	GetByID(ctx context.Context, id dockettypes.JobID) (*Job, error)

	// FindActive returns the running job for (caseID, jobType), or nil when
	// none is in flight.  It backs the single-flight admission check.
	FindActive(ctx context.Context, caseID common.CaseID, jobType dockettypes.JobType) (*Job, error)

	ListByCase(ctx context.Context, caseID common.CaseID, limit int) ([]*Job, error)
}
