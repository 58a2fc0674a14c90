package repositories

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domaindocket "github.com/turtacn/LitiDocket/internal/domain/docket"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

const deadlineColumns = `id, case_id, title, description, notes, deadline_type,
	priority, status, deadline_date, alert_intervals, created_at, updated_at`

// DeadlineRepository is the PostgreSQL implementation of
// domaindocket.DeadlineRepository.  All queries are parameterised; the same
// instance serves pool-bound and transaction-bound use through WithTx.
type DeadlineRepository struct {
	db     querier
	begin  txBeginner
	logger logging.Logger
}

// NewDeadlineRepository constructs a pool-bound repository.
func NewDeadlineRepository(pool *pgxpool.Pool, logger logging.Logger) *DeadlineRepository {
	return &DeadlineRepository{db: pool, begin: pool, logger: logger}
}

var _ domaindocket.DeadlineRepository = (*DeadlineRepository)(nil)

func (r *DeadlineRepository) Create(ctx context.Context, d *domaindocket.Deadline) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO deadlines (`+deadlineColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		d.ID, d.CaseID, d.Title, d.Description, d.Notes, d.Type,
		d.Priority, d.Status, d.DeadlineDate, intervalsToSQL(d.AlertIntervals),
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrapf(err, errors.ErrCodeConflict, "deadline %s already exists", d.ID)
		}
		r.logger.Error("deadline insert failed",
			logging.String("deadline_id", string(d.ID)), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert deadline")
	}
	return nil
}

func (r *DeadlineRepository) Update(ctx context.Context, d *domaindocket.Deadline) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE deadlines SET
			title = $2, description = $3, notes = $4, deadline_type = $5,
			priority = $6, status = $7, deadline_date = $8,
			alert_intervals = $9, updated_at = $10
		WHERE id = $1`,
		d.ID, d.Title, d.Description, d.Notes, d.Type,
		d.Priority, d.Status, d.DeadlineDate,
		intervalsToSQL(d.AlertIntervals), d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("deadline update failed",
			logging.String("deadline_id", string(d.ID)), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update deadline")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeDeadlineNotFound, "deadline %s not found", d.ID)
	}
	return nil
}

func (r *DeadlineRepository) Delete(ctx context.Context, id dockettypes.DeadlineID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM deadlines WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete deadline")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeDeadlineNotFound, "deadline %s not found", id)
	}
	return nil
}

func (r *DeadlineRepository) GetByID(ctx context.Context, id dockettypes.DeadlineID) (*domaindocket.Deadline, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+deadlineColumns+` FROM deadlines WHERE id = $1`, id)
	d, err := scanDeadline(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Newf(errors.ErrCodeDeadlineNotFound, "deadline %s not found", id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load deadline")
	}
	return d, nil
}

// List applies the conjunctive filter and pagination.  Empty or "all"
// predicates match everything; results are ordered by due date, then id for a
// stable page sequence.
func (r *DeadlineRepository) List(ctx context.Context, filter domaindocket.Filter, opts ...domaindocket.QueryOption) ([]*domaindocket.Deadline, int64, error) {
	options := domaindocket.ApplyQueryOptions(opts...)
	where, args := buildDeadlineFilter(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM deadlines`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count deadlines")
	}

	query := fmt.Sprintf(`SELECT `+deadlineColumns+` FROM deadlines%s
		ORDER BY deadline_date ASC, id ASC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, options.Limit, options.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list deadlines")
	}
	defer rows.Close()

	out, err := collectDeadlines(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *DeadlineRepository) ListByCase(ctx context.Context, caseID common.CaseID) ([]*domaindocket.Deadline, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+deadlineColumns+` FROM deadlines
		WHERE case_id = $1 ORDER BY deadline_date ASC, id ASC`, caseID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list deadlines by case")
	}
	defer rows.Close()
	return collectDeadlines(rows)
}

func (r *DeadlineRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*domaindocket.Deadline, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+deadlineColumns+` FROM deadlines
		WHERE deadline_date >= $1 AND deadline_date < $2
		ORDER BY deadline_date ASC, id ASC`, from, to)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list deadlines in range")
	}
	defer rows.Close()
	return collectDeadlines(rows)
}

// ListOpenDueWithin returns a one-day slop on each side of the window; the
// calendar service re-buckets by civil day in its configured timezone, which
// the database cannot do with a bare timestamp comparison.
func (r *DeadlineRepository) ListOpenDueWithin(ctx context.Context, now time.Time, days int) ([]*domaindocket.Deadline, error) {
	from := now.AddDate(0, 0, -1)
	to := now.AddDate(0, 0, days+1)
	rows, err := r.db.Query(ctx, `
		SELECT `+deadlineColumns+` FROM deadlines
		WHERE status IN ('pending', 'extended')
		  AND deadline_date >= $1 AND deadline_date <= $2
		ORDER BY deadline_date ASC, id ASC`, from, to)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list upcoming deadlines")
	}
	defer rows.Close()
	return collectDeadlines(rows)
}

func (r *DeadlineRepository) CountByStatus(ctx context.Context) (map[dockettypes.DeadlineStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM deadlines GROUP BY status`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count deadlines by status")
	}
	defer rows.Close()

	counts := make(map[dockettypes.DeadlineStatus]int64)
	for rows.Next() {
		var status dockettypes.DeadlineStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan status count")
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read status counts")
	}
	return counts, nil
}

// WithTx runs fn against a repository bound to a single transaction.  Nested
// calls on a transaction-bound repository join the ambient transaction.
func (r *DeadlineRepository) WithTx(ctx context.Context, fn func(domaindocket.DeadlineRepository) error) error {
	if r.begin == nil {
		return fn(r)
	}

	tx, err := r.begin.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	bound := &DeadlineRepository{db: tx, logger: r.logger}
	if err := fn(bound); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit transaction")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Row mapping
// ─────────────────────────────────────────────────────────────────────────────

func scanDeadline(row pgx.Row) (*domaindocket.Deadline, error) {
	var d domaindocket.Deadline
	var intervals []int32
	err := row.Scan(
		&d.ID, &d.CaseID, &d.Title, &d.Description, &d.Notes, &d.Type,
		&d.Priority, &d.Status, &d.DeadlineDate, &intervals,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.AlertIntervals = intervalsFromSQL(intervals)
	return &d, nil
}

func collectDeadlines(rows pgx.Rows) ([]*domaindocket.Deadline, error) {
	var out []*domaindocket.Deadline
	for rows.Next() {
		d, err := scanDeadline(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan deadline")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read deadlines")
	}
	return out, nil
}

// buildDeadlineFilter renders the conjunctive WHERE clause.  A predicate is
// skipped when empty or set to the "all" sentinel.
func buildDeadlineFilter(filter domaindocket.Filter) (string, []any) {
	var clauses []string
	var args []any

	add := func(column, value string) {
		if value == "" || value == dockettypes.FilterAll {
			return
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	add("case_id", filter.CaseID)
	add("deadline_type", filter.Type)
	add("priority", filter.Priority)
	add("status", filter.Status)

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func intervalsToSQL(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func intervalsFromSQL(in []int32) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == "23505"
}
