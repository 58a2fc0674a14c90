package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domaindocket "github.com/turtacn/LitiDocket/internal/domain/docket"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

const jobColumns = `id, case_id, job_type, status, progress, threshold,
	privilege_threshold, document_ids, result, error, submitted_at, finished_at`

// JobRepository is the PostgreSQL implementation of
// domaindocket.JobRepository.  A partial unique index on
// (case_id, job_type) WHERE status = 'running' makes the single-flight
// admission rule hold even if every in-memory and Redis guard is lost.
type JobRepository struct {
	db     querier
	logger logging.Logger
}

// NewJobRepository constructs a pool-bound repository.
func NewJobRepository(pool *pgxpool.Pool, logger logging.Logger) *JobRepository {
	return &JobRepository{db: pool, logger: logger}
}

var _ domaindocket.JobRepository = (*JobRepository)(nil)

func (r *JobRepository) Create(ctx context.Context, j *domaindocket.Job) error {
	result, err := marshalResult(j.Result)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO triage_jobs (`+jobColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		j.ID, j.CaseID, j.Type, j.Status, j.Progress, j.Threshold,
		j.PrivilegeThreshold, j.DocumentIDs, result, j.Error, j.SubmittedAt, j.FinishedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Newf(errors.ErrCodeJobAlreadyRunning,
				"a %s job is already running for case %s", j.Type, j.CaseID)
		}
		r.logger.Error("job insert failed",
			logging.String("job_id", string(j.ID)), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert job")
	}
	return nil
}

func (r *JobRepository) Update(ctx context.Context, j *domaindocket.Job) error {
	result, err := marshalResult(j.Result)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE triage_jobs SET
			status = $2, progress = $3, result = $4, error = $5, finished_at = $6
		WHERE id = $1`,
		j.ID, j.Status, j.Progress, result, j.Error, j.FinishedAt,
	)
	if err != nil {
		r.logger.Error("job update failed",
			logging.String("job_id", string(j.ID)), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update job")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeJobNotFound, "job %s not found", j.ID)
	}
	return nil
}

func (r *JobRepository) Delete(ctx context.Context, id dockettypes.JobID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM triage_jobs WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete job")
	}
	if tag.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeJobNotFound, "job %s not found", id)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id dockettypes.JobID) (*domaindocket.Job, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+jobColumns+` FROM triage_jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Newf(errors.ErrCodeJobNotFound, "job %s not found", id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load job")
	}
	return j, nil
}

// FindActive returns the running job for (caseID, jobType), or nil when none
// is in flight.
func (r *JobRepository) FindActive(ctx context.Context, caseID common.CaseID, jobType dockettypes.JobType) (*domaindocket.Job, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+jobColumns+` FROM triage_jobs
		WHERE case_id = $1 AND job_type = $2 AND status = 'running'
		LIMIT 1`, caseID, jobType)
	j, err := scanJob(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to find active job")
	}
	return j, nil
}

func (r *JobRepository) ListByCase(ctx context.Context, caseID common.CaseID, limit int) ([]*domaindocket.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+jobColumns+` FROM triage_jobs
		WHERE case_id = $1
		ORDER BY submitted_at DESC, id DESC LIMIT $2`, caseID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list jobs by case")
	}
	defer rows.Close()

	var out []*domaindocket.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan job")
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read jobs")
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Row mapping
// ─────────────────────────────────────────────────────────────────────────────

func scanJob(row pgx.Row) (*domaindocket.Job, error) {
	var j domaindocket.Job
	var result []byte
	err := row.Scan(
		&j.ID, &j.CaseID, &j.Type, &j.Status, &j.Progress, &j.Threshold,
		&j.PrivilegeThreshold, &j.DocumentIDs, &result, &j.Error, &j.SubmittedAt, &j.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(result) > 0 {
		var tr dockettypes.TriageResult
		if err := json.Unmarshal(result, &tr); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode triage result")
		}
		j.Result = &tr
	}
	return &j, nil
}

func marshalResult(result *dockettypes.TriageResult) ([]byte, error) {
	if result == nil {
		return nil, nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode triage result")
	}
	return raw, nil
}
