package triage

import (
	"context"
	"time"

	domaindocket "github.com/turtacn/LitiDocket/internal/domain/docket"
	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// SubmitJobRequest carries a triage job submission.
type SubmitJobRequest struct {
	CaseID      common.CaseID `json:"case_id"`
	JobType     string        `json:"job_type"`
	DocumentIDs []string      `json:"document_ids"`

	// Threshold and PrivilegeThreshold override the configured defaults
	// when non-nil.
	Threshold          *float64 `json:"threshold,omitempty"`
	PrivilegeThreshold *float64 `json:"privilege_threshold,omitempty"`
}

// Service is the triage job application service.
type Service interface {
	// Submit admits and persists a new job.  At most one job per
	// (case, job type) may be running; a second submission is rejected with
	// ErrCodeJobAlreadyRunning until the first reaches a terminal state.
	Submit(ctx context.Context, req *SubmitJobRequest) (*dockettypes.Job, error)

	// Get returns the current job snapshot, progress included.
	Get(ctx context.Context, id dockettypes.JobID) (*dockettypes.Job, error)

	// ListByCase returns the most recent jobs for a case.
	ListByCase(ctx context.Context, caseID common.CaseID, limit int) ([]dockettypes.Job, error)

	// ReportProgress merges an out-of-band progress report from the worker.
	// Reports for terminal jobs are rejected.
	ReportProgress(ctx context.Context, id dockettypes.JobID, progress float64) error

	// CompleteJob records the scoring result and settles admission.
	CompleteJob(ctx context.Context, id dockettypes.JobID, result *dockettypes.TriageResult) error

	// FailJob records the failure reason and settles admission.
	FailJob(ctx context.Context, id dockettypes.JobID, reason string) error

	// Acknowledge clears a terminal job's record.  Admission was already
	// settled at the terminal transition; this only removes the inspectable
	// result.  Running jobs cannot be acknowledged.
	Acknowledge(ctx context.Context, id dockettypes.JobID) error
}

// ServiceConfig tunes the triage service.
type ServiceConfig struct {
	DefaultThreshold          float64
	DefaultPrivilegeThreshold float64
	AdmissionTTL              time.Duration
}

type service struct {
	jobs      domaindocket.JobRepository
	admission *admissionController
	publisher JobPublisher
	logger    Logger
	cfg       ServiceConfig
}

// NewService wires the triage service.  guard and publisher may be nil in
// single-node or test deployments.
func NewService(
	jobs domaindocket.JobRepository,
	guard AdmissionGuard,
	publisher JobPublisher,
	logger Logger,
	cfg ServiceConfig,
) Service {
	if cfg.DefaultThreshold <= 0 || cfg.DefaultThreshold > 1 {
		cfg.DefaultThreshold = 0.5
	}
	if cfg.DefaultPrivilegeThreshold <= 0 || cfg.DefaultPrivilegeThreshold > 1 {
		cfg.DefaultPrivilegeThreshold = 0.7
	}
	if cfg.AdmissionTTL <= 0 {
		cfg.AdmissionTTL = 30 * time.Minute
	}
	return &service{
		jobs:      jobs,
		admission: newAdmissionController(guard, cfg.AdmissionTTL),
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

func (s *service) Submit(ctx context.Context, req *SubmitJobRequest) (*dockettypes.Job, error) {
	if req == nil {
		return nil, errors.New(errors.ErrCodeValidation, "submit request must not be nil")
	}

	threshold := s.cfg.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	privilegeThreshold := s.cfg.DefaultPrivilegeThreshold
	if req.PrivilegeThreshold != nil {
		privilegeThreshold = *req.PrivilegeThreshold
	}

	job, err := domaindocket.NewJob(req.CaseID, dockettypes.JobType(req.JobType),
		req.DocumentIDs, threshold, privilegeThreshold)
	if err != nil {
		return nil, err
	}

	if err := s.admission.admit(ctx, s.jobs, job); err != nil {
		return nil, err
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		s.admission.settle(ctx, job.Key(), job.ID)
		return nil, errors.Wrap(err, errors.ErrCodeJobSubmissionFailed, "persisting job failed")
	}

	wire := job.ToWire()
	if s.publisher != nil {
		if err := s.publisher.PublishJobSubmitted(ctx, wire); err != nil {
			// The job is persisted and admitted; the poll loop still sees it.
			s.logger.Warn("job submit event not published",
				"job_id", job.ID, "error", err)
		}
	}

	s.logger.Info("triage job admitted",
		"job_id", job.ID, "case_id", job.CaseID, "job_type", job.Type,
		"documents", len(job.DocumentIDs), "threshold", job.Threshold,
		"privilege_threshold", job.PrivilegeThreshold)
	return &wire, nil
}

func (s *service) Get(ctx context.Context, id dockettypes.JobID) (*dockettypes.Job, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	wire := job.ToWire()
	return &wire, nil
}

func (s *service) ListByCase(ctx context.Context, caseID common.CaseID, limit int) ([]dockettypes.Job, error) {
	if caseID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "case_id must not be empty")
	}
	jobs, err := s.jobs.ListByCase(ctx, caseID, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "listing jobs failed")
	}
	out := make([]dockettypes.Job, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ToWire())
	}
	return out, nil
}

func (s *service) ReportProgress(ctx context.Context, id dockettypes.JobID, progress float64) error {
	job, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := job.UpdateProgress(progress); err != nil {
		return err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "persisting progress failed")
	}
	if s.publisher != nil {
		if err := s.publisher.PublishJobProgress(ctx, job.ID, job.Progress); err != nil {
			s.logger.Warn("progress event not published", "job_id", job.ID, "error", err)
		}
	}
	return nil
}

func (s *service) CompleteJob(ctx context.Context, id dockettypes.JobID, result *dockettypes.TriageResult) error {
	return s.finish(ctx, id, func(job *domaindocket.Job) error {
		return job.Complete(result)
	})
}

func (s *service) FailJob(ctx context.Context, id dockettypes.JobID, reason string) error {
	return s.finish(ctx, id, func(job *domaindocket.Job) error {
		return job.Fail(reason)
	})
}

func (s *service) Acknowledge(ctx context.Context, id dockettypes.JobID) error {
	job, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !job.IsTerminal() {
		return errors.Newf(errors.ErrCodeConflict,
			"job %s is still %s; only terminal jobs can be acknowledged", job.ID, job.Status)
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "deleting job record failed")
	}
	s.logger.Info("triage job acknowledged", "job_id", id)
	return nil
}

func (s *service) finish(ctx context.Context, id dockettypes.JobID, transition func(*domaindocket.Job) error) error {
	job, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := transition(job); err != nil {
		return err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "persisting terminal state failed")
	}

	// Admission settles only after the terminal state is durable, so a crash
	// between transition and update cannot admit a duplicate.
	s.admission.settle(ctx, job.Key(), job.ID)

	if s.publisher != nil {
		if err := s.publisher.PublishJobFinished(ctx, job.ToWire()); err != nil {
			s.logger.Warn("finish event not published", "job_id", job.ID, "error", err)
		}
	}
	s.logger.Info("triage job finished",
		"job_id", job.ID, "status", job.Status, "progress", job.Progress)
	return nil
}

func (s *service) load(ctx context.Context, id dockettypes.JobID) (*domaindocket.Job, error) {
	if id == "" {
		return nil, errors.New(errors.ErrCodeValidation, "job id must not be empty")
	}
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading job failed")
	}
	if job == nil {
		return nil, errors.Newf(errors.ErrCodeJobNotFound, "job %s not found", id)
	}
	return job, nil
}
