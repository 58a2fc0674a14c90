package triage

import (
	"context"
	"sync"
	"time"

	domaindocket "github.com/turtacn/LitiDocket/internal/domain/docket"
	"github.com/turtacn/LitiDocket/pkg/errors"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// admissionController enforces single-flight job admission.  At most one job
// per (case, job type) may be in flight at a time.  Three layers back the
// guarantee, checked in order of cost:
//
//  1. an in-process registry, which serializes submissions racing inside one
//     server process;
//  2. an optional distributed guard (a Redis lock), which extends the check
//     across replicas;
//  3. the repository's FindActive query, the durable source of truth that
//     survives restarts.
type admissionController struct {
	mu     sync.Mutex
	active map[string]dockettypes.JobID

	guard AdmissionGuard
	ttl   time.Duration
}

func newAdmissionController(guard AdmissionGuard, ttl time.Duration) *admissionController {
	return &admissionController{
		active: map[string]dockettypes.JobID{},
		guard:  guard,
		ttl:    ttl,
	}
}

// admit claims the admission key for jobID.  It returns ErrCodeJobAlreadyRunning
// when any layer reports a job already in flight.
func (a *admissionController) admit(ctx context.Context, repo domaindocket.JobRepository, job *domaindocket.Job) error {
	key, jobID := job.Key(), job.ID

	a.mu.Lock()
	if holder, ok := a.active[key]; ok {
		a.mu.Unlock()
		return errors.Newf(errors.ErrCodeJobAlreadyRunning,
			"job %s already in flight for %s", holder, key)
	}
	a.active[key] = jobID
	a.mu.Unlock()

	release := func() {
		a.mu.Lock()
		delete(a.active, key)
		a.mu.Unlock()
	}

	if a.guard != nil {
		ok, err := a.guard.TryAcquire(ctx, key, string(jobID), a.ttl)
		if err != nil {
			release()
			return errors.Wrap(err, errors.ErrCodeJobSubmissionFailed, "admission guard unavailable")
		}
		if !ok {
			release()
			return errors.Newf(errors.ErrCodeJobAlreadyRunning,
				"another replica holds the admission claim for %s", key)
		}
	}

	existing, err := repo.FindActive(ctx, job.CaseID, job.Type)
	if err != nil {
		a.releaseAll(ctx, key, jobID)
		return errors.Wrap(err, errors.ErrCodeInternal, "active-job lookup failed")
	}
	if existing != nil && existing.ID != jobID {
		a.releaseAll(ctx, key, jobID)
		return errors.Newf(errors.ErrCodeJobAlreadyRunning,
			"job %s already in flight for %s", existing.ID, key)
	}
	return nil
}

// settle releases the admission claim once the job reaches a terminal state.
func (a *admissionController) settle(ctx context.Context, key string, jobID dockettypes.JobID) {
	a.releaseAll(ctx, key, jobID)
}

func (a *admissionController) releaseAll(ctx context.Context, key string, jobID dockettypes.JobID) {
	a.mu.Lock()
	if a.active[key] == jobID {
		delete(a.active, key)
	}
	a.mu.Unlock()

	if a.guard != nil {
		// Best effort; the TTL reclaims the claim if this fails.
		_ = a.guard.Release(ctx, key, string(jobID))
	}
}
