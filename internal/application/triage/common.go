// Package triage implements document-triage job admission, progress
// tracking, and the scoring pipeline executed by the worker.
package triage

import (
	"context"
	"io"
	"time"

	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// Logger abstracts structured logging.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// AdmissionGuard is the distributed half of single-flight admission.  The
// in-process registry catches double submissions within one server; the guard
// extends the same guarantee across replicas.
type AdmissionGuard interface {
	// TryAcquire claims key for owner, returning false when another owner
	// already holds it.  The claim expires after ttl as a crash backstop.
	TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)

	// Release drops the claim if owner still holds it.
	Release(ctx context.Context, key, owner string) error
}

// JobPublisher hands accepted jobs and their progress to the message broker.
type JobPublisher interface {
	PublishJobSubmitted(ctx context.Context, job dockettypes.Job) error
	PublishJobProgress(ctx context.Context, jobID dockettypes.JobID, progress float64) error
	PublishJobFinished(ctx context.Context, job dockettypes.Job) error
}

// DocumentStore abstracts the object store holding triage documents.
type DocumentStore interface {
	// Fetch streams the raw document content; the caller closes the reader.
	Fetch(ctx context.Context, documentID string) (io.ReadCloser, error)

	// Exists reports whether the document is present without fetching it.
	Exists(ctx context.Context, documentID string) (bool, error)
}

// DocumentScores carries the inference collaborator's verdicts for one
// document.  Both scores fall in [0, 1].
type DocumentScores struct {
	Relevance float64
	Privilege float64
}

// Scorer scores one document's content for relevance and privilege.
type Scorer interface {
	Score(ctx context.Context, documentID string, content io.Reader) (DocumentScores, error)
}
