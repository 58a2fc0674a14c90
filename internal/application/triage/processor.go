package triage

import (
	"context"
	"sort"

	"github.com/turtacn/LitiDocket/pkg/errors"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// Processor executes admitted triage jobs on the worker.  It scores each
// document against the job threshold, reports progress after every document,
// and settles the job through the service.
type Processor struct {
	svc    Service
	store  DocumentStore
	scorer Scorer
	logger Logger
}

// NewProcessor wires the worker-side scoring pipeline.
func NewProcessor(svc Service, store DocumentStore, scorer Scorer, logger Logger) *Processor {
	return &Processor{svc: svc, store: store, scorer: scorer, logger: logger}
}

// Process runs one job to completion.  Scoring errors fail the job; the
// returned error reports what went wrong for the consumer's retry policy,
// after the job has already been settled as failed.
func (p *Processor) Process(ctx context.Context, job dockettypes.Job) error {
	switch job.JobType {
	case dockettypes.JobDocumentTriage:
		return p.runTriage(ctx, job)
	default:
		err := errors.Newf(errors.ErrCodeValidation, "processor cannot run job type %q", job.JobType)
		p.failJob(ctx, job.ID, err)
		return err
	}
}

func (p *Processor) runTriage(ctx context.Context, job dockettypes.Job) error {
	total := len(job.DocumentIDs)
	scored := make([]dockettypes.ScoredDocument, 0, total)

	for i, docID := range job.DocumentIDs {
		if err := ctx.Err(); err != nil {
			wrapped := errors.Wrap(err, errors.ErrCodeScoringFailed, "triage interrupted")
			p.failJob(ctx, job.ID, wrapped)
			return wrapped
		}

		scores, err := p.scoreDocument(ctx, docID)
		if err != nil {
			p.failJob(ctx, job.ID, err)
			return err
		}

		scored = append(scored, dockettypes.ScoredDocument{
			DocumentID:     docID,
			Score:          scores.Relevance,
			Relevant:       scores.Relevance >= job.Threshold,
			PrivilegeScore: scores.Privilege,
			Privileged:     scores.Privilege >= job.PrivilegeThreshold,
		})

		if err := p.svc.ReportProgress(ctx, job.ID, 100*float64(i+1)/float64(total)); err != nil {
			// Terminal means someone else settled the job; stop scoring.
			if errors.IsCode(err, errors.ErrCodeJobTerminal) {
				p.logger.Warn("job settled mid-run, abandoning", "job_id", job.ID)
				return nil
			}
			p.logger.Warn("progress report dropped", "job_id", job.ID, "error", err)
		}
	}

	result := buildResult(scored, job.Threshold, job.PrivilegeThreshold)
	if err := p.svc.CompleteJob(ctx, job.ID, result); err != nil {
		if errors.IsCode(err, errors.ErrCodeJobTerminal) {
			return nil
		}
		return err
	}
	return nil
}

func (p *Processor) scoreDocument(ctx context.Context, docID string) (DocumentScores, error) {
	content, err := p.store.Fetch(ctx, docID)
	if err != nil {
		return DocumentScores{}, errors.Wrapf(err, errors.ErrCodeDocumentNotFound, "fetching document %s", docID)
	}
	defer content.Close()

	scores, err := p.scorer.Score(ctx, docID, content)
	if err != nil {
		return DocumentScores{}, errors.Wrapf(err, errors.ErrCodeScoringFailed, "scoring document %s", docID)
	}
	scores.Relevance = clampScore(scores.Relevance)
	scores.Privilege = clampScore(scores.Privilege)
	return scores, nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (p *Processor) failJob(ctx context.Context, id dockettypes.JobID, cause error) {
	if err := p.svc.FailJob(ctx, id, cause.Error()); err != nil {
		p.logger.Error("failed job could not be settled", "job_id", id, "error", err)
	}
}

// buildResult assembles the triage summary, most relevant documents first.
func buildResult(scored []dockettypes.ScoredDocument, threshold, privilegeThreshold float64) *dockettypes.TriageResult {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	relevant, privileged := 0, 0
	for _, d := range scored {
		if d.Relevant {
			relevant++
		}
		if d.Privileged {
			privileged++
		}
	}
	return &dockettypes.TriageResult{
		Documents:          scored,
		RelevantCount:      relevant,
		PrivilegedCount:    privileged,
		Threshold:          threshold,
		PrivilegeThreshold: privilegeThreshold,
	}
}
