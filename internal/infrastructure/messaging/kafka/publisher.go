package kafka

import (
	"context"

	"github.com/turtacn/LitiDocket/pkg/errors"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

const sourceService = "litidocket-apiserver"

// DeadlineEventPublisher adapts the Producer to the deadline service's
// EventPublisher port.
type DeadlineEventPublisher struct {
	producer *Producer
}

func NewDeadlineEventPublisher(producer *Producer) *DeadlineEventPublisher {
	return &DeadlineEventPublisher{producer: producer}
}

func (p *DeadlineEventPublisher) PublishDeadlineEvent(ctx context.Context, eventType string, deadline dockettypes.Deadline) error {
	env, err := NewEventEnvelope(eventType, sourceService, DeadlineEventPayload{Deadline: deadline})
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicDeadlineEvents, []byte(deadline.CaseID))
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// JobEventPublisher adapts the Producer to the triage service's JobPublisher
// port.  Job traffic is keyed by case so one case's jobs stay ordered.
type JobEventPublisher struct {
	producer *Producer
	source   string
}

func NewJobEventPublisher(producer *Producer, source string) *JobEventPublisher {
	if source == "" {
		source = sourceService
	}
	return &JobEventPublisher{producer: producer, source: source}
}

func (p *JobEventPublisher) PublishJobSubmitted(ctx context.Context, job dockettypes.Job) error {
	env, err := NewEventEnvelope("triage.job.submitted", p.source, JobSubmittedPayload{Job: job})
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicJobSubmitted, []byte(job.CaseID))
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *JobEventPublisher) PublishJobProgress(ctx context.Context, jobID dockettypes.JobID, progress float64) error {
	env, err := NewEventEnvelope("triage.job.progress", p.source, JobProgressPayload{
		JobID:    jobID,
		Progress: progress,
	})
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicJobProgress, []byte(jobID))
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *JobEventPublisher) PublishJobFinished(ctx context.Context, job dockettypes.Job) error {
	if !job.Status.IsTerminal() {
		return errors.Newf(errors.ErrCodeValidation,
			"job %s is %s, not terminal", job.ID, job.Status)
	}
	env, err := NewEventEnvelope("triage.job.finished", p.source, JobProgressPayload{
		JobID:    job.ID,
		Progress: job.Progress,
		Terminal: &job,
	})
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicJobProgress, []byte(job.ID))
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}
