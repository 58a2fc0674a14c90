package kafka

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

type fakeWriter struct {
	written []kafkago.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w WriterInterface) *Producer {
	return &Producer{
		writer: w,
		config: ProducerConfig{MaxMessageBytes: 1024 * 1024},
		logger: logging.NewNopLogger(),
	}
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &common.ProducerMessage{
		Topic:   TopicDeadlineEvents,
		Key:     []byte("case-1"),
		Value:   []byte(`{"k":"v"}`),
		Headers: map[string]string{"event_type": "deadline.created"},
	})
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	assert.Equal(t, []byte("case-1"), w.written[0].Key)
	assert.Equal(t, int64(1), p.Sent())
}

func TestProducer_Publish_Validation(t *testing.T) {
	p := newTestProducer(&fakeWriter{})

	err := p.Publish(context.Background(), &common.ProducerMessage{Value: []byte("x")})
	assert.Error(t, err, "topic required")

	err = p.Publish(context.Background(), &common.ProducerMessage{Topic: "t"})
	assert.Error(t, err, "value required")
}

func TestProducer_Publish_TooLarge(t *testing.T) {
	p := &Producer{
		writer: &fakeWriter{},
		config: ProducerConfig{MaxMessageBytes: 8},
		logger: logging.NewNopLogger(),
	}

	err := p.Publish(context.Background(), &common.ProducerMessage{
		Topic: "t", Value: []byte("definitely more than eight bytes"),
	})
	assert.Error(t, err)
}

func TestProducer_Publish_WriterFailureCounted(t *testing.T) {
	p := newTestProducer(&fakeWriter{err: assert.AnError})

	err := p.Publish(context.Background(), &common.ProducerMessage{Topic: "t", Value: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, int64(1), p.Failed())
}

func TestProducer_ClosedRejectsPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.NoError(t, p.Close(), "double close is a no-op")

	err := p.Publish(context.Background(), &common.ProducerMessage{Topic: "t", Value: []byte("x")})
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(ProducerConfig{}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestDeadlineEventPublisher_KeysByCase(t *testing.T) {
	w := &fakeWriter{}
	pub := NewDeadlineEventPublisher(newTestProducer(w))

	err := pub.PublishDeadlineEvent(context.Background(), "deadline.created", dockettypes.Deadline{
		ID:     "dl-1",
		CaseID: "case-9",
	})
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	assert.Equal(t, []byte("case-9"), w.written[0].Key)
	assert.Equal(t, TopicDeadlineEvents, w.written[0].Topic)
}

func TestJobEventPublisher_FinishedRequiresTerminal(t *testing.T) {
	w := &fakeWriter{}
	pub := NewJobEventPublisher(newTestProducer(w), "worker-1")

	err := pub.PublishJobFinished(context.Background(), dockettypes.Job{
		ID: "job-1", Status: dockettypes.JobRunning,
	})
	assert.Error(t, err)
	assert.Empty(t, w.written)

	err = pub.PublishJobFinished(context.Background(), dockettypes.Job{
		ID: "job-1", Status: dockettypes.JobCompleted, Progress: 100,
	})
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	assert.Equal(t, TopicJobProgress, w.written[0].Topic)
}

func TestJobEventPublisher_SubmittedOnSubmitTopic(t *testing.T) {
	w := &fakeWriter{}
	pub := NewJobEventPublisher(newTestProducer(w), "")

	err := pub.PublishJobSubmitted(context.Background(), dockettypes.Job{
		ID: "job-2", CaseID: "case-3", Status: dockettypes.JobRunning,
	})
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	assert.Equal(t, TopicJobSubmitted, w.written[0].Topic)
	assert.Equal(t, []byte("case-3"), w.written[0].Key)
}
