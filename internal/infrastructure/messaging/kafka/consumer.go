package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/pkg/errors"
	"github.com/turtacn/LitiDocket/pkg/types/common"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
	ErrConsumerClosed = errors.New(errors.ErrCodeInternal, "consumer closed")
)

// EnvelopeHandler processes one decoded event.  A returned error leaves the
// message uncommitted on transient codes and dead-letters it otherwise.
type EnvelopeHandler func(ctx context.Context, env *EventEnvelope) error

// ConsumerConfig tunes the Kafka reader.
type ConsumerConfig struct {
	Brokers         []string
	GroupID         string
	Topics          []string
	AutoOffsetReset string // "earliest" | "latest"
	MaxRetries      int
	RetryBackoff    time.Duration
	DeadLetterTopic string
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs a fetch-handle-commit loop over the configured topics.
type Consumer struct {
	reader ReaderInterface
	config ConsumerConfig
	logger logging.Logger

	mu       sync.RWMutex
	handlers map[string]EnvelopeHandler

	running    atomic.Bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	deadLetter *Producer
}

// NewConsumer builds a consumer group reader.  deadLetter may be nil, in
// which case poisoned messages are committed and dropped with a log line.
func NewConsumer(cfg ConsumerConfig, deadLetter *Producer, logger logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	if cfg.GroupID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "group id required")
	}
	if len(cfg.Topics) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "topics required")
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}

	startOffset := kafka.FirstOffset
	if cfg.AutoOffsetReset == "latest" {
		startOffset = kafka.LastOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		StartOffset: startOffset,
		MinBytes:    1,
		MaxBytes:    10 * 1024 * 1024,
	})

	return &Consumer{
		reader:     reader,
		config:     cfg,
		logger:     logger,
		handlers:   map[string]EnvelopeHandler{},
		deadLetter: deadLetter,
	}, nil
}

// Handle registers the handler for one event type.
func (c *Consumer) Handle(eventType string, handler EnvelopeHandler) {
	c.mu.Lock()
	c.handlers[eventType] = handler
	c.mu.Unlock()
}

// Start launches the consume loop.  It returns immediately; Stop drains it.
func (c *Consumer) Start(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.loop(runCtx)
	}()
	c.logger.Info("kafka consumer started",
		logging.String("group", c.config.GroupID),
		logging.Any("topics", c.config.Topics))
	return nil
}

func (c *Consumer) loop(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", logging.Err(err))
			time.Sleep(c.config.RetryBackoff)
			continue
		}
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg kafka.Message) {
	env, err := ParseEnvelope(msg.Value)
	if err != nil {
		c.logger.Warn("undecodable message dead-lettered",
			logging.String("topic", msg.Topic), logging.Err(err))
		c.sendToDeadLetter(ctx, msg)
		c.commit(ctx, msg)
		return
	}

	c.mu.RLock()
	handler, ok := c.handlers[env.EventType]
	c.mu.RUnlock()
	if !ok {
		// Unknown event types are skipped, not errors: newer producers may
		// emit types this consumer does not care about.
		c.commit(ctx, msg)
		return
	}

	var handleErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.config.RetryBackoff * time.Duration(attempt)):
			}
		}
		if handleErr = handler(ctx, env); handleErr == nil {
			break
		}
	}
	if handleErr != nil {
		c.logger.Error("handler exhausted retries, dead-lettering",
			logging.String("event_type", env.EventType),
			logging.String("event_id", env.EventID),
			logging.Err(handleErr))
		c.sendToDeadLetter(ctx, msg)
	}
	c.commit(ctx, msg)
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, msg kafka.Message) {
	if c.deadLetter == nil || c.config.DeadLetterTopic == "" {
		return
	}
	err := c.deadLetter.Publish(ctx, &common.ProducerMessage{
		Topic: c.config.DeadLetterTopic,
		Key:   msg.Key,
		Value: msg.Value,
		Headers: map[string]string{
			"origin_topic": msg.Topic,
		},
	})
	if err != nil {
		c.logger.Error("dead-letter publish failed",
			logging.String("origin_topic", msg.Topic), logging.Err(err))
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
		c.logger.Error("commit failed", logging.Err(err))
	}
}

// Stop cancels the loop and closes the reader.
func (c *Consumer) Stop() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.cancel()
	c.wg.Wait()
	err := c.reader.Close()
	c.logger.Info("kafka consumer stopped")
	return err
}
