// Package docket implements the application services for the deadline
// calendar: grid construction, filter/sort pipelines, the upcoming-window
// feed, and deadline lifecycle commands.
package docket

import (
	"context"
	"time"

	"github.com/turtacn/LitiDocket/pkg/types/common"
	dockettypes "github.com/turtacn/LitiDocket/pkg/types/docket"
)

// Logger abstracts structured logging.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// CachePort abstracts cache get/set for derived calendar views.
// Shared by CalendarService and DeadlineService.
type CachePort interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// EventPublisher abstracts the message broker used to announce deadline
// mutations to downstream consumers.
type EventPublisher interface {
	PublishDeadlineEvent(ctx context.Context, eventType string, deadline dockettypes.Deadline) error
}

// ConflictRouter receives the deadlines touched by a mutation so the
// conflict-check pipeline can run asynchronously.
type ConflictRouter interface {
	RouteCheck(ctx context.Context, caseID common.CaseID) error
}

// Clock supplies the ambient "now"; tests inject a fixed instant.
type Clock func() time.Time
