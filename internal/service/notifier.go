package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Event types pushed to the notification surface.
const (
	EventAnnouncementCreated = "announcement.created"
	EventAnnouncementDeleted = "announcement.deleted"
	EventQuerySubmitted      = "query.submitted"
	EventQueryReplied        = "query.replied"
)

// Event is one success/failure notification pushed to the bell/toast surface.
type Event struct {
	Type       string    `json:"type"`
	ResourceID string    `json:"resource_id"`
	Actor      string    `json:"actor,omitempty"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NotificationSink receives events. The core does not own the rendering
// surface; publish failures are logged and never retried.
type NotificationSink interface {
	Publish(ctx context.Context, event Event)
}

type eventPublisher interface {
	Publish(ctx context.Context, channel string, value interface{}) error
}

// RedisNotificationSink forwards events to a Redis channel consumed by the
// notification bell service.
type RedisNotificationSink struct {
	publisher eventPublisher
	channel   string
	logger    *zap.Logger
}

// NewRedisNotificationSink constructs the sink.
func NewRedisNotificationSink(publisher eventPublisher, channel string, logger *zap.Logger) *RedisNotificationSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channel == "" {
		channel = "comm-center:events"
	}
	return &RedisNotificationSink{publisher: publisher, channel: channel, logger: logger}
}

// Publish sends the event, logging delivery failures.
func (s *RedisNotificationSink) Publish(ctx context.Context, event Event) {
	if s.publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.publisher.Publish(ctx, s.channel, event); err != nil {
		s.logger.Warn("failed to publish notification event",
			zap.String("type", event.Type),
			zap.String("resource_id", event.ResourceID),
			zap.Error(err))
	}
}

// NopNotificationSink drops every event. Used when events are disabled.
type NopNotificationSink struct{}

// Publish implements NotificationSink.
func (NopNotificationSink) Publish(context.Context, Event) {}
