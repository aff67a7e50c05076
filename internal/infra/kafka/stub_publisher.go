package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/user-auth-service/internal/core/domain"
	"github.com/arklim/user-auth-service/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no
// brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserRegistered logs user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"user_id":       event.UserID,
		"email":         event.Email,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("user.registered", event.UserID, event.RegisteredAt, payload)
	return nil
}

// PublishPasswordChanged logs user.password_changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"changed_at": event.ChangedAt,
		"reason":     event.Reason,
		"metadata":   event.Metadata,
	}
	p.logEvent("user.password_changed", event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishSessionDestroyed logs session.destroyed events.
func (p *StubPublisher) PublishSessionDestroyed(_ context.Context, event domain.SessionDestroyedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"destroyed_at": event.DestroyedAt,
		"reason":       event.Reason,
		"metadata":     event.Metadata,
	}
	p.logEvent("session.destroyed", event.UserID, event.DestroyedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
