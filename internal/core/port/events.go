package port

import (
	"context"

	"github.com/arklim/user-auth-service/internal/core/domain"
)

// EventPublisher broadcasts authentication lifecycle events to downstream
// consumers (notification delivery, analytics). Publishing failures are
// logged by callers, never surfaced to the authentication flows.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishSessionDestroyed(ctx context.Context, event domain.SessionDestroyedEvent) error
}
