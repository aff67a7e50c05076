package port

import (
	"context"

	"github.com/arklim/user-auth-service/internal/core/domain"
)

// UserStore exposes persistence behavior for user credential records.
// Lookups take a column/value filter; implementations must reject filters
// naming unknown columns with repository.ErrInvalidQuery and report misses
// with repository.ErrNotFound.
type UserStore interface {
	// FindUserBy returns the first user matching every filter entry.
	FindUserBy(ctx context.Context, filter map[string]any) (*domain.User, error)
	// FindUsersBy returns all users matching the filter. A federated store
	// may hold several candidates for the same email.
	FindUsersBy(ctx context.Context, filter map[string]any) ([]domain.User, error)
	// AddUser inserts a new record and returns it with its assigned id.
	// Fails with repository.ErrAlreadyExists on an email conflict.
	AddUser(ctx context.Context, email, hashedPassword string) (*domain.User, error)
	// UpdateUser applies the field map to the identified row. A nil value
	// clears the column. Unknown fields fail with repository.ErrUnknownField.
	UpdateUser(ctx context.Context, userID string, fields map[string]any) error
}
