package memory

import (
	"context"
	"sync"
	"time"

	uuid "github.com/google/uuid"

	"github.com/arklim/user-auth-service/internal/core/domain"
	"github.com/arklim/user-auth-service/internal/core/port"
	"github.com/arklim/user-auth-service/internal/repository"
)

var queryColumns = map[string]struct{}{
	"id":                 {},
	"email":              {},
	"hashed_password":    {},
	"session_id":         {},
	"session_created_at": {},
	"reset_token":        {},
	"registered_at":      {},
}

var writableColumns = map[string]struct{}{
	"email":              {},
	"hashed_password":    {},
	"session_id":         {},
	"session_created_at": {},
	"reset_token":        {},
}

// UserStore implements port.UserStore with a process-lifetime map. It backs
// the ephemeral deployment variant and the unit tests; the PostgreSQL store
// is the persisted one.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
	now   func() time.Time
}

// NewUserStore constructs an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]domain.User),
		now:   time.Now,
	}
}

// WithClock overrides the clock used for registration timestamps (tests).
func (s *UserStore) WithClock(clock func() time.Time) *UserStore {
	if clock != nil {
		s.now = clock
	}
	return s
}

// FindUserBy returns the first user matching every filter entry.
func (s *UserStore) FindUserBy(_ context.Context, filter map[string]any) (*domain.User, error) {
	if err := validateColumns(filter, queryColumns, repository.ErrInvalidQuery); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if matches(user, filter) {
			found := user
			return &found, nil
		}
	}

	return nil, repository.ErrNotFound
}

// FindUsersBy returns every user matching the filter. No match yields an
// empty slice, not an error.
func (s *UserStore) FindUsersBy(_ context.Context, filter map[string]any) ([]domain.User, error) {
	if err := validateColumns(filter, queryColumns, repository.ErrInvalidQuery); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.User, 0)
	for _, user := range s.users {
		if matches(user, filter) {
			result = append(result, user)
		}
	}

	return result, nil
}

// AddUser inserts a new record, enforcing email uniqueness.
func (s *UserStore) AddUser(_ context.Context, email, hashedPassword string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == email {
			return nil, repository.ErrAlreadyExists
		}
	}

	user := domain.User{
		ID:             uuid.NewString(),
		Email:          email,
		HashedPassword: hashedPassword,
		RegisteredAt:   s.now().UTC(),
	}
	s.users[user.ID] = user

	return &user, nil
}

// UpdateUser applies the field map to the identified row.
func (s *UserStore) UpdateUser(_ context.Context, userID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := validateColumns(fields, writableColumns, repository.ErrUnknownField); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}

	for column, value := range fields {
		switch column {
		case "email":
			if v, ok := value.(string); ok {
				user.Email = v
			}
		case "hashed_password":
			if v, ok := value.(string); ok {
				user.HashedPassword = v
			}
		case "session_id":
			user.SessionID = stringOrNil(value)
		case "session_created_at":
			user.SessionCreatedAt = timeOrNil(value)
		case "reset_token":
			user.ResetToken = stringOrNil(value)
		}
	}

	s.users[userID] = user
	return nil
}

func validateColumns(filter map[string]any, allowed map[string]struct{}, sentinel error) error {
	if len(filter) == 0 {
		return sentinel
	}
	for column := range filter {
		if _, ok := allowed[column]; !ok {
			return sentinel
		}
	}
	return nil
}

func matches(user domain.User, filter map[string]any) bool {
	for column, want := range filter {
		if !columnMatches(user, column, want) {
			return false
		}
	}
	return true
}

func columnMatches(user domain.User, column string, want any) bool {
	switch column {
	case "id":
		return want == user.ID
	case "email":
		return want == user.Email
	case "hashed_password":
		return want == user.HashedPassword
	case "session_id":
		return optionalStringMatches(user.SessionID, want)
	case "reset_token":
		return optionalStringMatches(user.ResetToken, want)
	case "session_created_at":
		if want == nil {
			return user.SessionCreatedAt == nil
		}
		at, ok := want.(time.Time)
		return ok && user.SessionCreatedAt != nil && user.SessionCreatedAt.Equal(at)
	case "registered_at":
		at, ok := want.(time.Time)
		return ok && user.RegisteredAt.Equal(at)
	}
	return false
}

func optionalStringMatches(current *string, want any) bool {
	if want == nil {
		return current == nil
	}
	value, ok := want.(string)
	return ok && current != nil && *current == value
}

func stringOrNil(value any) *string {
	if value == nil {
		return nil
	}
	if v, ok := value.(string); ok {
		return &v
	}
	return nil
}

func timeOrNil(value any) *time.Time {
	if value == nil {
		return nil
	}
	if v, ok := value.(time.Time); ok {
		return &v
	}
	return nil
}

var _ port.UserStore = (*UserStore)(nil)
