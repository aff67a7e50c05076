package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/user-auth-service/internal/core/domain"
	"github.com/arklim/user-auth-service/internal/core/port"
	"github.com/arklim/user-auth-service/internal/infra/security"
	"github.com/arklim/user-auth-service/internal/repository"
)

const sessionLockStripes = 64

// SessionService is the store-backed port.SessionRegistry: the session id and
// creation instant live on the user row itself, so session state shares the
// durability and transactional story of the credential record. Mutations for
// the same user are serialized through striped locks; expiry is judged lazily
// on lookup and never triggers a delete.
type SessionService struct {
	store    port.UserStore
	duration time.Duration
	logger   *zap.Logger
	now      func() time.Time
	locks    [sessionLockStripes]sync.Mutex
}

// NewSessionService constructs a session registry persisting into the user
// store. A non-positive duration disables expiry.
func NewSessionService(store port.UserStore, duration time.Duration, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		store:    store,
		duration: duration,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the clock used for session timestamps and expiry
// judgments (tests).
func (s *SessionService) WithClock(clock func() time.Time) *SessionService {
	if clock != nil {
		s.now = clock
	}
	return s
}

func (s *SessionService) lockFor(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &s.locks[h.Sum32()%sessionLockStripes]
}

// CreateSession issues a fresh session for the user and overwrites any prior
// one. An empty or unknown user id yields ("", nil).
func (s *SessionService) CreateSession(ctx context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", nil
	}

	mu := s.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	user, err := s.store.FindUserBy(ctx, map[string]any{"id": userID})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	sessionID, err := security.GenerateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	createdAt := s.now().UTC()
	err = s.store.UpdateUser(ctx, user.ID, map[string]any{
		"session_id":         sessionID,
		"session_created_at": createdAt,
	})
	if err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}

	s.logger.Debug("session created", zap.String("user_id", user.ID))

	return sessionID, nil
}

// UserIDForSession resolves a session identifier to its owning user id.
// Unknown and expired identifiers yield ("", nil). Expired rows are left in
// place; the next CreateSession overwrites them.
func (s *SessionService) UserIDForSession(ctx context.Context, sessionID string) (string, error) {
	user, err := s.liveSessionOwner(ctx, sessionID)
	if err != nil || user == nil {
		return "", err
	}
	return user.ID, nil
}

// DestroySession clears the session columns for the owning user. It reports
// false when the identifier does not resolve, so a repeated destroy of the
// same identifier is false rather than an error.
func (s *SessionService) DestroySession(ctx context.Context, sessionID string) (bool, error) {
	user, err := s.liveSessionOwner(ctx, sessionID)
	if err != nil || user == nil {
		return false, err
	}

	mu := s.lockFor(user.ID)
	mu.Lock()
	defer mu.Unlock()

	err = s.store.UpdateUser(ctx, user.ID, map[string]any{
		"session_id":         nil,
		"session_created_at": nil,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("clear session: %w", err)
	}

	s.logger.Debug("session destroyed", zap.String("user_id", user.ID))

	return true, nil
}

// DestroyForUser clears the user's session columns regardless of session
// state. A user without a session, or no such user at all, is a no-op.
func (s *SessionService) DestroyForUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}

	mu := s.lockFor(userID)
	mu.Lock()
	defer mu.Unlock()

	err := s.store.UpdateUser(ctx, userID, map[string]any{
		"session_id":         nil,
		"session_created_at": nil,
	})
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}

	return nil
}

// liveSessionOwner looks up the user carrying the session id and applies the
// expiry judgment. It returns (nil, nil) for unknown or expired sessions.
func (s *SessionService) liveSessionOwner(ctx context.Context, sessionID string) (*domain.User, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}

	user, err := s.store.FindUserBy(ctx, map[string]any{"session_id": sessionID})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	if user.SessionCreatedAt != nil {
		session := domain.Session{
			ID:        sessionID,
			UserID:    user.ID,
			CreatedAt: *user.SessionCreatedAt,
		}
		if session.Expired(s.now().UTC(), s.duration) {
			return nil, nil
		}
	}

	return user, nil
}

var _ port.SessionRegistry = (*SessionService)(nil)
