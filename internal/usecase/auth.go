package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/user-auth-service/internal/core/domain"
	"github.com/arklim/user-auth-service/internal/core/port"
	"github.com/arklim/user-auth-service/internal/infra/logger"
	"github.com/arklim/user-auth-service/internal/infra/security"
	"github.com/arklim/user-auth-service/internal/repository"
)

// AuthService is the facade the transport layer talks to. It composes the
// credential store, the session registry, and the reset flow into the
// registration, login, and logout operations, and emits lifecycle events.
type AuthService struct {
	store     port.UserStore
	registry  port.SessionRegistry
	reset     *PasswordResetService
	validator *security.PasswordValidator
	publisher port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService wires the facade. The validator and publisher may be nil.
func NewAuthService(
	store port.UserStore,
	registry port.SessionRegistry,
	reset *PasswordResetService,
	validator *security.PasswordValidator,
	publisher port.EventPublisher,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		store:     store,
		registry:  registry,
		reset:     reset,
		validator: validator,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock overrides the clock used for event timestamps (tests).
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Register creates a user with a freshly salted hash of the password.
// ErrAlreadyExists when the email is taken. The returned record includes the
// stored hash; sanitizing for external payloads is the transport's job.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("email must not be empty")
	}

	if s.validator != nil {
		if err := s.validator.Validate(password); err != nil {
			return nil, err
		}
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.AddUser(ctx, email, hashed)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("add user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)
	s.publishUserRegistered(ctx, user)

	return user, nil
}

// ValidateLogin reports whether the email/password pair matches a stored
// credential. Unknown emails, wrong passwords, and malformed stored hashes
// all come back false; errors are reserved for store failures.
func (s *AuthService) ValidateLogin(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}

	user, err := s.store.FindUserBy(ctx, map[string]any{"email": email})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find user: %w", err)
	}

	return security.VerifyPassword(password, user.HashedPassword), nil
}

// CreateSessionFor issues a session for the user behind the email. An
// unknown email yields ("", nil); credential checks belong to ValidateLogin.
func (s *AuthService) CreateSessionFor(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil
	}

	user, err := s.store.FindUserBy(ctx, map[string]any{"email": email})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	return s.registry.CreateSession(ctx, user.ID)
}

// ResolveSession returns the user owning a live session, or nil for unknown
// and expired identifiers.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (*domain.User, error) {
	userID, err := s.registry.UserIDForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, nil
	}

	user, err := s.store.FindUserBy(ctx, map[string]any{"id": userID})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return user, nil
}

// Logout tears down the user's session. A user without a session is a no-op;
// an actual teardown emits a session-destroyed event.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}

	if err := s.registry.DestroyForUser(ctx, userID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}

	s.publishSessionDestroyed(ctx, userID, "logout")

	return nil
}

// IssueResetToken delegates to the reset flow.
func (s *AuthService) IssueResetToken(ctx context.Context, email string) (string, error) {
	return s.reset.IssueResetToken(ctx, email)
}

// UpdatePassword delegates to the reset flow.
func (s *AuthService) UpdatePassword(ctx context.Context, token, newPassword string) error {
	return s.reset.UpdatePassword(ctx, token, newPassword)
}

func (s *AuthService) publishUserRegistered(ctx context.Context, user *domain.User) {
	if s.publisher == nil {
		return
	}

	event := domain.UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Email:        user.Email,
		RegisteredAt: user.RegisteredAt,
	}
	if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Warn("publish user registered event failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}

func (s *AuthService) publishSessionDestroyed(ctx context.Context, userID, reason string) {
	if s.publisher == nil {
		return
	}

	event := domain.SessionDestroyedEvent{
		EventID:     uuid.NewString(),
		UserID:      userID,
		DestroyedAt: s.now().UTC(),
		Reason:      reason,
	}
	if err := s.publisher.PublishSessionDestroyed(ctx, event); err != nil {
		s.logger.Warn("publish session destroyed event failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
