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

// PasswordResetService issues and redeems password reset tokens. A user
// carries at most one outstanding token; issuing overwrites, and redemption
// clears the token in the same update that stores the new hash, so a token
// can never be replayed.
type PasswordResetService struct {
	store     port.UserStore
	registry  port.SessionRegistry
	validator *security.PasswordValidator
	publisher port.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewPasswordResetService constructs the reset flow. The validator and
// publisher may be nil; a nil validator skips strength checks and a nil
// publisher skips event emission.
func NewPasswordResetService(
	store port.UserStore,
	registry port.SessionRegistry,
	validator *security.PasswordValidator,
	publisher port.EventPublisher,
	log *zap.Logger,
) *PasswordResetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordResetService{
		store:     store,
		registry:  registry,
		validator: validator,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock overrides the clock used for event timestamps (tests).
func (s *PasswordResetService) WithClock(clock func() time.Time) *PasswordResetService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// IssueResetToken mints a reset token for the user behind the email and
// persists it, replacing any outstanding token. ErrUserNotFound when the
// email is unknown.
func (s *PasswordResetService) IssueResetToken(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrUserNotFound
	}

	user, err := s.store.FindUserBy(ctx, map[string]any{"email": email})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	token, err := security.GenerateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.store.UpdateUser(ctx, user.ID, map[string]any{"reset_token": token}); err != nil {
		return "", fmt.Errorf("persist reset token: %w", err)
	}

	s.logger.Info("reset token issued",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
	)

	return token, nil
}

// UpdatePassword redeems a reset token: it re-hashes the new password, stores
// the hash, and clears the token in one update. ErrInvalidToken when the
// token belongs to no user, which includes already-redeemed tokens. Live
// sessions for the user are torn down so a stolen session does not survive a
// recovery.
func (s *PasswordResetService) UpdatePassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}

	user, err := s.store.FindUserBy(ctx, map[string]any{"reset_token": token})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("find token: %w", err)
	}

	if s.validator != nil {
		if err := s.validator.Validate(newPassword); err != nil {
			return err
		}
	}

	hashed, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.store.UpdateUser(ctx, user.ID, map[string]any{
		"hashed_password": hashed,
		"reset_token":     nil,
	})
	if err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	if s.registry != nil {
		if err := s.registry.DestroyForUser(ctx, user.ID); err != nil {
			s.logger.Warn("session teardown after reset failed",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
		}
	}

	s.publishPasswordChanged(ctx, user, "reset")

	return nil
}

func (s *PasswordResetService) publishPasswordChanged(ctx context.Context, user *domain.User, reason string) {
	if s.publisher == nil {
		return
	}

	event := domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    user.ID,
		ChangedAt: s.now().UTC(),
		Reason:    reason,
	}
	if err := s.publisher.PublishPasswordChanged(ctx, event); err != nil {
		s.logger.Warn("publish password changed event failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}
