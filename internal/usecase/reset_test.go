package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/user-auth-service/internal/core/domain"
	"github.com/arklim/user-auth-service/internal/infra/security"
	"github.com/arklim/user-auth-service/internal/repository/memory"
)

type capturePublisher struct {
	registered []domain.UserRegisteredEvent
	changed    []domain.PasswordChangedEvent
	destroyed  []domain.SessionDestroyedEvent
	err        error
}

func (p *capturePublisher) PublishUserRegistered(_ context.Context, e domain.UserRegisteredEvent) error {
	p.registered = append(p.registered, e)
	return p.err
}

func (p *capturePublisher) PublishPasswordChanged(_ context.Context, e domain.PasswordChangedEvent) error {
	p.changed = append(p.changed, e)
	return p.err
}

func (p *capturePublisher) PublishSessionDestroyed(_ context.Context, e domain.SessionDestroyedEvent) error {
	p.destroyed = append(p.destroyed, e)
	return p.err
}

func TestIssueResetToken(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	svc := NewPasswordResetService(store, nil, nil, nil, zaptest.NewLogger(t))

	user, err := store.AddUser(ctx, "bob@bob.com", "hashed")
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	token, err := svc.IssueResetToken(ctx, "bob@bob.com")
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	stored, err := store.FindUserBy(ctx, map[string]any{"id": user.ID})
	if err != nil {
		t.Fatalf("FindUserBy: %v", err)
	}
	if stored.ResetToken == nil || *stored.ResetToken != token {
		t.Fatal("token not persisted on user row")
	}

	// Re-issuing replaces the outstanding token; only the latest redeems.
	second, err := svc.IssueResetToken(ctx, "bob@bob.com")
	if err != nil {
		t.Fatalf("IssueResetToken (repeat): %v", err)
	}
	if second == token {
		t.Fatal("expected a fresh token on re-issue")
	}
	if err := svc.UpdatePassword(ctx, token, "NewPass123"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("stale token: got %v, want ErrInvalidToken", err)
	}
}

func TestIssueResetTokenUnknownEmail(t *testing.T) {
	svc := NewPasswordResetService(memory.NewUserStore(), nil, nil, nil, zaptest.NewLogger(t))

	for _, email := range []string{"", "   ", "ghost@bob.com"} {
		if _, err := svc.IssueResetToken(context.Background(), email); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("IssueResetToken(%q): got %v, want ErrUserNotFound", email, err)
		}
	}
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := memory.NewUserStore().WithClock(clock)
	registry := NewSessionService(store, 0, zaptest.NewLogger(t)).WithClock(clock)
	publisher := &capturePublisher{}
	svc := NewPasswordResetService(store, registry, nil, publisher, zaptest.NewLogger(t)).WithClock(clock)

	oldHash, err := security.HashPassword("OldPass123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user, err := store.AddUser(ctx, "bob@bob.com", oldHash)
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	sessionID, err := registry.CreateSession(ctx, user.ID)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	token, err := svc.IssueResetToken(ctx, "bob@bob.com")
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}

	if err := svc.UpdatePassword(ctx, token, "NewPass456"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	stored, err := store.FindUserBy(ctx, map[string]any{"id": user.ID})
	if err != nil {
		t.Fatalf("FindUserBy: %v", err)
	}
	if !security.VerifyPassword("NewPass456", stored.HashedPassword) {
		t.Fatal("new password does not verify")
	}
	if security.VerifyPassword("OldPass123", stored.HashedPassword) {
		t.Fatal("old password still verifies")
	}
	if stored.ResetToken != nil {
		t.Fatal("token should be cleared on redemption")
	}

	// The live session is torn down with the credential change.
	if got, _ := registry.UserIDForSession(ctx, sessionID); got != "" {
		t.Fatalf("session survived password reset: %q", got)
	}

	if len(publisher.changed) != 1 {
		t.Fatalf("published %d password-changed events, want 1", len(publisher.changed))
	}
	event := publisher.changed[0]
	if event.UserID != user.ID || event.Reason != "reset" || event.EventID == "" {
		t.Fatalf("unexpected event %+v", event)
	}
	if !event.ChangedAt.Equal(now) {
		t.Fatalf("event timestamp = %v, want %v", event.ChangedAt, now)
	}

	// One-shot: the redeemed token is gone.
	if err := svc.UpdatePassword(ctx, token, "AnotherPass789"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("redeemed token: got %v, want ErrInvalidToken", err)
	}
}

func TestUpdatePasswordInvalidToken(t *testing.T) {
	svc := NewPasswordResetService(memory.NewUserStore(), nil, nil, nil, zaptest.NewLogger(t))

	for _, token := range []string{"", "   ", "bogus"} {
		if err := svc.UpdatePassword(context.Background(), token, "NewPass123"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("UpdatePassword(%q): got %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestUpdatePasswordValidatorRejects(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	validator := security.NewPasswordValidator(security.MinLengthRule(8))
	svc := NewPasswordResetService(store, nil, validator, nil, zaptest.NewLogger(t))

	if _, err := store.AddUser(ctx, "bob@bob.com", "hashed"); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	token, err := svc.IssueResetToken(ctx, "bob@bob.com")
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}

	err = svc.UpdatePassword(ctx, token, "short")
	var validationErr *security.PasswordValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("got %v, want PasswordValidationError", err)
	}

	// A rejected password leaves the token outstanding for a retry.
	if err := svc.UpdatePassword(ctx, token, "LongEnough9"); err != nil {
		t.Fatalf("UpdatePassword retry: %v", err)
	}
}
