package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/user-auth-service/internal/repository"
)

func TestUserStoreAddAndFind(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	user, err := store.AddUser(ctx, "bob@dylan.com", "hashed")
	if err != nil {
		t.Fatalf("AddUser returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected a generated user id")
	}

	found, err := store.FindUserBy(ctx, map[string]any{"email": "bob@dylan.com"})
	if err != nil {
		t.Fatalf("FindUserBy returned error: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, found.ID)
	}
}

func TestUserStoreDuplicateEmail(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	if _, err := store.AddUser(ctx, "bob@dylan.com", "hashed"); err != nil {
		t.Fatalf("AddUser returned error: %v", err)
	}

	_, err := store.AddUser(ctx, "bob@dylan.com", "other-hash")
	if !errors.Is(err, repository.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUserStoreFindUnknownColumn(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	if _, err := store.FindUserBy(ctx, map[string]any{"no_such_column": "x"}); !errors.Is(err, repository.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if _, err := store.FindUserBy(ctx, map[string]any{}); !errors.Is(err, repository.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery for empty filter, got %v", err)
	}
}

func TestUserStoreFindMiss(t *testing.T) {
	store := NewUserStore()

	_, err := store.FindUserBy(context.Background(), map[string]any{"email": "nobody@example.com"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserStoreUpdateSessionFields(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	user, err := store.AddUser(ctx, "bob@dylan.com", "hashed")
	if err != nil {
		t.Fatalf("AddUser returned error: %v", err)
	}

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err = store.UpdateUser(ctx, user.ID, map[string]any{
		"session_id":         "session-1",
		"session_created_at": createdAt,
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}

	found, err := store.FindUserBy(ctx, map[string]any{"session_id": "session-1"})
	if err != nil {
		t.Fatalf("FindUserBy returned error: %v", err)
	}
	if found.SessionCreatedAt == nil || !found.SessionCreatedAt.Equal(createdAt) {
		t.Fatalf("expected session_created_at %v, got %v", createdAt, found.SessionCreatedAt)
	}

	// Clearing with nil mirrors SQL NULL semantics.
	err = store.UpdateUser(ctx, user.ID, map[string]any{
		"session_id":         nil,
		"session_created_at": nil,
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}

	if _, err := store.FindUserBy(ctx, map[string]any{"session_id": "session-1"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected cleared session to be unfindable, got %v", err)
	}
}

func TestUserStoreUpdateUnknownField(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	user, err := store.AddUser(ctx, "bob@dylan.com", "hashed")
	if err != nil {
		t.Fatalf("AddUser returned error: %v", err)
	}

	err = store.UpdateUser(ctx, user.ID, map[string]any{"favorite_color": "blue"})
	if !errors.Is(err, repository.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestUserStoreUpdateMissingUser(t *testing.T) {
	store := NewUserStore()

	err := store.UpdateUser(context.Background(), "no-such-id", map[string]any{"reset_token": "t"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserStoreFindUsersByEmail(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	if _, err := store.AddUser(ctx, "bob@dylan.com", "hash-1"); err != nil {
		t.Fatalf("AddUser returned error: %v", err)
	}

	users, err := store.FindUsersBy(ctx, map[string]any{"email": "bob@dylan.com"})
	if err != nil {
		t.Fatalf("FindUsersBy returned error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}

	none, err := store.FindUsersBy(ctx, map[string]any{"email": "nobody@example.com"})
	if err != nil {
		t.Fatalf("FindUsersBy returned error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no users, got %d", len(none))
	}
}
