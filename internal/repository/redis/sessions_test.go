package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func newTestRegistry(t *testing.T, duration time.Duration) (*SessionRegistry, *time.Time) {
	t.Helper()

	client, _ := newTestRedis(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	registry := NewSessionRegistry(client, "auth:session", duration).
		WithClock(func() time.Time { return now })

	return registry, &now
}

func TestSessionRegistry_CreateAndResolve(t *testing.T) {
	registry, _ := newTestRegistry(t, 0)
	ctx := context.Background()

	sessionID, err := registry.CreateSession(ctx, "user-123")
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected non-empty session id")
	}

	userID, err := registry.UserIDForSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("UserIDForSession returned error: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("expected user-123, got %s", userID)
	}
}

func TestSessionRegistry_CreateEmptyUser(t *testing.T) {
	registry, _ := newTestRegistry(t, 0)

	sessionID, err := registry.CreateSession(context.Background(), "   ")
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if sessionID != "" {
		t.Fatalf("expected empty session id, got %s", sessionID)
	}
}

func TestSessionRegistry_SingleSessionPerUser(t *testing.T) {
	registry, _ := newTestRegistry(t, 0)
	ctx := context.Background()

	first, err := registry.CreateSession(ctx, "user-123")
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	second, err := registry.CreateSession(ctx, "user-123")
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	if userID, _ := registry.UserIDForSession(ctx, first); userID != "" {
		t.Fatalf("expected replaced session to be gone, resolved to %s", userID)
	}
	if userID, _ := registry.UserIDForSession(ctx, second); userID != "user-123" {
		t.Fatalf("expected user-123, got %s", userID)
	}
}

func TestSessionRegistry_UnknownSession(t *testing.T) {
	registry, _ := newTestRegistry(t, 0)

	for _, sessionID := range []string{"", "   ", "missing"} {
		userID, err := registry.UserIDForSession(context.Background(), sessionID)
		if err != nil {
			t.Fatalf("UserIDForSession(%q) returned error: %v", sessionID, err)
		}
		if userID != "" {
			t.Fatalf("UserIDForSession(%q) = %s, want empty", sessionID, userID)
		}
	}
}

func TestSessionRegistry_LazyExpiry(t *testing.T) {
	registry, now := newTestRegistry(t, 5*time.Second)
	ctx := context.Background()

	sessionID, err := registry.CreateSession(ctx, "user-123")
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	*now = now.Add(4 * time.Second)
	if userID, _ := registry.UserIDForSession(ctx, sessionID); userID != "user-123" {
		t.Fatalf("expected live session before expiry, got %q", userID)
	}

	*now = now.Add(2 * time.Second)
	if userID, _ := registry.UserIDForSession(ctx, sessionID); userID != "" {
		t.Fatalf("expected expired session, resolved to %q", userID)
	}

	// The lookup judges without deleting; the hash is still there.
	fields, err := registry.client.HGetAll(ctx, registry.sessionKey(sessionID)).Result()
	if err != nil {
		t.Fatalf("HGetAll returned error: %v", err)
	}
	if len(fields) == 0 {
		t.Fatal("expected expired session hash to remain")
	}
}

func TestSessionRegistry_DestroySession(t *testing.T) {
	registry, _ := newTestRegistry(t, 0)
	ctx := context.Background()

	sessionID, err := registry.CreateSession(ctx, "user-123")
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	destroyed, err := registry.DestroySession(ctx, sessionID)
	if err != nil {
		t.Fatalf("DestroySession returned error: %v", err)
	}
	if !destroyed {
		t.Fatal("expected first destroy to report true")
	}

	destroyed, err = registry.DestroySession(ctx, sessionID)
	if err != nil {
		t.Fatalf("DestroySession returned error: %v", err)
	}
	if destroyed {
		t.Fatal("expected repeated destroy to report false")
	}

	if userID, _ := registry.UserIDForSession(ctx, sessionID); userID != "" {
		t.Fatalf("destroyed session resolved to %q", userID)
	}
}

func TestSessionRegistry_DestroyForUser(t *testing.T) {
	registry, _ := newTestRegistry(t, 0)
	ctx := context.Background()

	sessionID, err := registry.CreateSession(ctx, "user-123")
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}

	if err := registry.DestroyForUser(ctx, "user-123"); err != nil {
		t.Fatalf("DestroyForUser returned error: %v", err)
	}
	if userID, _ := registry.UserIDForSession(ctx, sessionID); userID != "" {
		t.Fatalf("session resolved to %q after DestroyForUser", userID)
	}

	// A user without a session is a no-op.
	if err := registry.DestroyForUser(ctx, "user-123"); err != nil {
		t.Fatalf("DestroyForUser returned error: %v", err)
	}
}
