package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arklim/user-auth-service/internal/core/port"
	"github.com/arklim/user-auth-service/internal/infra/security"
)

const (
	fieldUserID    = "user_id"
	fieldCreatedAt = "created_at"
)

// SessionRegistry implements port.SessionRegistry on Redis hashes. Each
// session is a hash keyed by its opaque identifier; a per-user index key
// enforces the single-active-session rule. Expiry stays a lazy read-time
// judgment against the stored creation instant rather than a Redis TTL, so
// lookups never delete and the registry remains the expiry authority.
type SessionRegistry struct {
	client   *redis.Client
	prefix   string
	duration time.Duration
	now      func() time.Time
}

// NewSessionRegistry constructs a Redis-backed session registry. A
// non-positive duration disables expiry.
func NewSessionRegistry(client *redis.Client, prefix string, duration time.Duration) *SessionRegistry {
	if prefix == "" {
		prefix = "auth:session"
	}
	return &SessionRegistry{
		client:   client,
		prefix:   prefix,
		duration: duration,
		now:      time.Now,
	}
}

// WithClock overrides the clock used for expiry judgments (tests).
func (r *SessionRegistry) WithClock(clock func() time.Time) *SessionRegistry {
	if clock != nil {
		r.now = clock
	}
	return r
}

func (r *SessionRegistry) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

func (r *SessionRegistry) userKey(userID string) string {
	return fmt.Sprintf("%s:user:%s", r.prefix, userID)
}

// CreateSession records a fresh session for the user, replacing any prior one.
func (r *SessionRegistry) CreateSession(ctx context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", nil
	}

	sessionID, err := security.GenerateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	// Drop the previous session before indexing the new one so a crash in
	// between leaves at most zero live sessions, never two.
	previous, err := r.client.Get(ctx, r.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("lookup prior session: %w", err)
	}
	if previous != "" {
		if err := r.client.Del(ctx, r.sessionKey(previous)).Err(); err != nil {
			return "", fmt.Errorf("drop prior session: %w", err)
		}
	}

	fields := map[string]any{
		fieldUserID:    userID,
		fieldCreatedAt: r.now().UTC().Format(time.RFC3339Nano),
	}
	if err := r.client.HSet(ctx, r.sessionKey(sessionID), fields).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := r.client.Set(ctx, r.userKey(userID), sessionID, 0).Err(); err != nil {
		return "", fmt.Errorf("index session: %w", err)
	}

	return sessionID, nil
}

// UserIDForSession resolves a session identifier to its user id. Unknown,
// malformed, and expired identifiers yield ("", nil).
func (r *SessionRegistry) UserIDForSession(ctx context.Context, sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", nil
	}

	fields, err := r.client.HGetAll(ctx, r.sessionKey(sessionID)).Result()
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if len(fields) == 0 {
		return "", nil
	}

	userID := fields[fieldUserID]
	if userID == "" {
		return "", nil
	}

	if r.duration > 0 {
		createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
		if err != nil {
			return "", nil
		}
		if !r.now().UTC().Before(createdAt.Add(r.duration)) {
			return "", nil
		}
	}

	return userID, nil
}

// DestroySession removes the session when it resolves to a live user.
func (r *SessionRegistry) DestroySession(ctx context.Context, sessionID string) (bool, error) {
	userID, err := r.UserIDForSession(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if userID == "" {
		return false, nil
	}

	if err := r.client.Del(ctx, r.sessionKey(sessionID), r.userKey(userID)).Err(); err != nil {
		return false, fmt.Errorf("destroy session: %w", err)
	}

	return true, nil
}

// DestroyForUser clears the user's session, if any.
func (r *SessionRegistry) DestroyForUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}

	sessionID, err := r.client.Get(ctx, r.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("lookup session index: %w", err)
	}

	if err := r.client.Del(ctx, r.sessionKey(sessionID), r.userKey(userID)).Err(); err != nil {
		return fmt.Errorf("destroy user session: %w", err)
	}

	return nil
}

var _ port.SessionRegistry = (*SessionRegistry)(nil)
