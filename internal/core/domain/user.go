package domain

import "time"

// User mirrors the persisted representation in the users table.
// At most one live session and one outstanding reset token exist per user;
// both live on the row so that expiry and redemption are plain row updates.
type User struct {
	ID               string
	Email            string
	HashedPassword   string
	SessionID        *string
	SessionCreatedAt *time.Time
	ResetToken       *string
	RegisteredAt     time.Time
}

// Sanitized returns a copy safe for externally visible structures.
// The password hash is never serialized or logged.
func (u User) Sanitized() User {
	u.HashedPassword = ""
	return u
}

// HasSession reports whether the user currently carries a session reference.
func (u User) HasSession() bool {
	return u.SessionID != nil && *u.SessionID != ""
}

// Session is the conceptual view of a user's live session. The store-backed
// registry embeds it in the user row; the Redis registry persists it as a
// standalone hash.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at the supplied
// moment. A non-positive duration disables expiry entirely.
func (s Session) Expired(at time.Time, duration time.Duration) bool {
	if duration <= 0 {
		return false
	}
	return !at.Before(s.CreatedAt.Add(duration))
}
