package port

import "context"

// SessionRegistry owns the mapping from opaque session identifier to user
// identity and creation time. The registry is the sole authority on expiry:
// an expired session is indistinguishable from a destroyed one on lookup,
// but lookups never delete anything.
type SessionRegistry interface {
	// CreateSession records a fresh session for the user, replacing any
	// prior one, and returns its opaque identifier. An empty or unknown
	// user id yields ("", nil).
	CreateSession(ctx context.Context, userID string) (string, error)
	// UserIDForSession resolves a session identifier to its user id.
	// Unknown, malformed, and expired identifiers yield ("", nil).
	UserIDForSession(ctx context.Context, sessionID string) (string, error)
	// DestroySession removes the session. It reports false when the
	// identifier does not resolve to a live user; a second call on the
	// same identifier is therefore false, not an error.
	DestroySession(ctx context.Context, sessionID string) (bool, error)
	// DestroyForUser clears the user's session, if any. A user without a
	// session is a no-op.
	DestroyForUser(ctx context.Context, userID string) error
}
