package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/arklim/user-auth-service/internal/core/domain"
	"github.com/arklim/user-auth-service/internal/core/port"
	"github.com/arklim/user-auth-service/internal/infra/security"
	"github.com/arklim/user-auth-service/internal/repository"
)

// Strategy resolves the authenticated identity behind a request. A nil user
// with a nil error means the request carries no valid credentials; errors are
// reserved for infrastructure failures.
type Strategy interface {
	ResolveIdentity(ctx context.Context, req port.Request) (*domain.User, error)
}

// BasicAuthStrategy authenticates requests through the Authorization header
// using HTTP Basic credentials. Malformed headers, undecodable payloads, and
// wrong passwords all collapse to a nil identity rather than an error.
type BasicAuthStrategy struct {
	store port.UserStore
}

// NewBasicAuthStrategy constructs the Basic credentials strategy.
func NewBasicAuthStrategy(store port.UserStore) *BasicAuthStrategy {
	return &BasicAuthStrategy{store: store}
}

// ResolveIdentity extracts and verifies Basic credentials from the request.
func (s *BasicAuthStrategy) ResolveIdentity(ctx context.Context, req port.Request) (*domain.User, error) {
	if req == nil {
		return nil, nil
	}

	email, password, ok := decodeBasicCredentials(req.Header("Authorization"))
	if !ok {
		return nil, nil
	}

	// Several records may share an email across federated stores; the first
	// candidate whose hash verifies wins.
	candidates, err := s.store.FindUsersBy(ctx, map[string]any{"email": email})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find users: %w", err)
	}

	for i := range candidates {
		if security.VerifyPassword(password, candidates[i].HashedPassword) {
			return &candidates[i], nil
		}
	}

	return nil, nil
}

// decodeBasicCredentials unwraps "Basic <base64(email:password)>". The split
// is on the first ':' only, so passwords may themselves contain colons.
func decodeBasicCredentials(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}

	email, password, ok = strings.Cut(string(decoded), ":")
	if !ok || email == "" {
		return "", "", false
	}

	return email, password, true
}

// SessionAuthStrategy authenticates requests through the session cookie: the
// cookie value resolves to a user id in the registry, and the id to a user
// record in the store. Any broken link in that chain yields a nil identity.
type SessionAuthStrategy struct {
	store      port.UserStore
	registry   port.SessionRegistry
	cookieName string
}

// NewSessionAuthStrategy constructs the session cookie strategy. The cookie
// name comes from configuration so deployments can rename it.
func NewSessionAuthStrategy(store port.UserStore, registry port.SessionRegistry, cookieName string) *SessionAuthStrategy {
	if cookieName == "" {
		cookieName = "session_id"
	}
	return &SessionAuthStrategy{
		store:      store,
		registry:   registry,
		cookieName: cookieName,
	}
}

// CookieName exposes the configured session cookie name to the transport.
func (s *SessionAuthStrategy) CookieName() string {
	return s.cookieName
}

// ResolveIdentity resolves the session cookie to its owning user.
func (s *SessionAuthStrategy) ResolveIdentity(ctx context.Context, req port.Request) (*domain.User, error) {
	if req == nil {
		return nil, nil
	}

	sessionID := req.Cookie(s.cookieName)
	if sessionID == "" {
		return nil, nil
	}

	userID, err := s.registry.UserIDForSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
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

var (
	_ Strategy = (*BasicAuthStrategy)(nil)
	_ Strategy = (*SessionAuthStrategy)(nil)
)
