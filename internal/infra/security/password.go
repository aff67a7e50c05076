package security

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt cost below this floor is rejected outright; the hash being
// deliberately expensive is the security property, not an accident.
const minBcryptCost = 10

var (
	activeBcryptCost = minBcryptCost
	bcryptCostMu     sync.RWMutex
)

// DefaultBcryptCost returns the library default work factor.
func DefaultBcryptCost() int {
	return minBcryptCost
}

// CurrentBcryptCost returns the currently active bcrypt work factor.
func CurrentBcryptCost() int {
	bcryptCostMu.RLock()
	defer bcryptCostMu.RUnlock()
	return activeBcryptCost
}

// ConfigureBcryptCost sets the active work factor after validation.
func ConfigureBcryptCost(cost int) error {
	if cost < minBcryptCost {
		return fmt.Errorf("bcrypt: cost must be at least %d", minBcryptCost)
	}
	if cost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt: cost must be at most %d", bcrypt.MaxCost)
	}

	bcryptCostMu.Lock()
	activeBcryptCost = cost
	bcryptCostMu.Unlock()
	return nil
}

// HashPassword generates a salted bcrypt hash for the provided password.
// The salt is generated per call and embedded in the returned blob, so two
// hashes of the same password never compare equal as strings.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), CurrentBcryptCost())
	if err != nil {
		return "", fmt.Errorf("bcrypt: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares the provided password against a stored bcrypt
// blob. Malformed blobs verify as false; no error crosses the
// authentication boundary.
func VerifyPassword(password, encoded string) bool {
	if password == "" || encoded == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}
