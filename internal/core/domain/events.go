package domain

import "time"

// UserRegisteredEvent captures a completed registration.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Email        string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// PasswordChangedEvent captures a password update, whether through the reset
// flow or an authenticated change.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	Reason    string
	Metadata  map[string]any
}

// SessionDestroyedEvent captures an explicit logout or administrative
// session teardown. Lazy expiry does not emit events.
type SessionDestroyedEvent struct {
	EventID     string
	UserID      string
	DestroyedAt time.Time
	Reason      string
	Metadata    map[string]any
}
