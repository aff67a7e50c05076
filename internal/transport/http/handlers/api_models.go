package handlers

import "time"

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is returned by registration and login. The password hash is
// never part of any response payload.
type UserResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ProfileResponse describes the authenticated user's own view.
type ProfileResponse struct {
	Email string `json:"email"`
}

// ResetTokenResponse carries a freshly issued password reset token.
type ResetTokenResponse struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}
