package usecase

import "errors"

var (
	// ErrUserNotFound signals that no user matches the supplied email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidToken signals that a reset token does not belong to any user,
	// including tokens that were already redeemed.
	ErrInvalidToken = errors.New("invalid reset token")
	// ErrAlreadyExists signals a registration attempt for a taken email.
	ErrAlreadyExists = errors.New("user already exists")
)
