package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("repository: already exists")
	// ErrInvalidQuery indicates a lookup filter was empty or named an
	// unknown column. This is a programmer error, fatal for the call.
	ErrInvalidQuery = errors.New("repository: invalid query")
	// ErrUnknownField indicates an update named a column that does not exist.
	ErrUnknownField = errors.New("repository: unknown field")
)
