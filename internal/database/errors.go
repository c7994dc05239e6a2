package database

import "errors"

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConcurrentModification is returned when a versioned update
	// matched no row, meaning someone changed it first.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrDuplicateEmail is returned on a unique violation of users.email.
	ErrDuplicateEmail = errors.New("email already in use")
)
