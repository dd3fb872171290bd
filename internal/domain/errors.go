package domain

import "errors"

var (
	// ErrInvalidInput marks client-fixable input problems.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a missing borrow or catalog record.
	ErrNotFound = errors.New("not found")
	// ErrPersistence marks storage layer failures.
	ErrPersistence = errors.New("persistence failure")
	// ErrConflict marks a rejected state transition.
	ErrConflict = errors.New("conflict")
)
