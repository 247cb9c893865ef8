package store

import "errors"

var (
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not found")
	ErrIdempotencyConflict = errors.New("idempotency key conflict")
	ErrStaleVersion        = errors.New("stale version")

	// Raised when a write references a row that does not exist (or no longer does).
	ErrUnknownClient  = errors.New("unknown client")
	ErrUnknownStaff   = errors.New("unknown staff member")
	ErrUnknownService = errors.New("unknown service")
)
