package common

import "errors"

// Business logic errors. Handlers map these onto HTTP statuses; the
// workflow engine returns them wrapped with operation context.
var (
	// ErrNotFound is returned when a referenced entity or version does not
	// exist or has been soft-deleted.
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied is returned when the actor's role or ownership
	// does not authorize the requested operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidState is returned when the requested transition is illegal
	// for the current version or entity status, e.g. approving a version
	// that is no longer pending review.
	ErrInvalidState = errors.New("invalid state for requested transition")

	// ErrValidation is returned for malformed submission payloads, before
	// any store mutation.
	ErrValidation = errors.New("invalid input")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
