// Package common defines shared constants and sentinel errors used across
// the dashboard client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrUnavailable = errors.New("backend unavailable")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")

	// Operation guards (single-in-flight latches, stale results).
	ErrOperationInFlight = errors.New("operation already in flight")
	ErrStaleResult       = errors.New("stale result discarded")

	// Credential-link lifecycle.
	ErrAlreadyLinked = errors.New("account already linked")
	ErrNotLinked     = errors.New("account not linked")

	// Validation errors (checked locally, before any request).
	ErrValidation = errors.New("validation error")

	// Pagination.
	ErrNoNextPage     = errors.New("no next page")
	ErrNoPreviousPage = errors.New("no previous page")
)
