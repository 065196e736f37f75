package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrUpdateInFlight is returned when a soft update is skipped because a
	// previous one has not finished yet. Overlapping calls are skipped, never
	// queued.
	ErrUpdateInFlight = errors.New("soft update already in flight")
)
