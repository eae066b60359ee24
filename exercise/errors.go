package exercise

import "errors"

var (
	// ErrFileUnreadable is returned when an exercise source cannot be opened,
	// read, or is not valid UTF-8. It is never reported as a Done state.
	ErrFileUnreadable = errors.New("exercise file unreadable")
	ErrFileUnwritable = errors.New("exercise file unwritable")
	// ErrBackendFailure wraps failures raised by the build/run/test backend.
	ErrBackendFailure = errors.New("backend failure")
	ErrInvalidMode    = errors.New("invalid exercise mode")
	ErrDuplicateName  = errors.New("duplicate exercise name")
	ErrNotFound       = errors.New("exercise not found")
)
