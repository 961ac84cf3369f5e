package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when input is malformed and was rejected
// before any I/O happened (bad identifiers, missing fields, bad schedule).
// Handlers should map this to HTTP 400.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrNotFound covers missing records, empty search results, and every
// geocoding or directions failure. Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned by the repository when an insert collides with an
// existing active trip code. Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrResourceExhausted is returned when the trip-code generator runs out of
// attempts. Handlers should map this to HTTP 503.
var ErrResourceExhausted = errors.New("resource exhausted")

// ErrConstraint is returned by the repository when the store rejects a row
// (check, not-null, foreign-key or format violations). It never reaches a
// handler directly: the service re-labels it.
var ErrConstraint = errors.New("constraint violation")

// Error pairs an error kind (one of the sentinels above) with the message
// that is safe to show to the caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

// Unwrap lets errors.Is(err, domain.ErrNotFound) see through an *Error.
func (e *Error) Unwrap() error { return e.Kind }

// NotFound returns an ErrNotFound-kind error with a caller-visible message.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument returns an ErrInvalidArgument-kind error.
func InvalidArgument(format string, args ...any) error {
	return &Error{Kind: ErrInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns an ErrConflict-kind error.
func Conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// ResourceExhausted returns an ErrResourceExhausted-kind error.
func ResourceExhausted(format string, args ...any) error {
	return &Error{Kind: ErrResourceExhausted, Message: fmt.Sprintf(format, args...)}
}

// Message extracts the caller-visible message from err.
// Errors that carry no *Error fall back to the bare kind text, so internal
// wrapping prefixes ("service.TripService.CreateTrip: ...") never leak.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		if de.Message != "" {
			return de.Message
		}
		return de.Kind.Error()
	}
	for _, kind := range []error{ErrInvalidArgument, ErrNotFound, ErrConflict, ErrResourceExhausted} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal error"
}
