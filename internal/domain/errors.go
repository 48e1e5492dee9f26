package domain

import "errors"

// Sentinel errors shared across services and repositories. Repositories
// translate driver-level failures into these; controllers are the only
// layer that maps them to HTTP responses.
var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller is not allowed to act on the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned when the request is semantically invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEventFull is returned by Join when the event has no free seats.
	ErrEventFull = errors.New("event is full")

	// ErrAlreadyJoined is returned by Join when the user already holds a seat.
	ErrAlreadyJoined = errors.New("already rsvped")

	// ErrNotJoined is returned by Leave when the user holds no seat.
	ErrNotJoined = errors.New("not rsvped")

	// ErrTxConflict is returned when a concurrent writer invalidated the
	// transaction. The attempted mutation did not commit, so callers may
	// safely retry the whole operation.
	ErrTxConflict = errors.New("transaction conflict")
)
