package sessions

import "errors"

var (
	// ErrNotFound indicates an unknown session id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrWrongState indicates a transition attempted from an illegal state,
	// or by a recruiter who does not hold the session.
	ErrWrongState = errors.New("wrong session state")
)
