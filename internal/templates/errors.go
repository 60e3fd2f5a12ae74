package templates

import "errors"

var (
	// ErrNotFound indicates an unknown template id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
