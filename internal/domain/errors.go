package domain

import "errors"

var (
	// ErrNotFound is returned when a package ID is not in the index.
	ErrNotFound = errors.New("not found")

	// ErrCapacityExceeded is returned when a package cannot be placed on any truck.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	ErrInvalidNote     = errors.New("invalid note")
	ErrUnknownLocation = errors.New("unknown location")
	ErrInvalidMatrix   = errors.New("invalid distance matrix")
)
