package store

import "errors"

var (
	// ErrNotFound is returned when a row addressed by id or key is missing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned when an entity references a row that
	// does not exist.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConcurrencyConflict is returned when the row changed since it was read.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)
