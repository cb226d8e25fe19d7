package storage

import "errors"

// Store errors. Saved runs are write-once: a run id can be inserted a
// single time and is never updated.
var (
	// ErrNotFound is returned when no run or period row matches.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a run id or (run id, seq) pair is
	// already stored.
	ErrDuplicateKey = errors.New("duplicate key: saved runs are write-once")

	// ErrInvalidInput is returned for nil records, empty ids, or runs whose
	// decisions and periods differ in length.
	ErrInvalidInput = errors.New("invalid input")
)
