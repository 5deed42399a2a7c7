package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned when an optimistic write loses to a
// concurrent writer: the row exists but its version no longer matches the
// expected one. Callers may retry the read-modify-write cycle.
var ErrVersionConflict = errors.New("version conflict")
