package interfaces

import "errors"

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when a unique index rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrConflict is returned when a conditional update matched nothing
	// because the document was no longer in the expected state.
	ErrConflict = errors.New("state conflict")
)
