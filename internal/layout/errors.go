package layout

import (
	"errors"
	"fmt"
)

// Engine errors. All are local and recoverable: a failed setter leaves the
// entity's pending state untouched, and no error ever crosses the Commit
// boundary.
var (
	// ErrInvalidArgument indicates a nil callback or otherwise malformed
	// argument passed to an API.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates an id that does not resolve to a live entity,
	// including ids whose entity has since been removed.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateIdentity indicates an attempt to bind native content to a
	// surface id that already has live content. This is a soft rejection:
	// the shell reports it back to the requesting client as a warning.
	ErrDuplicateIdentity = errors.New("surface id already bound to native content")

	// ErrResourceExhausted indicates the entity registry cap was reached.
	ErrResourceExhausted = errors.New("entity limit reached")
)

func notFound(kind string, id uint32) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

func duplicateIdentity(id SurfaceID) error {
	return fmt.Errorf("surface %d: %w", uint32(id), ErrDuplicateIdentity)
}

func exhausted(kind string, limit int) error {
	return fmt.Errorf("%s registry full (limit %d): %w", kind, limit, ErrResourceExhausted)
}

