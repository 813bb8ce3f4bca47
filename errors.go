package formz

import "errors"

// Build and start errors. Validation failures are never errors; they are
// reported as Messages through the form callbacks.
var (
	// ErrDuplicateField is returned when two fields share a key.
	ErrDuplicateField = errors.New("duplicate field key")

	// ErrUnknownField is returned when a trigger references a missing key.
	ErrUnknownField = errors.New("unknown field key")

	// ErrUnknownStrategy is returned by ParseStrategy for unknown names.
	ErrUnknownStrategy = errors.New("unknown validation strategy")

	// ErrAlreadyStarted is returned when an adapter is started twice.
	ErrAlreadyStarted = errors.New("already started")
)
