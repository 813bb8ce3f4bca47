package formz

import "github.com/zoobzio/capitan"

// Field keys for form events.
var (
	// KeyField is the key of the field an event refers to.
	KeyField = capitan.NewStringKey("field")

	// KeyStrategy is the name of the form strategy.
	KeyStrategy = capitan.NewStringKey("strategy")

	// KeyValid reports field validity in field validation events.
	KeyValid = capitan.NewStringKey("valid")

	// KeyOldValidity is the aggregate validity before a change.
	KeyOldValidity = capitan.NewStringKey("old_validity")

	// KeyNewValidity is the aggregate validity after a change.
	KeyNewValidity = capitan.NewStringKey("new_validity")

	// KeyFieldCount is the number of fields in a form.
	KeyFieldCount = capitan.NewIntKey("field_count")

	// KeyErrorCount is the number of failing fields or messages.
	KeyErrorCount = capitan.NewIntKey("error_count")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyEvent is the kind of a stream event.
	KeyEvent = capitan.NewStringKey("event")

	// KeyDebounce is the configured debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyDuration is the time a submit took.
	KeyDuration = capitan.NewDurationKey("duration")
)
