package formz

import "github.com/zoobzio/capitan"

// Form lifecycle signals.
var (
	// FormBuilt is emitted when a Builder produces a Form.
	FormBuilt = capitan.NewSignal(
		"formz.form.built",
		"Form built and fields attached",
	)

	// FormReset is emitted when a Form clears its submission state and cache.
	FormReset = capitan.NewSignal(
		"formz.form.reset",
		"Form reset",
	)

	// FormDisposed is emitted when a Form drops its observers.
	FormDisposed = capitan.NewSignal(
		"formz.form.disposed",
		"Form disposed",
	)
)

// Validation signals.
var (
	// FieldValidationChanged is emitted whenever the field validation
	// callback would run, whether or not one is registered.
	FieldValidationChanged = capitan.NewSignal(
		"formz.field.validation.changed",
		"Field validation state changed",
	)

	// FormValidityChanged is emitted when the aggregate validity changes,
	// including silent changes that do not reach the form callback.
	FormValidityChanged = capitan.NewSignal(
		"formz.form.validity.changed",
		"Form aggregate validity changed",
	)
)

// Submit signals.
var (
	// FormSubmitSucceeded is emitted when a submit finds every field valid.
	FormSubmitSucceeded = capitan.NewSignal(
		"formz.form.submit.succeeded",
		"Form submitted with valid data",
	)

	// FormSubmitFailed is emitted when a submit finds invalid fields.
	FormSubmitFailed = capitan.NewSignal(
		"formz.form.submit.failed",
		"Form submitted with errors",
	)
)

// Adapter signals.
var (
	// StreamStarted is emitted when a StreamForm begins consuming its sources.
	StreamStarted = capitan.NewSignal(
		"formz.stream.started",
		"Stream form started",
	)

	// StreamStopped is emitted when a StreamForm stops.
	StreamStopped = capitan.NewSignal(
		"formz.stream.stopped",
		"Stream form stopped",
	)

	// StreamSubmitDropped is emitted when a submit arrives before every
	// source has produced a value.
	StreamSubmitDropped = capitan.NewSignal(
		"formz.stream.submit.dropped",
		"Submit dropped while fields are pending",
	)

	// StreamEventDropped is emitted in sync mode when Events is full and an
	// event is discarded.
	StreamEventDropped = capitan.NewSignal(
		"formz.stream.event.dropped",
		"Event dropped because the events buffer is full",
	)

	// SourceDecodeFailed is emitted when a watcher payload cannot be decoded.
	SourceDecodeFailed = capitan.NewSignal(
		"formz.source.decode.failed",
		"Source payload decode failed",
	)
)
