package formz

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// fieldResult is the Form's last evaluation of one field.
type fieldResult struct {
	value    any
	messages Messages
	enabled  bool
}

// Form is the validation state machine over an ordered set of fields.
//
// The Form keeps a cache of every field's latest evaluation, refreshed on each
// input, enable or trigger event, and derives the aggregate validity from it.
// The strategy decides which of those evaluations become visible: written to
// the field's errors cell and reported through the callbacks.
//
// A field that has never held a value is pending. Pending and disabled fields
// are left out of the aggregate, so a form whose fields are all pending is
// valid. Use Pending to detect that case.
//
// Form is not safe for concurrent use. Every call runs its notification chain
// to completion on the calling goroutine; StreamForm and LiveForm serialize
// access for producers on other goroutines.
type Form[K comparable] struct {
	ctx      context.Context
	fields   []FormField[K]
	index    map[K]int
	strategy ValidationStrategy
	results  map[K]fieldResult
	validity Validity

	submitted bool
	building  bool
	disposed  bool

	onFieldValidation func(K, Messages)
	onFormValidation  func(bool)
	onValidSubmit     func([]FieldValue[K])
	onSubmitFailed    func([]FieldMessages[K])

	clock    clockz.Clock
	metrics  MetricsProvider
	failures *failureRing[K]
}

// Submit marks the form submitted, re-evaluates fields whose strategy
// validates on submit and reports exactly one outcome: the valid-submit
// callback with the values of every enabled field, or the failed-submit
// callback with the failing fields in declaration order.
//
// Fields under a strategy that stays silent before submit re-emit their
// validation state on every submit, changed or not, and the form callback
// runs once with the aggregate.
func (f *Form[K]) Submit() {
	if f.disposed {
		return
	}
	start := f.clock.Now()
	f.submitted = true

	for _, fl := range f.fields {
		s := f.strategyFor(fl)
		if !s.OnSubmit {
			continue
		}
		prev, had := f.results[fl.Key()]
		res, ok := f.evaluate(fl)
		if !ok || !res.enabled {
			continue
		}
		switch {
		case s.resyncsOnSubmit():
			fl.showErrors(res.messages)
			f.emitField(fl.Key(), res.messages)
		case s.allows(true):
			fl.showErrors(res.messages)
			f.fieldChanged(fl.Key(), prev, had, res)
		}
	}

	valid := f.allValid()
	if f.strategy.resyncsOnSubmit() {
		f.setValidity(valid)
		if f.onFormValidation != nil {
			f.onFormValidation(valid)
		}
	} else {
		f.aggregate(f.strategy.allows(true))
	}

	if valid {
		values := f.values()
		f.metrics.OnSubmit(true, f.clock.Since(start))
		capitan.Emit(f.ctx, FormSubmitSucceeded,
			KeyFieldCount.Field(len(values)),
			KeyDuration.Field(f.clock.Since(start)),
		)
		if f.onValidSubmit != nil {
			f.onValidSubmit(values)
		}
		return
	}

	failed := f.failedFields()
	f.failures.push(SubmitFailure[K]{At: f.clock.Now(), Fields: failed})
	f.metrics.OnSubmit(false, f.clock.Since(start))
	capitan.Emit(f.ctx, FormSubmitFailed,
		KeyErrorCount.Field(len(failed)),
		KeyDuration.Field(f.clock.Since(start)),
	)
	if f.onSubmitFailed != nil {
		f.onSubmitFailed(failed)
	}
}

// Reset clears the submitted flag, every cached result and every field's
// visible errors. Fields stay attached and are evaluated again on their next
// event.
func (f *Form[K]) Reset() {
	if f.disposed {
		return
	}
	f.submitted = false
	clear(f.results)
	f.validity = ValidityUnknown
	for _, fl := range f.fields {
		fl.CleanErrors()
	}
	f.failures.clear()
	capitan.Emit(f.ctx, FormReset, KeyFieldCount.Field(len(f.fields)))
}

// Dispose detaches every field from the form. Later events and submits are
// ignored. Dispose is idempotent.
func (f *Form[K]) Dispose() {
	if f.disposed {
		return
	}
	f.disposed = true
	for _, fl := range f.fields {
		fl.detach()
	}
	capitan.Emit(f.ctx, FormDisposed, KeyFieldCount.Field(len(f.fields)))
}

// Validity returns the aggregate validity.
func (f *Form[K]) Validity() Validity {
	return f.validity
}

// IsValid returns the aggregate validity and whether it is known.
func (f *Form[K]) IsValid() (valid, known bool) {
	return f.validity == ValidityValid, f.validity != ValidityUnknown
}

// Submitted reports whether Submit was called since the last Reset.
func (f *Form[K]) Submitted() bool {
	return f.submitted
}

// Disposed reports whether Dispose was called.
func (f *Form[K]) Disposed() bool {
	return f.disposed
}

// Strategy returns the form-level strategy.
func (f *Form[K]) Strategy() ValidationStrategy {
	return f.strategy
}

// Keys returns the field keys in declaration order.
func (f *Form[K]) Keys() []K {
	keys := make([]K, len(f.fields))
	for i, fl := range f.fields {
		keys[i] = fl.Key()
	}
	return keys
}

// Errors returns the visible messages of a field.
func (f *Form[K]) Errors(key K) Messages {
	fl, ok := f.field(key)
	if !ok {
		return nil
	}
	return fl.Errors().Get()
}

// IsEnabled reports whether a field is enabled. Unknown keys report false.
func (f *Form[K]) IsEnabled(key K) bool {
	fl, ok := f.field(key)
	if !ok {
		return false
	}
	return fl.Enabled().Get()
}

// Value returns the current value of a field and whether it has one.
func (f *Form[K]) Value(key K) (any, bool) {
	fl, ok := f.field(key)
	if !ok {
		return nil, false
	}
	return fl.value()
}

// State returns the cached state of a field.
func (f *Form[K]) State(key K) FieldState {
	fl, ok := f.field(key)
	if !ok {
		return FieldUnvalidated
	}
	if !fl.Enabled().Get() {
		return FieldDisabled
	}
	res, ok := f.results[key]
	switch {
	case !ok:
		return FieldUnvalidated
	case res.messages.Valid():
		return FieldValid
	default:
		return FieldInvalid
	}
}

// Pending returns the enabled fields that have not been evaluated, in
// declaration order. They do not count against the aggregate.
func (f *Form[K]) Pending() []K {
	var out []K
	for _, fl := range f.fields {
		if !fl.Enabled().Get() {
			continue
		}
		if _, ok := f.results[fl.Key()]; !ok {
			out = append(out, fl.Key())
		}
	}
	return out
}

// FailureHistory returns recent failed submits, oldest first. It is empty
// unless the builder set a history size.
func (f *Form[K]) FailureHistory() []SubmitFailure[K] {
	return f.failures.all()
}

func (f *Form[K]) field(key K) (FormField[K], bool) {
	i, ok := f.index[key]
	if !ok {
		return nil, false
	}
	return f.fields[i], true
}

func (f *Form[K]) strategyFor(fl FormField[K]) ValidationStrategy {
	if s := fl.override(); s != nil {
		return *s
	}
	return f.strategy
}

// inputChanged handles a change of a field's input cell, including the replay
// on attach.
func (f *Form[K]) inputChanged(fl FormField[K]) {
	if f.disposed {
		return
	}
	s := f.strategyFor(fl)
	allows := s.allows(f.submitted)

	prev, had := f.results[fl.Key()]
	res, ok := f.evaluate(fl)
	if ok {
		notify := allows && s.OnChange && res.enabled
		if notify {
			fl.showErrors(res.messages)
			f.fieldChanged(fl.Key(), prev, had, res)
		}
		if allows && s.ClearErrorOnChange && res.enabled && fl.HasErrors() {
			fl.CleanErrors()
		}
		f.aggregate(notify)
	}

	fl.Changed().Fire()
}

func (f *Form[K]) enabledChanged(fl FormField[K], on bool) {
	if f.disposed {
		return
	}
	s := f.strategyFor(fl)
	allows := s.allows(f.submitted)

	prev, had := f.results[fl.Key()]
	res, ok := f.evaluate(fl)
	switch {
	case on:
		if ok && s.OnEnable && allows {
			fl.showErrors(res.messages)
			f.fieldChanged(fl.Key(), prev, had, res)
		}
	case s.ClearErrorsOnDisable && fl.HasErrors():
		fl.CleanErrors()
		if ok && allows {
			f.fieldChanged(fl.Key(), prev, had, res)
		}
	}
	f.aggregate(allows)
}

func (f *Form[K]) triggered(fl FormField[K]) {
	if f.disposed {
		return
	}
	s := f.strategyFor(fl)
	allows := s.allows(f.submitted)

	prev, had := f.results[fl.Key()]
	res, ok := f.evaluate(fl)
	if !ok {
		return
	}
	notify := allows && s.OnTrigger && res.enabled
	if notify {
		fl.showErrors(res.messages)
		f.fieldChanged(fl.Key(), prev, had, res)
	}
	f.aggregate(notify)
}

// evaluate refreshes the cached result of fl. It reports false when the
// field has no value yet.
func (f *Form[K]) evaluate(fl FormField[K]) (fieldResult, bool) {
	v, ok := fl.value()
	if !ok {
		delete(f.results, fl.Key())
		return fieldResult{}, false
	}
	res := fieldResult{value: v, enabled: fl.Enabled().Get()}
	if res.enabled {
		start := f.clock.Now()
		res.messages = fl.check()
		f.metrics.OnFieldValidated(fmt.Sprint(fl.Key()), res.messages.Valid(), f.clock.Since(start))
	}
	f.results[fl.Key()] = res
	return res, true
}

// fieldChanged reports res when its validity differs from the previous
// result. A field without a previous result counts as valid.
func (f *Form[K]) fieldChanged(key K, prev fieldResult, had bool, res fieldResult) {
	wasValid := !had || prev.messages.Valid()
	if wasValid == res.messages.Valid() {
		return
	}
	f.emitField(key, res.messages)
}

func (f *Form[K]) emitField(key K, msgs Messages) {
	capitan.Emit(f.ctx, FieldValidationChanged,
		KeyField.Field(fmt.Sprint(key)),
		KeyValid.Field(fmt.Sprint(msgs.Valid())),
		KeyErrorCount.Field(len(msgs)),
	)
	if f.onFieldValidation != nil {
		f.onFieldValidation(key, msgs)
	}
}

// aggregate recomputes the aggregate validity and runs the form callback when
// it changed and notify is set. It does nothing while the form is building.
func (f *Form[K]) aggregate(notify bool) {
	if f.building {
		return
	}
	valid := f.allValid()
	if !f.setValidity(valid) {
		return
	}
	if notify && f.onFormValidation != nil {
		f.onFormValidation(valid)
	}
}

// setValidity stores the aggregate and reports whether it changed.
func (f *Form[K]) setValidity(valid bool) bool {
	next := validityOf(valid)
	if next == f.validity {
		return false
	}
	prev := f.validity
	f.validity = next
	f.metrics.OnValidityChange(prev, next)
	capitan.Emit(f.ctx, FormValidityChanged,
		KeyOldValidity.Field(prev.String()),
		KeyNewValidity.Field(next.String()),
	)
	return true
}

func (f *Form[K]) allValid() bool {
	for _, fl := range f.fields {
		res, ok := f.results[fl.Key()]
		if ok && res.enabled && !res.messages.Valid() {
			return false
		}
	}
	return true
}

func (f *Form[K]) values() []FieldValue[K] {
	out := make([]FieldValue[K], 0, len(f.fields))
	for _, fl := range f.fields {
		res, ok := f.results[fl.Key()]
		if !ok || !res.enabled {
			continue
		}
		out = append(out, FieldValue[K]{Key: fl.Key(), Value: res.value})
	}
	return out
}

func (f *Form[K]) failedFields() []FieldMessages[K] {
	var out []FieldMessages[K]
	for _, fl := range f.fields {
		res, ok := f.results[fl.Key()]
		if !ok || !res.enabled || res.messages.Valid() {
			continue
		}
		out = append(out, FieldMessages[K]{Key: fl.Key(), Messages: res.messages})
	}
	return out
}
