package formz

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Builder collects fields, a strategy and callbacks, and produces a Form.
//
// Example:
//
//	form, err := formz.NewBuilder[string]().
//	    Strategy(formz.StrategyAllTime).
//	    OnFieldValidationChange(func(key string, msgs formz.Messages) {
//	        log.Printf("%s: %v", key, msgs.Strings())
//	    }).
//	    OnValidSubmit(func(fields []formz.FieldValue[string]) {
//	        save(fields)
//	    }).
//	    Add(email, password).
//	    Build(ctx)
type Builder[K comparable] struct {
	strategy ValidationStrategy
	fields   []FormField[K]

	onFieldValidation func(K, Messages)
	onFormValidation  func(bool)
	onValidSubmit     func([]FieldValue[K])
	onSubmitFailed    func([]FieldMessages[K])

	clock          clockz.Clock
	metrics        MetricsProvider
	failureHistory int
}

// NewBuilder creates a Builder using DefaultStrategy.
func NewBuilder[K comparable]() *Builder[K] {
	return &Builder[K]{
		strategy: DefaultStrategy,
		clock:    clockz.RealClock,
	}
}

// -----------------------------------------------------------------------------
// Chainable Configuration
// -----------------------------------------------------------------------------

// Strategy sets the form-level validation strategy.
// Default: StrategyAfterSubmit.
func (b *Builder[K]) Strategy(s ValidationStrategy) *Builder[K] {
	b.strategy = s
	return b
}

// OnFieldValidationChange sets the callback run when a field's visible
// validation state changes, or on every submit for strategies that resync.
func (b *Builder[K]) OnFieldValidationChange(fn func(key K, msgs Messages)) *Builder[K] {
	b.onFieldValidation = fn
	return b
}

// OnFormValidationChange sets the callback run when the aggregate validity
// visibly changes.
func (b *Builder[K]) OnFormValidationChange(fn func(valid bool)) *Builder[K] {
	b.onFormValidation = fn
	return b
}

// OnValidSubmit sets the callback run when a submit finds the form valid.
func (b *Builder[K]) OnValidSubmit(fn func(fields []FieldValue[K])) *Builder[K] {
	b.onValidSubmit = fn
	return b
}

// OnSubmitFailed sets the callback run when a submit finds failing fields.
func (b *Builder[K]) OnSubmitFailed(fn func(fields []FieldMessages[K])) *Builder[K] {
	b.onSubmitFailed = fn
	return b
}

// Add appends fields in declaration order.
func (b *Builder[K]) Add(fields ...FormField[K]) *Builder[K] {
	b.fields = append(b.fields, fields...)
	return b
}

// Clock sets the clock used to time validation for metrics and failure
// history. Default: clockz.RealClock.
func (b *Builder[K]) Clock(clock clockz.Clock) *Builder[K] {
	b.clock = clock
	return b
}

// Metrics sets a metrics provider for observability integration.
func (b *Builder[K]) Metrics(provider MetricsProvider) *Builder[K] {
	b.metrics = provider
	return b
}

// FailureHistorySize sets the number of failed submits the Form retains.
// Use 0 (default) to disable the history.
func (b *Builder[K]) FailureHistorySize(n int) *Builder[K] {
	b.failureHistory = n
	return b
}

// Fields returns the fields added so far.
func (b *Builder[K]) Fields() []FormField[K] {
	return b.fields
}

// Build validates the field set, attaches every field and computes the
// initial aggregate. Under a strategy that validates before submit, invalid
// initial values are reported synchronously before Build returns.
//
// A field belongs to one Form at a time; building again re-attaches the
// fields to the new Form.
func (b *Builder[K]) Build(ctx context.Context) (*Form[K], error) {
	index := make(map[K]int, len(b.fields))
	for i, fl := range b.fields {
		if _, dup := index[fl.Key()]; dup {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateField, fl.Key())
		}
		index[fl.Key()] = i
	}

	extra := make([][]*Trigger, len(b.fields))
	for i, fl := range b.fields {
		for _, key := range fl.dependsOn() {
			j, ok := index[key]
			if !ok {
				return nil, fmt.Errorf("%w: %v (triggers %v)", ErrUnknownField, key, fl.Key())
			}
			extra[i] = append(extra[i], b.fields[j].Changed())
		}
	}

	metrics := b.metrics
	if metrics == nil {
		metrics = NoOpMetricsProvider{}
	}
	clock := b.clock
	if clock == nil {
		clock = clockz.RealClock
	}

	f := &Form[K]{
		ctx:               ctx,
		fields:            append([]FormField[K](nil), b.fields...),
		index:             index,
		strategy:          b.strategy,
		results:           make(map[K]fieldResult, len(b.fields)),
		onFieldValidation: b.onFieldValidation,
		onFormValidation:  b.onFormValidation,
		onValidSubmit:     b.onValidSubmit,
		onSubmitFailed:    b.onSubmitFailed,
		clock:             clock,
		metrics:           metrics,
		failures:          newFailureRing[K](b.failureHistory),
	}

	f.building = true
	for i, fl := range f.fields {
		fl.attach(f, extra[i])
	}
	f.building = false
	f.aggregate(f.strategy.allows(false) && f.strategy.OnChange)

	capitan.Emit(ctx, FormBuilt,
		KeyStrategy.Field(f.strategy.String()),
		KeyFieldCount.Field(len(f.fields)),
	)
	return f, nil
}
