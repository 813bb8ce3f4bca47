package formz

// FormField is the key-typed view a Form holds of its fields. It is
// implemented only by *Field; the unexported methods keep the value type V
// out of the Form so fields of different types can share one Form.
type FormField[K comparable] interface {
	Key() K
	Errors() *Value[Messages]
	Enabled() *Value[bool]
	Changed() *Trigger
	HasErrors() bool
	CleanErrors()

	value() (any, bool)
	check() Messages
	showErrors(Messages)
	override() *ValidationStrategy
	dependsOn() []K
	attach(f *Form[K], extra []*Trigger)
	detach()
}

// Field owns one input cell, its error and enabled cells, its validators and
// the triggers that force re-validation.
type Field[K comparable, V any] struct {
	key         K
	input       *Value[V]
	errors      *Value[Messages]
	enabled     *Value[bool]
	validators  []Validator[V]
	triggers    []*Trigger
	triggerKeys []K
	strategy    *ValidationStrategy
	formatter   Formatter[V]
	changed     *Trigger
	unsubs      []func()
}

// NewField creates a field reading from input. The input cell may be
// Deferred, in which case the field stays unvalidated until its first value.
func NewField[K comparable, V any](key K, input *Value[V], validators ...Validator[V]) *Field[K, V] {
	return &Field[K, V]{
		key:        key,
		input:      input,
		errors:     NewValueFunc[Messages](nil, Messages.Equal),
		enabled:    NewValue(true),
		validators: validators,
		changed:    NewTrigger(),
	}
}

// FieldOf creates a field with a fresh input cell holding initial.
func FieldOf[K comparable, V comparable](key K, initial V, validators ...Validator[V]) *Field[K, V] {
	return NewField(key, NewValue(initial), validators...)
}

// WithEnabled replaces the enabled cell, letting callers share one cell
// between several fields.
func (fl *Field[K, V]) WithEnabled(enabled *Value[bool]) *Field[K, V] {
	fl.enabled = enabled
	return fl
}

// WithTriggers adds signals that re-validate this field when fired.
func (fl *Field[K, V]) WithTriggers(triggers ...*Trigger) *Field[K, V] {
	fl.triggers = append(fl.triggers, triggers...)
	return fl
}

// TriggeredBy re-validates this field whenever one of the named fields of the
// same Form changes. Keys are resolved when the Form is built.
func (fl *Field[K, V]) TriggeredBy(keys ...K) *Field[K, V] {
	fl.triggerKeys = append(fl.triggerKeys, keys...)
	return fl
}

// WithStrategy overrides the Form's strategy for this field only.
func (fl *Field[K, V]) WithStrategy(s ValidationStrategy) *Field[K, V] {
	fl.strategy = &s
	return fl
}

// WithFormatter normalizes values written through Set.
func (fl *Field[K, V]) WithFormatter(f Formatter[V]) *Field[K, V] {
	fl.formatter = f
	return fl
}

// Key returns the field key.
func (fl *Field[K, V]) Key() K { return fl.key }

// Input returns the input cell.
func (fl *Field[K, V]) Input() *Value[V] { return fl.input }

// Errors returns the cell holding the visible validation messages.
func (fl *Field[K, V]) Errors() *Value[Messages] { return fl.errors }

// Enabled returns the enabled cell.
func (fl *Field[K, V]) Enabled() *Value[bool] { return fl.enabled }

// Changed returns the trigger fired after each input change has been
// processed by the owning Form.
func (fl *Field[K, V]) Changed() *Trigger { return fl.changed }

// Set formats v and writes it to the input cell.
func (fl *Field[K, V]) Set(v V) {
	if fl.formatter != nil {
		v = fl.formatter.Format(v)
	}
	fl.input.Set(v)
}

// Validate runs every validator against the current input and writes the
// result to the errors cell. A deferred input without a value is validated
// as the zero value.
func (fl *Field[K, V]) Validate() Messages {
	msgs := fl.check()
	fl.errors.Set(msgs)
	return msgs
}

// CleanErrors empties the errors cell.
func (fl *Field[K, V]) CleanErrors() {
	fl.errors.Set(nil)
}

// HasErrors reports whether the errors cell holds any message.
func (fl *Field[K, V]) HasErrors() bool {
	return !fl.errors.Get().Valid()
}

func (fl *Field[K, V]) value() (any, bool) {
	v, ok := fl.input.Lookup()
	if !ok {
		return nil, false
	}
	return v, true
}

func (fl *Field[K, V]) check() Messages {
	return Check(fl.input.Get(), fl.validators)
}

func (fl *Field[K, V]) showErrors(msgs Messages) {
	fl.errors.Set(msgs)
}

func (fl *Field[K, V]) override() *ValidationStrategy {
	return fl.strategy
}

func (fl *Field[K, V]) dependsOn() []K {
	return fl.triggerKeys
}

// attach wires the field into f. The enabled cell is observed first without
// acting on its replay, then triggers are subscribed, then the input cell is
// observed so its replay seeds the Form's cache.
func (fl *Field[K, V]) attach(f *Form[K], extra []*Trigger) {
	fl.detach()

	seeded := false
	fl.enabled.Observe(func(on bool) {
		if seeded {
			f.enabledChanged(fl, on)
		}
	})
	seeded = true

	for _, t := range fl.triggers {
		fl.unsubs = append(fl.unsubs, t.Subscribe(func() { f.triggered(fl) }))
	}
	for _, t := range extra {
		fl.unsubs = append(fl.unsubs, t.Subscribe(func() { f.triggered(fl) }))
	}

	fl.input.Observe(func(V) { f.inputChanged(fl) })
}

func (fl *Field[K, V]) detach() {
	fl.input.Unobserve()
	fl.enabled.Unobserve()
	for _, unsub := range fl.unsubs {
		unsub()
	}
	fl.unsubs = nil
}
