package formz

// Value is a single mutable cell with change-gated notification of one
// observer. It is the primitive behind field input, errors and enabled state.
//
// Set fires the observer only when the cell was empty or the new value is not
// equal to the stored one, so writing the current value is a silent no-op.
// Observe replays the current value to the new observer immediately.
//
// Value is not safe for concurrent use; a Form and its cells are driven by a
// single goroutine.
type Value[T any] struct {
	value    T
	present  bool
	equal    func(a, b T) bool
	observer func(T)
}

// NewValue creates a cell holding initial, compared with ==.
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{value: initial, present: true, equal: equalComparable[T]}
}

// NewValueFunc creates a cell holding initial, compared with equal.
// Use it for types that are not comparable, such as slices.
func NewValueFunc[T any](initial T, equal func(a, b T) bool) *Value[T] {
	return &Value[T]{value: initial, present: true, equal: equal}
}

// Deferred creates an empty cell compared with ==. The first Set always
// notifies; Observe replays nothing until a value has been set.
func Deferred[T comparable]() *Value[T] {
	return &Value[T]{equal: equalComparable[T]}
}

// DeferredFunc creates an empty cell compared with equal.
func DeferredFunc[T any](equal func(a, b T) bool) *Value[T] {
	return &Value[T]{equal: equal}
}

func equalComparable[T comparable](a, b T) bool {
	return a == b
}

// Get returns the current value, or the zero value if the cell is empty.
func (v *Value[T]) Get() T {
	return v.value
}

// Lookup returns the current value and whether one has been set.
func (v *Value[T]) Lookup() (T, bool) {
	return v.value, v.present
}

// Present reports whether the cell holds a value.
func (v *Value[T]) Present() bool {
	return v.present
}

// Set stores next and notifies the observer if the value changed.
func (v *Value[T]) Set(next T) {
	changed := !v.present || !v.equal(v.value, next)
	v.value = next
	v.present = true
	if changed && v.observer != nil {
		v.observer(next)
	}
}

// Observe registers fn as the only observer, replacing any previous one,
// and synchronously invokes it with the current value if present.
// A nil fn is equivalent to Unobserve.
func (v *Value[T]) Observe(fn func(T)) {
	v.observer = fn
	if fn != nil && v.present {
		fn(v.value)
	}
}

// Unobserve drops the registered observer.
func (v *Value[T]) Unobserve() {
	v.observer = nil
}
