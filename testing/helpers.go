// Package testing provides test utilities and helpers for formz forms.
package testing

import (
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/formz"
)

// FieldEvent is one recorded field validation callback.
type FieldEvent[K comparable] struct {
	Key      K
	Messages formz.Messages
}

// Recorder captures every callback of a Form in call order.
// It is safe to read from another goroutine than the one driving the Form.
type Recorder[K comparable] struct {
	mu     sync.Mutex
	fields []FieldEvent[K]
	forms  []bool
	valid  [][]formz.FieldValue[K]
	failed [][]formz.FieldMessages[K]
	order  []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder[K comparable]() *Recorder[K] {
	return &Recorder[K]{}
}

// Attach installs the recorder's callbacks on b and returns b.
func (r *Recorder[K]) Attach(b *formz.Builder[K]) *formz.Builder[K] {
	return b.
		OnFieldValidationChange(func(key K, msgs formz.Messages) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.fields = append(r.fields, FieldEvent[K]{Key: key, Messages: msgs})
			r.order = append(r.order, "field")
		}).
		OnFormValidationChange(func(valid bool) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.forms = append(r.forms, valid)
			r.order = append(r.order, "form")
		}).
		OnValidSubmit(func(values []formz.FieldValue[K]) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.valid = append(r.valid, values)
			r.order = append(r.order, "valid")
		}).
		OnSubmitFailed(func(failed []formz.FieldMessages[K]) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.failed = append(r.failed, failed)
			r.order = append(r.order, "failed")
		})
}

// Fields returns the recorded field validation callbacks.
func (r *Recorder[K]) Fields() []FieldEvent[K] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FieldEvent[K](nil), r.fields...)
}

// Forms returns the recorded form validation callbacks.
func (r *Recorder[K]) Forms() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.forms...)
}

// ValidSubmits returns the recorded valid-submit callbacks.
func (r *Recorder[K]) ValidSubmits() [][]formz.FieldValue[K] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]formz.FieldValue[K](nil), r.valid...)
}

// FailedSubmits returns the recorded failed-submit callbacks.
func (r *Recorder[K]) FailedSubmits() [][]formz.FieldMessages[K] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]formz.FieldMessages[K](nil), r.failed...)
}

// Order returns the kinds of recorded callbacks in call order:
// "field", "form", "valid" or "failed".
func (r *Recorder[K]) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Total returns the number of recorded callbacks.
func (r *Recorder[K]) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Clear drops everything recorded so far.
func (r *Recorder[K]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields, r.forms, r.valid, r.failed, r.order = nil, nil, nil, nil, nil
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// RequireState fails the test immediately if a field is not in the expected state.
func RequireState[K comparable](t *testing.T, f *formz.Form[K], key K, expected formz.FieldState) {
	t.Helper()
	if got := f.State(key); got != expected {
		t.Fatalf("field %v: expected state %s, got %s", key, expected, got)
	}
}

// RequireValidity fails the test immediately if the aggregate differs.
func RequireValidity[K comparable](t *testing.T, f *formz.Form[K], expected formz.Validity) {
	t.Helper()
	if got := f.Validity(); got != expected {
		t.Fatalf("expected validity %s, got %s", expected, got)
	}
}

// CollectEvents reads n events from a StreamForm, failing the test if they
// do not arrive within timeout.
func CollectEvents[K comparable](t *testing.T, events <-chan formz.Event[K], n int, timeout time.Duration) []formz.Event[K] {
	t.Helper()
	out := make([]formz.Event[K], 0, n)
	deadline := time.After(timeout)
	for len(out) < n {
		select {
		case e, ok := <-events:
			if !ok {
				t.Fatalf("events closed after %d of %d", len(out), n)
			}
			out = append(out, e)
		case <-deadline:
			t.Fatalf("timeout after %d of %d events", len(out), n)
		}
	}
	return out
}
