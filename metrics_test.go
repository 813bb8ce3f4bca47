package formz

import (
	"context"
	"testing"
	"time"
)

func TestNoOpMetricsProvider_DoesNotPanic(_ *testing.T) {
	var m NoOpMetricsProvider

	// These should not panic
	m.OnValidityChange(ValidityUnknown, ValidityValid)
	m.OnFieldValidated("email", false, time.Millisecond)
	m.OnSubmit(true, 100*time.Millisecond)
}

type countingMetrics struct {
	NoOpMetricsProvider
	transitions []Validity
	validated   map[string]int
	submits     []bool
}

func (m *countingMetrics) OnValidityChange(_, to Validity) {
	m.transitions = append(m.transitions, to)
}

func (m *countingMetrics) OnFieldValidated(field string, _ bool, _ time.Duration) {
	if m.validated == nil {
		m.validated = make(map[string]int)
	}
	m.validated[field]++
}

func (m *countingMetrics) OnSubmit(valid bool, _ time.Duration) {
	m.submits = append(m.submits, valid)
}

func TestMetricsProvider_ReceivesFormEvents(t *testing.T) {
	notEmpty := NewValidator(ValidationMessage{Message: "required", Type: "required"}, func(s string) bool { return s != "" })
	name := FieldOf("name", "", notEmpty)

	m := &countingMetrics{}
	form, err := NewBuilder[string]().Metrics(m).Add(name).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	form.Submit()
	name.Set("ada")
	form.Submit()

	want := []Validity{ValidityInvalid, ValidityValid}
	if len(m.transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", m.transitions, want)
	}
	for i := range want {
		if m.transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, m.transitions[i], want[i])
		}
	}

	// build, submit, change, submit
	if m.validated["name"] != 4 {
		t.Errorf("expected 4 validations of name, got %d", m.validated["name"])
	}

	if len(m.submits) != 2 || m.submits[0] || !m.submits[1] {
		t.Errorf("submits = %v, want [false true]", m.submits)
	}
}
