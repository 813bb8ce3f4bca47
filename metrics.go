package formz

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key form events.
type MetricsProvider interface {
	// OnValidityChange is called when the aggregate validity changes.
	OnValidityChange(from, to Validity)

	// OnFieldValidated is called each time a field's validators run.
	// Field is the key formatted with fmt.Sprint.
	OnFieldValidated(field string, valid bool, duration time.Duration)

	// OnSubmit is called after every submit with its outcome.
	OnSubmit(valid bool, duration time.Duration)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnValidityChange(_, _ Validity)                     {}
func (NoOpMetricsProvider) OnFieldValidated(_ string, _ bool, _ time.Duration) {}
func (NoOpMetricsProvider) OnSubmit(_ bool, _ time.Duration)                   {}
