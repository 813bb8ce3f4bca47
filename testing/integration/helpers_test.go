package integration

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/formz"
)

// waitFor polls a condition until it returns true or timeout is reached.
// Uses short polling intervals for fast tests with reliable results.
func waitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
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

// nextEvent returns the next stream event or fails after timeout.
func nextEvent(t *testing.T, events <-chan formz.Event[string], timeout time.Duration) formz.Event[string] {
	t.Helper()
	select {
	case e, ok := <-events:
		if !ok {
			t.Fatal("events closed")
		}
		return e
	case <-time.After(timeout):
		t.Fatal("timeout waiting for event")
	}
	return formz.Event[string]{}
}

func startStream(t *testing.T, s *formz.StreamForm[string]) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}
