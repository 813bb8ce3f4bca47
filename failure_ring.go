package formz

import (
	"sync"
	"time"
)

// SubmitFailure records one failed submit.
type SubmitFailure[K comparable] struct {
	At     time.Time
	Fields []FieldMessages[K]
}

// failureRing is a thread-safe ring buffer of recent failed submits.
type failureRing[K comparable] struct {
	mu      sync.RWMutex
	entries []SubmitFailure[K]
	size    int
	head    int
	count   int
}

// newFailureRing creates a ring with the given capacity.
// If size is 0, the ring is disabled.
func newFailureRing[K comparable](size int) *failureRing[K] {
	if size <= 0 {
		return nil
	}
	return &failureRing[K]{
		entries: make([]SubmitFailure[K], size),
		size:    size,
	}
}

func (r *failureRing[K]) push(entry SubmitFailure[K]) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.head] = entry
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

func (r *failureRing[K]) clear() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.entries)
	r.head = 0
	r.count = 0
}

// all returns the recorded failures, oldest first.
func (r *failureRing[K]) all() []SubmitFailure[K] {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}
	out := make([]SubmitFailure[K], r.count)
	start := (r.head - r.count + r.size) % r.size
	for i := range r.count {
		out[i] = r.entries[(start+i)%r.size]
	}
	return out
}
