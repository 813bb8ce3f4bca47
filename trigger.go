package formz

// Trigger is a multicast change signal without payload. Fields subscribe to
// triggers to re-validate when something they depend on changes, for example
// a confirmation field listening to the password field.
type Trigger struct {
	listeners []listener
	nextID    uint64
}

type listener struct {
	id uint64
	fn func()
}

// NewTrigger creates a Trigger with no listeners.
func NewTrigger() *Trigger {
	return &Trigger{}
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is idempotent.
func (t *Trigger) Subscribe(fn func()) (unsubscribe func()) {
	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range t.listeners {
			if l.id == id {
				t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
				return
			}
		}
	}
}

// Fire invokes every listener in subscription order. Listeners added or
// removed while firing take effect on the next Fire.
func (t *Trigger) Fire() {
	if len(t.listeners) == 0 {
		return
	}
	snapshot := make([]listener, len(t.listeners))
	copy(snapshot, t.listeners)
	for _, l := range snapshot {
		l.fn()
	}
}

// Len returns the number of registered listeners.
func (t *Trigger) Len() int {
	return len(t.listeners)
}
