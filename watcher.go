package formz

import "context"

// Watcher observes an external source of field values and emits raw bytes.
// Bind one to a field with BindWatcher.
type Watcher interface {
	// Watch begins observing the source and returns a channel that emits
	// raw payloads. The channel is closed when the context is canceled or
	// the source ends.
	//
	// Implementations should emit the current value first so the field
	// leaves the pending state as soon as the source is readable.
	Watch(ctx context.Context) (<-chan []byte, error)
}
