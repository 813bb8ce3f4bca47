package formz

import (
	"bytes"
	"context"
)

// ChannelWatcher adapts a byte channel to Watcher. Consecutive identical
// payloads are forwarded once.
type ChannelWatcher struct {
	ch     <-chan []byte
	direct bool
}

// NewChannelWatcher creates a ChannelWatcher that forwards payloads through
// an internal goroutine.
func NewChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch}
}

// NewSyncChannelWatcher creates a ChannelWatcher that hands out the source
// channel itself, without filtering. Pair it with StreamForm.SyncMode for
// deterministic tests.
func NewSyncChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch, direct: true}
}

// Watch returns a channel that emits payloads from the wrapped channel.
func (w *ChannelWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if w.direct {
		return w.ch, nil
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		var last []byte
		seen := false
		for {
			select {
			case <-ctx.Done():
				return
			case data, ok := <-w.ch:
				if !ok {
					return
				}
				if seen && bytes.Equal(last, data) {
					continue
				}
				last, seen = data, true
				select {
				case out <- data:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
