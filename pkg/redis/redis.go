// Package redis provides a formz.Watcher that feeds a field from one field
// of a Redis hash, using keyspace notifications. It lets several sessions
// share a draft: each writes its input with HSET and every watching form
// receives the value.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Watcher watches one field of a Redis hash. Requires keyspace
// notifications for hash commands:
//
//	CONFIG SET notify-keyspace-events Kh
type Watcher struct {
	client redis.UniversalClient
	key    string
	field  string
	db     int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDB sets the database index used in the notification channel name.
// It must match the database the client is connected to. Default: 0.
func WithDB(db int) Option {
	return func(w *Watcher) {
		w.db = db
	}
}

// New creates a Watcher for field of the hash at key.
func New(client redis.UniversalClient, key, field string, opts ...Option) *Watcher {
	w := &Watcher{
		client: client,
		key:    key,
		field:  field,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// channel returns the keyspace notification channel for the hash.
func (w *Watcher) channel() string {
	return fmt.Sprintf("__keyspace@%d__:%s", w.db, w.key)
}

// Watch emits the current value of the hash field, if set, and the new
// value after every hash write. Writes that leave the field unchanged are
// not filtered here; the field's input cell drops them.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	pubsub := w.client.Subscribe(ctx, w.channel())

	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to keyspace notifications: %w", err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer pubsub.Close()

		send := func() bool {
			val, err := w.client.HGet(ctx, w.key, w.field).Bytes()
			if err != nil {
				// Missing field or transient error: wait for the next write.
				return !errors.Is(err, context.Canceled)
			}
			select {
			case out <- val:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send() {
			return
		}

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				switch msg.Payload {
				case "hset", "hsetnx", "hincrby", "hincrbyfloat":
					if !send() {
						return
					}
				}
			}
		}
	}()

	return out, nil
}
