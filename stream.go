package formz

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultEventBuffer is the default capacity of StreamForm.Events.
const DefaultEventBuffer = 64

// EventKind identifies a StreamForm event.
type EventKind int

const (
	// EventFieldValidation carries Key and Messages.
	EventFieldValidation EventKind = iota + 1
	// EventFormValidation carries Valid.
	EventFormValidation
	// EventValidSubmit carries Values.
	EventValidSubmit
	// EventSubmitFailed carries Failures.
	EventSubmitFailed
)

// String returns the string representation of the kind.
func (k EventKind) String() string {
	switch k {
	case EventFieldValidation:
		return "field_validation"
	case EventFormValidation:
		return "form_validation"
	case EventValidSubmit:
		return "valid_submit"
	case EventSubmitFailed:
		return "submit_failed"
	default:
		return "unknown"
	}
}

// Event is one Form callback delivered as a stream element.
type Event[K comparable] struct {
	Kind     EventKind
	Key      K
	Messages Messages
	Valid    bool
	Values   []FieldValue[K]
	Failures []FieldMessages[K]
}

// source feeds one field from a channel or a Watcher.
type source[K comparable] interface {
	key() K
	open(ctx context.Context) error
	// poll returns the next update without blocking.
	poll(ctx context.Context) (apply func(), ok, closed bool)
	// pump forwards updates to out until the source ends or ctx is done.
	pump(ctx context.Context, out chan<- update[K])
}

type update[K comparable] struct {
	key   K
	apply func()
}

// StreamForm drives a Form from push sources. Values from bound channels and
// watchers, and submit signals, are applied on a single goroutine; the Form's
// callbacks come out of Events.
//
// The Form is built once every bound field has received a value, so a field
// whose source has not produced anything is never counted as valid. Submits
// that arrive before then are dropped.
type StreamForm[K comparable] struct {
	builder  *Builder[K]
	submits  <-chan struct{}
	sources  []source[K]
	debounce time.Duration
	syncMode bool
	clock    clockz.Clock
	buffer   int

	form    atomic.Pointer[Form[K]]
	ready   map[K]bool
	events  chan Event[K]
	pending map[K]func()
	order   []K

	mu        sync.Mutex
	started   bool
	stopped   bool
	installed bool
	cancel    context.CancelFunc
	ctx       context.Context
	done      chan struct{}

	// sendMu lets stop wait for in-flight sends before closing events.
	sendMu sync.RWMutex

	// procMu is held by Process; closeRequested defers a sync-mode Close
	// that arrives while Process runs.
	procMu         sync.Mutex
	closeRequested atomic.Bool
}

// NewStream creates a StreamForm over builder. The stream installs its own
// callbacks on builder and chains to any already set.
func NewStream[K comparable](builder *Builder[K], submits <-chan struct{}) *StreamForm[K] {
	return &StreamForm[K]{
		builder: builder,
		submits: submits,
		clock:   clockz.RealClock,
		buffer:  DefaultEventBuffer,
		ready:   make(map[K]bool),
		pending: make(map[K]func()),
	}
}

// BindChannel adds field to the stream's form and feeds it from values.
func BindChannel[K comparable, V any](s *StreamForm[K], field *Field[K, V], values <-chan V) *StreamForm[K] {
	s.builder.Add(field)
	s.sources = append(s.sources, &channelSource[K, V]{field: field, values: values})
	return s
}

// BindWatcher adds field to the stream's form and feeds it from watcher,
// decoding each payload with codec. Payloads that fail to decode are skipped.
func BindWatcher[K comparable, V any](s *StreamForm[K], field *Field[K, V], watcher Watcher, codec Codec) *StreamForm[K] {
	s.builder.Add(field)
	s.sources = append(s.sources, &watcherSource[K, V]{field: field, watcher: watcher, codec: codec})
	return s
}

// -----------------------------------------------------------------------------
// Chainable Configuration
// -----------------------------------------------------------------------------

// Debounce coalesces bursts of values: each field keeps only its latest value
// until no value has arrived for d. Pending values are applied before a
// submit. Default: 0 (apply immediately). Ignored in sync mode.
func (s *StreamForm[K]) Debounce(d time.Duration) *StreamForm[K] {
	s.debounce = d
	return s
}

// SyncMode disables the internal goroutines. Call Process to apply what the
// sources and the submit channel hold, making tests deterministic.
// In sync mode events that do not fit in the Events buffer are dropped and
// reported with StreamEventDropped; drain Events between calls to Process.
func (s *StreamForm[K]) SyncMode() *StreamForm[K] {
	s.syncMode = true
	return s
}

// Clock sets the clock used for debouncing.
// Use this with clockz.FakeClock for deterministic debounce testing.
func (s *StreamForm[K]) Clock(clock clockz.Clock) *StreamForm[K] {
	s.clock = clock
	return s
}

// Buffer sets the capacity of the Events channel. Default: DefaultEventBuffer.
func (s *StreamForm[K]) Buffer(n int) *StreamForm[K] {
	s.buffer = n
	return s
}

// Events returns the channel of form callbacks. It is closed when the
// stream stops. Valid after Start.
func (s *StreamForm[K]) Events() <-chan Event[K] {
	return s.events
}

// Form returns the built Form, or nil while fields are pending. The Form is
// owned by the stream goroutine; read it only in sync mode or after stop.
func (s *StreamForm[K]) Form() *Form[K] {
	return s.form.Load()
}

// Start opens every source and, unless in sync mode, begins applying values
// and submits in the background. The stream stops when ctx is canceled, when
// the submit channel closes or on Close.
func (s *StreamForm[K]) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		cancel()
		return fmt.Errorf("stream form: %w", ErrAlreadyStarted)
	}
	s.started = true
	s.stopped = false
	s.ctx = ctx
	s.cancel = cancel
	s.done = make(chan struct{})
	s.events = make(chan Event[K], s.buffer)
	s.install()
	s.mu.Unlock()

	for _, src := range s.sources {
		if err := src.open(ctx); err != nil {
			s.abort(ctx)
			return fmt.Errorf("failed to start source %v: %w", src.key(), err)
		}
	}

	capitan.Emit(ctx, StreamStarted,
		KeyFieldCount.Field(len(s.sources)),
		KeyDebounce.Field(s.debounce),
	)

	if err := s.maybeBuild(ctx); err != nil {
		s.abort(ctx)
		return err
	}

	if s.syncMode {
		return nil
	}
	go s.run(ctx)
	return nil
}

// Process applies one pending value per source and at most one submit.
// It reports whether anything was applied. Only meaningful in sync mode.
func (s *StreamForm[K]) Process(ctx context.Context) bool {
	if !s.syncMode || s.isStopped() {
		return false
	}
	s.procMu.Lock()
	defer func() {
		s.procMu.Unlock()
		if s.closeRequested.Load() {
			s.Close()
		}
	}()
	if s.isStopped() {
		return false
	}

	progressed := false
	for _, src := range s.sources {
		apply, ok, _ := src.poll(ctx)
		if !ok {
			continue
		}
		progressed = true
		s.apply(ctx, update[K]{key: src.key(), apply: apply})
	}

	select {
	case _, ok := <-s.submits:
		if !ok {
			s.stop(ctx)
			return true
		}
		s.submit(ctx)
		progressed = true
	default:
	}
	return progressed
}

// Close stops the stream, disposes the Form and closes Events.
// Close is idempotent. In sync mode a Close issued while Process runs, from
// a callback or another goroutine, takes effect when that Process returns.
func (s *StreamForm[K]) Close() {
	s.mu.Lock()
	cancel, ctx := s.cancel, s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return
	}
	if !s.syncMode {
		cancel()
		return
	}
	if !s.procMu.TryLock() {
		s.closeRequested.Store(true)
		return
	}
	defer s.procMu.Unlock()
	s.closeRequested.Store(false)
	s.stop(ctx)
}

// install chains the stream's event emitters onto the builder callbacks.
func (s *StreamForm[K]) install() {
	if s.installed {
		return
	}
	s.installed = true
	b := s.builder
	onField, onForm := b.onFieldValidation, b.onFormValidation
	onValid, onFailed := b.onValidSubmit, b.onSubmitFailed

	b.OnFieldValidationChange(func(key K, msgs Messages) {
		if onField != nil {
			onField(key, msgs)
		}
		s.send(Event[K]{Kind: EventFieldValidation, Key: key, Messages: msgs})
	})
	b.OnFormValidationChange(func(valid bool) {
		if onForm != nil {
			onForm(valid)
		}
		s.send(Event[K]{Kind: EventFormValidation, Valid: valid})
	})
	b.OnValidSubmit(func(values []FieldValue[K]) {
		if onValid != nil {
			onValid(values)
		}
		s.send(Event[K]{Kind: EventValidSubmit, Valid: true, Values: values})
	})
	b.OnSubmitFailed(func(failures []FieldMessages[K]) {
		if onFailed != nil {
			onFailed(failures)
		}
		s.send(Event[K]{Kind: EventSubmitFailed, Failures: failures})
	})
}

// send delivers e unless the stream has stopped. Async sends block until a
// reader takes the event or the stream stops; sync-mode sends never block.
func (s *StreamForm[K]) send(e Event[K]) {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()

	select {
	case <-s.done:
		return
	default:
	}

	if s.syncMode {
		select {
		case s.events <- e:
		default:
			capitan.Emit(s.ctx, StreamEventDropped,
				KeyEvent.Field(e.Kind.String()),
				KeyFieldCount.Field(len(s.sources)),
			)
		}
		return
	}

	select {
	case s.events <- e:
	case <-s.done:
	case <-s.ctx.Done():
	}
}

// apply writes one value. Before the Form exists the value lands in the
// field's cell and marks the field ready.
func (s *StreamForm[K]) apply(ctx context.Context, u update[K]) {
	u.apply()
	if s.form.Load() != nil {
		return
	}
	s.ready[u.key] = true
	if err := s.maybeBuild(ctx); err != nil {
		capitan.Emit(ctx, StreamStopped, KeyError.Field(err.Error()))
		s.stop(ctx)
	}
}

func (s *StreamForm[K]) maybeBuild(ctx context.Context) error {
	if s.form.Load() != nil {
		return nil
	}
	for _, src := range s.sources {
		if !s.ready[src.key()] {
			return nil
		}
	}
	form, err := s.builder.Build(ctx)
	if err != nil {
		return err
	}
	s.form.Store(form)
	if s.isStopped() {
		// Closed by a callback while building.
		form.Dispose()
	}
	return nil
}

func (s *StreamForm[K]) submit(ctx context.Context) {
	s.flush(ctx)
	form := s.form.Load()
	if form == nil {
		capitan.Emit(ctx, StreamSubmitDropped,
			KeyFieldCount.Field(len(s.sources)-len(s.ready)),
		)
		return
	}
	form.Submit()
}

// hold keeps the latest update per field until the debounce timer fires.
func (s *StreamForm[K]) hold(u update[K]) {
	if _, ok := s.pending[u.key]; !ok {
		s.order = append(s.order, u.key)
	}
	s.pending[u.key] = u.apply
}

func (s *StreamForm[K]) flush(ctx context.Context) {
	for _, key := range s.order {
		s.apply(ctx, update[K]{key: key, apply: s.pending[key]})
	}
	clear(s.pending)
	s.order = s.order[:0]
}

func (s *StreamForm[K]) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *StreamForm[K]) stop(ctx context.Context) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if form := s.form.Load(); form != nil {
		form.Dispose()
	}
	close(done)
	s.sendMu.Lock()
	close(s.events)
	s.sendMu.Unlock()
	if cancel != nil {
		cancel()
	}
	capitan.Emit(ctx, StreamStopped, KeyFieldCount.Field(len(s.sources)))
}

// abort undoes a failed Start: sources are canceled, Events is closed and
// Start may be called again.
func (s *StreamForm[K]) abort(ctx context.Context) {
	s.stop(context.WithoutCancel(ctx))
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
}

// run applies updates and submits until the stream stops.
func (s *StreamForm[K]) run(ctx context.Context) {
	updates := make(chan update[K])
	var wg sync.WaitGroup
	wg.Add(len(s.sources))
	for _, src := range s.sources {
		go func(src source[K]) {
			defer wg.Done()
			src.pump(ctx, updates)
		}(src)
	}

	defer func() {
		if s.cancel != nil {
			s.cancel()
		}
		wg.Wait()
		s.stop(context.WithoutCancel(ctx))
	}()

	var (
		timer  clockz.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	submits := s.submits
	for {
		select {
		case <-ctx.Done():
			return

		case u := <-updates:
			if s.debounce <= 0 {
				s.apply(ctx, u)
				continue
			}
			s.hold(u)
			if timer == nil {
				timer = s.clock.NewTimer(s.debounce)
				timerC = timer.C()
			} else {
				if !timer.Stop() {
					select {
					case <-timerC:
					default:
					}
				}
				timer.Reset(s.debounce)
			}

		case <-timerC:
			s.flush(ctx)

		case _, ok := <-submits:
			if !ok {
				s.flush(ctx)
				return
			}
			s.submit(ctx)
		}

		if s.isStopped() {
			return
		}
	}
}

type channelSource[K comparable, V any] struct {
	field  *Field[K, V]
	values <-chan V
}

func (c *channelSource[K, V]) key() K { return c.field.Key() }

func (c *channelSource[K, V]) open(context.Context) error { return nil }

func (c *channelSource[K, V]) poll(context.Context) (func(), bool, bool) {
	select {
	case v, ok := <-c.values:
		if !ok {
			return nil, false, true
		}
		return func() { c.field.Set(v) }, true, false
	default:
		return nil, false, false
	}
}

func (c *channelSource[K, V]) pump(ctx context.Context, out chan<- update[K]) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-c.values:
			if !ok {
				return
			}
			select {
			case out <- update[K]{key: c.key(), apply: func() { c.field.Set(v) }}:
			case <-ctx.Done():
				return
			}
		}
	}
}

type watcherSource[K comparable, V any] struct {
	field   *Field[K, V]
	watcher Watcher
	codec   Codec
	raw     <-chan []byte
}

func (w *watcherSource[K, V]) key() K { return w.field.Key() }

func (w *watcherSource[K, V]) open(ctx context.Context) error {
	raw, err := w.watcher.Watch(ctx)
	if err != nil {
		return err
	}
	w.raw = raw
	return nil
}

func (w *watcherSource[K, V]) decode(ctx context.Context, data []byte) (func(), bool) {
	var v V
	if err := w.codec.Unmarshal(data, &v); err != nil {
		capitan.Emit(ctx, SourceDecodeFailed,
			KeyField.Field(fmt.Sprint(w.key())),
			KeyError.Field(err.Error()),
		)
		return nil, false
	}
	return func() { w.field.Set(v) }, true
}

func (w *watcherSource[K, V]) poll(ctx context.Context) (func(), bool, bool) {
	select {
	case data, ok := <-w.raw:
		if !ok {
			return nil, false, true
		}
		apply, ok := w.decode(ctx, data)
		return apply, ok, false
	default:
		return nil, false, false
	}
}

func (w *watcherSource[K, V]) pump(ctx context.Context, out chan<- update[K]) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-w.raw:
			if !ok {
				return
			}
			apply, ok := w.decode(ctx, data)
			if !ok {
				continue
			}
			select {
			case out <- update[K]{key: w.key(), apply: apply}:
			case <-ctx.Done():
				return
			}
		}
	}
}
