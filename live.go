package formz

import (
	"context"
	"fmt"
	"sync"
)

// Dispatcher runs a task on the goroutine that owns a Form.
type Dispatcher func(task func())

// Immediate runs tasks on the calling goroutine.
var Immediate Dispatcher = func(task func()) { task() }

// Loop is a task queue drained by one goroutine. Use its Dispatch as the
// Dispatcher of a LiveForm and of every Latest bound to it.
type Loop struct {
	tasks chan func()
}

// NewLoop creates a Loop whose queue holds up to buffer tasks.
func NewLoop(buffer int) *Loop {
	return &Loop{tasks: make(chan func(), buffer)}
}

// Dispatch queues task, blocking while the queue is full.
func (l *Loop) Dispatch(task func()) {
	l.tasks <- task
}

// Run executes queued tasks until ctx is canceled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task := <-l.tasks:
			task()
		}
	}
}

// RunPending executes tasks until the queue is empty and returns how many
// ran. Tasks queued by those tasks run too.
func (l *Loop) RunPending() int {
	n := 0
	for {
		select {
		case task := <-l.tasks:
			task()
			n++
		default:
			return n
		}
	}
}

// Latest is a single-slot value cache. Post may be called from any
// goroutine; subscribers are called through the dispatcher with the latest
// value. Posts made while a delivery is pending coalesce into it, and a
// subscriber added after a Post receives the latest value.
type Latest[T any] struct {
	dispatch Dispatcher

	mu        sync.Mutex
	value     T
	present   bool
	scheduled bool
	subs      []latestSub[T]
	nextID    uint64
}

type latestSub[T any] struct {
	id uint64
	fn func(T)
}

// NewLatest creates an empty Latest delivering through d. A nil d means
// Immediate.
func NewLatest[T any](d Dispatcher) *Latest[T] {
	if d == nil {
		d = Immediate
	}
	return &Latest[T]{dispatch: d}
}

// Post stores v and schedules a delivery unless one is already pending.
func (l *Latest[T]) Post(v T) {
	l.mu.Lock()
	l.value = v
	l.present = true
	if l.scheduled {
		l.mu.Unlock()
		return
	}
	l.scheduled = true
	l.mu.Unlock()

	l.dispatch(l.deliver)
}

// Value returns the latest value and whether one was posted.
func (l *Latest[T]) Value() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.present
}

// Subscribe registers fn. If a value was posted, fn receives it through the
// dispatcher. The returned function removes fn and is idempotent.
func (l *Latest[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, latestSub[T]{id: id, fn: fn})
	present := l.present
	l.mu.Unlock()

	if present {
		l.dispatch(func() {
			if v, ok := l.lookup(id); ok {
				fn(v)
			}
		})
	}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

// lookup returns the latest value if subscriber id is still registered.
func (l *Latest[T]) lookup(id uint64) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.subs {
		if s.id == id {
			return l.value, true
		}
	}
	var zero T
	return zero, false
}

func (l *Latest[T]) deliver() {
	l.mu.Lock()
	l.scheduled = false
	v := l.value
	subs := make([]latestSub[T], len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// LiveForm bridges Latest caches to a Form. The Form is built on Start with
// deferred input cells: a field stays pending until its cache delivers a
// value, and repeated values are dropped by the cell's equality check.
// Submission is a zero-payload Trigger.
//
// All Latest caches bound to a LiveForm should share its Dispatcher so the
// Form is only touched from one goroutine.
type LiveForm[K comparable] struct {
	builder  *Builder[K]
	dispatch Dispatcher
	submits  *Trigger
	binds    []func() (unsubscribe func())

	mu      sync.Mutex
	form    *Form[K]
	unsubs  []func()
	started bool
	closed  bool
}

// NewLive creates a LiveForm over builder, dispatching Immediate.
func NewLive[K comparable](builder *Builder[K]) *LiveForm[K] {
	return &LiveForm[K]{
		builder:  builder,
		dispatch: Immediate,
		submits:  NewTrigger(),
	}
}

// BindLatest adds a field fed by latest and returns it for further
// configuration. The field's input is a deferred cell.
func BindLatest[K comparable, V comparable](lf *LiveForm[K], key K, latest *Latest[V], validators ...Validator[V]) *Field[K, V] {
	field := NewField(key, Deferred[V](), validators...)
	lf.builder.Add(field)
	lf.binds = append(lf.binds, func() func() {
		return latest.Subscribe(field.Set)
	})
	return field
}

// Dispatcher sets the dispatcher used by Submit. Default: Immediate.
func (lf *LiveForm[K]) Dispatcher(d Dispatcher) *LiveForm[K] {
	lf.dispatch = d
	return lf
}

// Submits returns the submit trigger. Firing it submits the Form on the
// firing goroutine.
func (lf *LiveForm[K]) Submits() *Trigger {
	return lf.submits
}

// Start builds the Form and subscribes every bound cache. Callbacks run by
// the build or by replayed values may call Close. A Start that fails may be
// retried.
func (lf *LiveForm[K]) Start(ctx context.Context) (*Form[K], error) {
	lf.mu.Lock()
	if lf.started {
		lf.mu.Unlock()
		return nil, fmt.Errorf("live form: %w", ErrAlreadyStarted)
	}
	lf.started = true
	lf.mu.Unlock()

	form, err := lf.builder.Build(ctx)
	if err != nil {
		lf.mu.Lock()
		lf.started = false
		lf.mu.Unlock()
		return nil, err
	}

	lf.mu.Lock()
	lf.form = form
	closed := lf.closed
	lf.mu.Unlock()
	if closed {
		form.Dispose()
		return form, nil
	}

	if !lf.subscribe(lf.submits.Subscribe(form.Submit)) {
		return form, nil
	}
	for _, bind := range lf.binds {
		if !lf.subscribe(bind()) {
			break
		}
	}
	return form, nil
}

// subscribe records unsub, or runs it when the LiveForm was closed in the
// meantime. It reports whether the LiveForm is still open.
func (lf *LiveForm[K]) subscribe(unsub func()) bool {
	lf.mu.Lock()
	if lf.closed {
		lf.mu.Unlock()
		unsub()
		return false
	}
	lf.unsubs = append(lf.unsubs, unsub)
	lf.mu.Unlock()
	return true
}

// Submit fires the submit trigger through the dispatcher.
func (lf *LiveForm[K]) Submit() {
	lf.dispatch(lf.submits.Fire)
}

// Close unsubscribes from every cache and disposes the Form. Call it on the
// dispatcher's goroutine or after the dispatcher has stopped. Close is
// idempotent and may be called from Form callbacks.
func (lf *LiveForm[K]) Close() {
	lf.mu.Lock()
	if lf.closed {
		lf.mu.Unlock()
		return
	}
	lf.closed = true
	unsubs, form := lf.unsubs, lf.form
	lf.unsubs = nil
	lf.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	if form != nil {
		form.Dispose()
	}
}
