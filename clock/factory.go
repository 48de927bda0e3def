package clock

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/mindtouch/dream-async/metrics"
	"github.com/mindtouch/dream-async/priority"
)

// Default tier thresholds, spec §4.6.
const (
	DefaultQueueCutoff = 30 * time.Second
	DefaultQueueRescan = 25 * time.Second
)

// EnvBinder is the slice of taskenv.Env that Factory/Timer need: wrapping a
// handler so it runs with the environment acquired. taskenv.Env implements
// this structurally; clock does not import taskenv; to avoid Factory (L3)
// depending on taskenv (L4), timer handlers are invoked through this
// interface instead of a concrete *taskenv.Env field.
type EnvBinder interface {
	MakeAction(fn func()) func()
}

// Timer statuses, spec §4.6 "State machine".
const (
	timerDone uint32 = iota
	timerPending
	timerQueued
	timerLocked
)

// Timer is a single armed callback. Its status is a CAS-guarded state
// machine over {done, pending, queued, locked}; Change relocates it between
// the owning Factory's pending set and queued heap under contention-safe
// retries.
type Timer struct {
	factory *Factory
	handler func(now time.Time)
	state   any
	env     EnvBinder

	fireTime time.Time
	status   atomic.Uint32
}

// Fired reports whether the timer is done: it has already run, been
// drained, or been cancelled, and will never fire again.
func (t *Timer) Fired() bool {
	return t.status.Load() == timerDone
}

// fire invokes the handler for now, wrapped through t.env.MakeAction when an
// EnvBinder was supplied so the environment is acquired before the handler
// runs and released after (spec §4.5 "Rule": naked delegates are not
// acceptable because the environment could be torn down before the callback
// runs). A nil env runs the handler directly.
func (t *Timer) fire(now time.Time) {
	if t.env == nil {
		t.handler(now)
		return
	}
	t.env.MakeAction(func() { t.handler(now) })()
}

// Change reassigns the timer's fire time, relocating it between the
// pending set and queued heap as needed. It retries the lock/unlock CAS
// step on contention, counting retries in the factory's diagnostic counter
// (spec §4.6 "a shared retries counter is exported for diagnostics").
func (t *Timer) Change(newFire time.Time) error {
	for {
		cur := t.status.Load()
		if cur == timerDone {
			return fmt.Errorf("clock: cannot change a fired timer")
		}
		if cur == timerLocked {
			t.factory.retries.Add(1)
			continue
		}
		if !t.status.CompareAndSwap(cur, timerLocked) {
			t.factory.retries.Add(1)
			continue
		}
		t.factory.relocate(t, newFire)
		return nil
	}
}

// Cancel prevents the timer from firing. It is idempotent; the second and
// later calls are no-ops.
func (t *Timer) Cancel() {
	for {
		cur := t.status.Load()
		if cur == timerDone {
			return
		}
		if cur == timerLocked {
			t.factory.retries.Add(1)
			continue
		}
		if t.status.CompareAndSwap(cur, timerLocked) {
			t.factory.remove(t)
			t.status.Store(timerDone)
			return
		}
		t.factory.retries.Add(1)
	}
}

// Factory owns one priority queue of "queued" timers (those firing within
// QueueCutoff), one set of "pending" timers (firing later), and registers
// itself with a Clock under a unique name so every tick can (a) fire every
// due queued timer and (b) every QueueRescan promote pending timers that
// have entered the cutoff window.
type Factory struct {
	name  string
	clock *Clock
	owner any // opaque, diagnostics-only back-pointer; never dereferenced here

	queueCutoff time.Duration
	queueRescan time.Duration

	mu          sync.Mutex
	queued      *priority.Heap[*Timer]
	pending     map[*Timer]struct{}
	lastRescan  time.Time
	shutdownErr error

	retries metrics.Counter
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithQueueCutoff overrides the default 30s queued/pending boundary.
func WithQueueCutoff(d time.Duration) FactoryOption {
	return func(f *Factory) { f.queueCutoff = d }
}

// WithQueueRescan overrides the default 25s pending-promotion interval.
func WithQueueRescan(d time.Duration) FactoryOption {
	return func(f *Factory) { f.queueRescan = d }
}

// WithRetriesCounter attaches a metrics.Counter that records Change/Cancel
// CAS retries. The default is a no-op counter.
func WithRetriesCounter(c metrics.Counter) FactoryOption {
	return func(f *Factory) { f.retries = c }
}

// WithOwner records an opaque, diagnostics-only owner reference.
func WithOwner(owner any) FactoryOption {
	return func(f *Factory) { f.owner = owner }
}

// NewFactory constructs a Factory registered with c under a unique internal
// name, and starts c if it has not already been started.
func NewFactory(c *Clock, opts ...FactoryOption) *Factory {
	f := &Factory{
		clock:       c,
		queueCutoff: DefaultQueueCutoff,
		queueRescan: DefaultQueueRescan,
		queued: priority.NewHeap[*Timer](func(a, b *Timer) bool {
			return a.fireTime.Before(b.fireTime)
		}),
		pending: make(map[*Timer]struct{}),
		retries: metrics.NoopProvider{}.Counter("clock.factory.retries"),
	}
	f.name = fmt.Sprintf("clock.Factory-%p", f)
	for _, opt := range opts {
		opt(f)
	}

	c.Register(f.name, f.tick)
	c.Start()
	return f
}

// New arms a timer that fires at fireTime, running handler (wrapped by
// env.MakeAction) on the dispatch thread driving the owning Clock's tick.
func (f *Factory) New(fireTime time.Time, handler func(now time.Time), state any, env EnvBinder) *Timer {
	t := &Timer{factory: f, handler: handler, state: state, env: env, fireTime: fireTime}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placeLocked(t)
	return t
}

// NewAfter arms a timer that fires after delay.
func (f *Factory) NewAfter(delay time.Duration, handler func(now time.Time), state any, env EnvBinder) *Timer {
	return f.New(time.Now().Add(delay), handler, state, env)
}

// placeLocked must be called with f.mu held; it assigns the initial tier.
func (f *Factory) placeLocked(t *Timer) {
	if time.Until(t.fireTime) <= f.queueCutoff {
		t.status.Store(timerQueued)
		f.queued.Push(t)
	} else {
		t.status.Store(timerPending)
		f.pending[t] = struct{}{}
	}
}

// relocate removes t from its current tier, re-derives the tier for
// newFire, and stores it back, finally unlocking the status word.
func (f *Factory) relocate(t *Timer, newFire time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removeLocked(t)
	t.fireTime = newFire
	f.placeLocked(t)
}

func (f *Factory) remove(t *Timer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(t)
}

func (f *Factory) removeLocked(t *Timer) {
	delete(f.pending, t)
	f.queued.Remove(func(candidate *Timer) bool { return candidate == t })
}

// tick is registered with the owning Clock and runs on the Clock's single
// ticking goroutine. It fires every due timer and, every queueRescan,
// promotes pending timers that have entered the cutoff window.
func (f *Factory) tick(now time.Time, _ time.Duration) {
	due := f.collectDue(now)
	for _, t := range due {
		t.fire(now)
	}

	f.mu.Lock()
	rescan := f.lastRescan.IsZero() || now.Sub(f.lastRescan) >= f.queueRescan
	if rescan {
		f.lastRescan = now
	}
	f.mu.Unlock()

	if rescan {
		f.promotePending(now)
	}
}

func (f *Factory) collectDue(now time.Time) []*Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	var due []*Timer
	for {
		t, ok := f.queued.Peek()
		if !ok || t.fireTime.After(now) {
			break
		}
		f.queued.Pop()
		t.status.Store(timerDone)
		due = append(due, t)
	}
	return due
}

func (f *Factory) promotePending(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for t := range f.pending {
		if time.Until(t.fireTime) <= f.queueCutoff || !t.fireTime.After(now) {
			delete(f.pending, t)
			t.status.Store(timerQueued)
			f.queued.Push(t)
		}
	}
}

// Shutdown drains every queued timer immediately regardless of fire time
// (spec §4.6), fires every timer still in the pending tier the same way,
// deregisters from the Clock, and disposes the factory. It is idempotent.
func (f *Factory) Shutdown() {
	f.mu.Lock()
	if f.shutdownErr != nil {
		f.mu.Unlock()
		return
	}
	f.shutdownErr = fmt.Errorf("clock: factory shut down")

	var due []*Timer
	for {
		t, ok := f.queued.Pop()
		if !ok {
			break
		}
		t.status.Store(timerDone)
		due = append(due, t)
	}
	for t := range f.pending {
		delete(f.pending, t)
		t.status.Store(timerDone)
		due = append(due, t)
	}
	f.mu.Unlock()

	f.clock.Deregister(f.name)

	now := time.Now()
	for _, t := range due {
		t.fire(now)
	}
}
