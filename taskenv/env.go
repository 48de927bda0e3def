// Package taskenv implements the L4 execution environment (spec §4.5): a
// keyed, clonable, refcounted bag of ambient state bound to a dispatch queue
// and a timer factory, plus the invocation helpers that guarantee the
// environment outlives any work scheduled against it.
package taskenv

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/mindtouch/dream-async/clock"
	"github.com/mindtouch/dream-async/dispatch"
	"github.com/mindtouch/dream-async/internal/gls"
)

// Lifespan is the contract host state stored in an Env implements when it
// needs to participate in Clone or Dispose (spec §6 "Task-lifespan
// interface").
type Lifespan interface {
	// Clone returns a deep copy of the receiver, called when the owning Env
	// is cloned for a new task.
	Clone() any
	// Dispose releases any resources held, called when the last reference
	// to the owning Env is released.
	Dispose() error
}

// Env is the execution environment: a mutex-protected map keyed by either a
// typed key or a string, a bound dispatch.Queue, a bound *clock.Factory, and
// a reference count. Acquire/Release pairs gate disposal: the state entries
// implementing Lifespan are disposed exactly when the count reaches zero.
type Env struct {
	mu     sync.Mutex
	values map[any]any

	queue   dispatch.Queue
	factory *clock.Factory
	logger  zerolog.Logger

	refcount atomic.Int64
	disposed bool
}

// Option configures a new Env.
type Option func(*Env)

// WithQueue binds a dispatch.Queue used by Invoke. Without this option,
// Invoke runs inline.
func WithQueue(q dispatch.Queue) Option {
	return func(e *Env) { e.queue = q }
}

// WithFactory binds a *clock.Factory, used by timeouts and Sleep.
func WithFactory(f *clock.Factory) Option {
	return func(e *Env) { e.factory = f }
}

// WithLogger attaches a logger for unhandled exceptions and dispose
// failures. The default is a disabled logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Env) { e.logger = l }
}

// New constructs an Env with an initial reference count of one. The caller
// owns that first reference and must Release it.
func New(opts ...Option) *Env {
	e := &Env{
		values: make(map[any]any),
		logger: zerolog.New(io.Discard),
	}
	e.refcount.Store(1)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Queue returns the bound dispatch.Queue, or nil if none was bound.
func (e *Env) Queue() dispatch.Queue { return e.queue }

// Factory returns the bound *clock.Factory, or nil if none was bound.
func (e *Env) Factory() *clock.Factory { return e.factory }

// Get looks up a value by key (either a typed key or a string, spec §3).
func (e *Env) Get(key any) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.values[key]
	return v, ok
}

// Set stores a value by key, overwriting any prior entry for that key.
func (e *Env) Set(key, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.values[key] = value
}

// Acquire increments the reference count. It panics if called after the
// Env has already disposed (refcount previously reached zero) — resurrecting
// a disposed environment is a programming defect (spec §7 "state-machine
// errors").
func (e *Env) Acquire() {
	if e.refcount.Inc() <= 1 {
		panic("taskenv: Acquire called on an already-disposed Env")
	}
}

// Release decrements the reference count, disposing every Lifespan-bearing
// state entry when it reaches zero. Dispose errors are aggregated with
// multierr and logged; Release itself never returns an error, matching the
// teacher's "fire and log" shutdown style.
func (e *Env) Release() {
	remaining := e.refcount.Dec()
	if remaining > 0 {
		return
	}
	if remaining < 0 {
		panic("taskenv: Release called more times than Acquire")
	}
	e.dispose()
}

func (e *Env) dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	values := e.values
	e.mu.Unlock()

	var err error
	for key, v := range values {
		ls, ok := v.(Lifespan)
		if !ok {
			continue
		}
		if dErr := ls.Dispose(); dErr != nil {
			err = multierr.Append(err, fmt.Errorf("taskenv: dispose %v: %w", key, dErr))
		}
	}
	if err != nil {
		e.logger.Error().Err(err).Msg("taskenv: Env disposal reported errors")
	}
}

// Clone creates a new Env with its own reference count of one. State
// entries implementing Lifespan are deep-copied via Clone(); all other
// entries are shallow-copied by assignment. The bound queue and factory
// carry over unchanged.
func (e *Env) Clone() *Env {
	e.mu.Lock()
	defer e.mu.Unlock()

	clone := &Env{
		values:  make(map[any]any, len(e.values)),
		queue:   e.queue,
		factory: e.factory,
		logger:  e.logger,
	}
	clone.refcount.Store(1)
	for key, v := range e.values {
		if ls, ok := v.(Lifespan); ok {
			clone.values[key] = ls.Clone()
			continue
		}
		clone.values[key] = v
	}
	return clone
}

// InvokeNow runs fn synchronously on the calling goroutine, saving and
// restoring the goroutine-local "current environment" slot around the call,
// and recovering (and logging) any panic rather than propagating it.
func (e *Env) InvokeNow(fn func()) {
	prev, hadPrev := currentEnv.Get()
	currentEnv.Set(e)
	defer func() {
		if hadPrev {
			currentEnv.Set(prev)
		} else {
			currentEnv.Clear()
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("taskenv: InvokeNow recovered a panic")
		}
	}()
	fn()
}

// Invoke routes fn through the bound dispatch.Queue (or runs it inline if
// none is bound), releasing one acquisition on completion. Callers must
// Acquire before calling Invoke; Invoke always consumes exactly one
// reference, whether or not the queue accepted the work.
func (e *Env) Invoke(fn func()) {
	action := func() {
		defer e.Release()
		e.InvokeNow(fn)
	}
	if e.queue == nil {
		action()
		return
	}
	if !e.queue.QueueWorkItem(action) {
		// Queue closed: still discharge the acquisition and run inline so a
		// caller that already Acquired never leaks a reference.
		action()
	}
}

// MakeAction acquires the environment now and returns a closure that
// releases it on first invocation, so the closure is safe to hand to any
// scheduler without racing the environment's teardown (spec §4.5 "Rule").
// Calling the returned func more than once after the first call is a no-op.
func (e *Env) MakeAction(fn func()) func() {
	e.Acquire()
	var once sync.Once
	return func() {
		once.Do(func() {
			defer e.Release()
			e.InvokeNow(fn)
		})
	}
}

// currentEnv is the goroutine-local "current environment" slot shared by
// InvokeNow; Current reads it for code that needs the ambient environment
// without having it threaded through as a parameter.
var currentEnv = gls.NewSlot[*Env]()

// Current returns the Env bound to the calling goroutine by the innermost
// enclosing InvokeNow, if any.
func Current() (*Env, bool) {
	return currentEnv.Get()
}
