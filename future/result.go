// Package future implements the L5 future primitive (spec §4.3): a
// state-machine-backed Result[T], its cleanup-routing contract, the
// suspension interface coroutines use to chain, and a small blocking-wait
// adapter for migration from synchronous code.
package future

import (
	"errors"
	"sync"

	"github.com/mindtouch/dream-async/metrics"
)

// ErrTimeout marks a cancellation caused by a construction-time timeout
// firing (spec §4.3 "Timeout").
var ErrTimeout = errors.New("future: timed out")

// ErrAlreadyFinished is returned by ConfirmCancel calls made against a
// Result that has already settled into a terminal state that does not
// accept further producer writes (spec §7 "state-machine errors").
var ErrAlreadyFinished = errors.New("future: already finished")

type state uint8

const (
	stateNew state = iota
	stateValue
	stateError
	stateCancel
	stateConfirmedCancel
	stateObservedCancel
)

func (s state) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateValue:
		return "value"
	case stateError:
		return "error"
	case stateCancel:
		return "cancel"
	case stateConfirmedCancel:
		return "confirmed-cancel"
	case stateObservedCancel:
		return "observed-cancel"
	default:
		return "unknown"
	}
}

// Outcome is what a registered cleanup callback receives: either the
// discarded real value/error, or Null set when a confirmed cancel delivered
// no outcome at all (spec §4.3 "Cleanup").
type Outcome[T any] struct {
	Value T
	Err   error
	Null  bool
}

// Result is the future primitive of spec §4.3. Every state transition is
// performed under mu; continuations, cleanup invocations, and timer
// cancellation happen after the lock is released.
type Result[T any] struct {
	mu        sync.Mutex
	st        state
	value     T
	err       error
	cancelErr error

	continuationSet bool
	continuation    func()
	hadContinuation bool

	cleanupSet bool
	cleanup    func(Outcome[T])

	onSettle func() // runs once on first settle; set via WithOnSettle (NewWithTimeout cancels its timer here)

	pending metrics.UpDownCounter
}

// defaultPendingCounter is the package-wide "future pending continuations"
// gauge (spec §4.3's observability note) used when a Result is constructed
// without WithPendingCounter. It discards by default; hosts that want the
// real count wire a metrics.Provider's UpDownCounter through that option.
var defaultPendingCounter = metrics.NewNoopProvider().UpDownCounter("future pending continuations")

// NewResult constructs an unresolved Result. Producers that already have a
// function to run should use New/NewValue/NewVoid in producer.go instead.
func NewResult[T any](opts ...Option[T]) *Result[T] {
	r := &Result[T]{st: stateNew, pending: defaultPendingCounter}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Option configures a new Result.
type Option[T any] func(*Result[T])

// WithPendingCounter points the pending-continuation gauge at counter
// instead of the package default no-op, wiring it to a real
// metrics.Provider's UpDownCounter.
func WithPendingCounter[T any](counter metrics.UpDownCounter) Option[T] {
	return func(r *Result[T]) { r.pending = counter }
}

// WithOnSettle registers a callback invoked exactly once, the first time
// the Result reaches any terminal state (Value, Error, or Cancel). The
// timeout machinery in the timeout.go constructors uses this to cancel the
// backing clock.Timer as soon as the Result settles on its own.
func WithOnSettle[T any](fn func()) Option[T] {
	return func(r *Result[T]) { r.onSettle = fn }
}

func (r *Result[T]) isResolvedLocked() bool {
	return r.st != stateNew
}

// State returns the current state name, useful for diagnostics and tests.
func (r *Result[T]) State() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.String()
}

// TryReturn delivers a real outcome. It implements the full §4.3 table for
// producer completion: a future still New settles directly; a future
// already Cancel settles directly only if no continuation has ever been
// registered for it (otherwise the outcome is routed to cleanup, since the
// continuation already fired with the cancel outcome); a future already
// ObservedCancel always routes to cleanup; a future already in a terminal
// settled state rejects the write.
func (r *Result[T]) TryReturn(value T, err error) bool {
	r.mu.Lock()
	switch r.st {
	case stateNew:
		r.value, r.err = value, err
		if err != nil {
			r.st = stateError
		} else {
			r.st = stateValue
		}
		r.mu.Unlock()
		r.runOnSettle()
		r.fireContinuation()
		return true

	case stateCancel:
		if !r.hadContinuation {
			r.value, r.err = value, err
			if err != nil {
				r.st = stateError
			} else {
				r.st = stateValue
			}
			r.mu.Unlock()
			return true
		}
		r.mu.Unlock()
		r.invokeCleanup(Outcome[T]{Value: value, Err: err})
		return true

	case stateObservedCancel:
		r.mu.Unlock()
		r.invokeCleanup(Outcome[T]{Value: value, Err: err})
		return true

	default:
		r.mu.Unlock()
		return false
	}
}

// Cancel marks the Result cancelled with no particular reason. It is only
// legal from New; later calls are idempotent and report false (spec §5
// "Multiple Cancel calls are idempotent after the first").
func (r *Result[T]) Cancel() bool {
	return r.cancelWithError(nil)
}

// CancelWithError is Cancel, additionally recording err as the reason
// surfaced by Err() once consumers observe the cancellation. The timeout
// constructors use this to inject ErrTimeout (spec §4.3 "Timeout is
// equivalent to cancel with a timeout exception").
func (r *Result[T]) CancelWithError(err error) bool {
	return r.cancelWithError(err)
}

func (r *Result[T]) cancelWithError(err error) bool {
	r.mu.Lock()
	if r.st != stateNew {
		r.mu.Unlock()
		return false
	}
	r.st = stateCancel
	r.cancelErr = err
	r.mu.Unlock()
	r.runOnSettle()
	r.fireContinuation()
	return true
}

// ConfirmCancel is the producer's acknowledgment that it stopped work after
// noticing Cancel. From Cancel it settles into ConfirmedCancel and routes a
// null outcome to any registered cleanup. From ObservedCancel the outcome
// routes to cleanup only, per §4.3's table, without changing the consumer's
// already-observed "cancel" result. Any other state reports
// ErrAlreadyFinished.
func (r *Result[T]) ConfirmCancel() error {
	r.mu.Lock()
	switch r.st {
	case stateCancel:
		r.st = stateConfirmedCancel
		r.mu.Unlock()
		r.invokeCleanup(Outcome[T]{Null: true})
		return nil
	case stateObservedCancel:
		r.mu.Unlock()
		r.invokeCleanup(Outcome[T]{Null: true})
		return nil
	default:
		r.mu.Unlock()
		return ErrAlreadyFinished
	}
}

// HasFinished reports whether the Result has settled. Reading it while the
// state is Cancel has the side effect the spec calls out explicitly: it
// locks the Result into ObservedCancel, so a later real outcome can only
// reach a registered cleanup, never retroactively change what this
// consumer already treated as a finished cancellation.
func (r *Result[T]) HasFinished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.st {
	case stateNew:
		return false
	case stateCancel:
		r.st = stateObservedCancel
		return true
	default:
		return true
	}
}

// IsCancelled reports whether the Result's outcome, as currently visible to
// a consumer, is a cancellation (including unconfirmed, confirmed, and
// observed cancel states).
func (r *Result[T]) IsCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.st {
	case stateCancel, stateConfirmedCancel, stateObservedCancel:
		return true
	default:
		return false
	}
}

// LastError returns the error component of the settled outcome without the
// value, for callers (the async package's Join combinator) that need
// to aggregate errors across a heterogeneous set of Result[T] instances.
func (r *Result[T]) LastError() error {
	_, err := r.Value()
	return err
}

// Value returns the settled value and error. For a cancelled Result, err is
// the reason passed to CancelWithError (possibly nil).
func (r *Result[T]) Value() (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st == stateCancel || r.st == stateConfirmedCancel || r.st == stateObservedCancel {
		var zero T
		return zero, r.cancelErr
	}
	return r.value, r.err
}

// CanContinueImmediately is the Suspension contract every coroutine
// suspension point uses (spec §4.3 "Suspension interface"): it returns true
// if the outcome is already present, in which case continuation is not
// stored and the caller should proceed synchronously; it returns false
// after storing continuation to be invoked exactly once, later, when the
// Result settles.
func (r *Result[T]) CanContinueImmediately(continuation func()) bool {
	r.mu.Lock()
	if r.continuationSet {
		r.mu.Unlock()
		panic("future: a continuation is already registered")
	}
	if r.isResolvedLocked() {
		r.mu.Unlock()
		return true
	}
	r.continuationSet = true
	r.hadContinuation = true
	r.continuation = continuation
	r.mu.Unlock()
	r.pending.Add(1)
	return false
}

func (r *Result[T]) fireContinuation() {
	r.mu.Lock()
	c := r.continuation
	r.continuation = nil
	r.mu.Unlock()
	if c != nil {
		r.pending.Add(-1)
		c()
	}
}

func (r *Result[T]) runOnSettle() {
	r.mu.Lock()
	fn := r.onSettle
	r.onSettle = nil
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}
