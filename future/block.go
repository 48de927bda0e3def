package future

import (
	"time"

	"github.com/mindtouch/dream-async/dispatch"
	"github.com/mindtouch/dream-async/pool"
)

// eventPool is the small free-list of auto-reset events (spec §4.3 "create,
// or borrow from a small free-list"), repurposing the teacher's pool.Dynamic
// (a sync.Pool wrapper) instead of the worker-executor objects it was
// originally built to recycle.
var eventPool = pool.NewDynamic(func() interface{} {
	return make(chan struct{}, 1)
})

// Block is a borrowed auto-reset event: Signal wakes exactly one Wait,
// Release returns the channel to the free list for reuse.
type Block struct {
	ch chan struct{}
}

// NewBlock borrows an event from the free list, draining any stale signal
// left over from a prior user.
func NewBlock() *Block {
	ch := eventPool.Get().(chan struct{})
	select {
	case <-ch:
	default:
	}
	return &Block{ch: ch}
}

// Release returns the event to the free list. The caller must not use b
// after calling Release.
func (b *Block) Release() {
	eventPool.Put(b.ch)
}

// Signal wakes one waiter. Extra signals before a matching Wait coalesce,
// matching an auto-reset event's one-shot semantics.
func (b *Block) Signal() {
	select {
	case b.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until Signal is called. If the calling goroutine is a
// dispatch.Elastic worker, its own queued local work is evicted to the
// shared queue first, so parking here cannot starve work this same thread
// would otherwise have run (spec §5's deadlock-avoidance rule).
func (b *Block) Wait() {
	dispatch.Default().EvictLocalWork()
	<-b.ch
}

// WaitTimeout is Wait bounded by a deadline; it reports whether Signal
// arrived before timeout elapsed.
func (b *Block) WaitTimeout(timeout time.Duration) bool {
	dispatch.Default().EvictLocalWork()
	select {
	case <-b.ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Wait blocks the calling goroutine until r settles, then returns its
// outcome. It exists for migrating synchronous call sites onto futures
// incrementally; new code should prefer suspending via Suspension instead
// of blocking a thread.
func Wait[T any](r *Result[T]) (T, error) {
	b := NewBlock()
	defer b.Release()
	if !r.CanContinueImmediately(b.Signal) {
		b.Wait()
	}
	return r.Value()
}

// WaitTimeout is Wait bounded by a deadline. ok is false if timeout elapsed
// before r settled; the Result remains usable afterward (it is not
// cancelled as a side effect of a timed-out wait).
//
// The Suspension contract has no way to unregister a stored continuation,
// so on a timeout the borrowed event is deliberately not returned to the
// free list: the continuation callback still holds it and will signal it
// exactly once when r eventually settles. Returning it early would let a
// later borrower reuse the channel out from under that pending signal.
func WaitTimeout[T any](r *Result[T], timeout time.Duration) (value T, err error, ok bool) {
	b := NewBlock()
	if r.CanContinueImmediately(b.Signal) {
		b.Release()
		value, err = r.Value()
		return value, err, true
	}
	if !b.WaitTimeout(timeout) {
		return value, err, false
	}
	b.Release()
	value, err = r.Value()
	return value, err, true
}
