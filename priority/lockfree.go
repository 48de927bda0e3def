package priority

import (
	"fmt"

	"github.com/mindtouch/dream-async/lockfree"
)

// LockFree is the lock-free priority queue of spec §4.1: an array of
// lockfree FIFOs, one per priority level 0..N. Enqueue routes by priority;
// Dequeue scans from level 0 (highest priority) upward and returns the first
// nonempty queue's head. The only failure mode is an out-of-range priority.
type LockFree[T any] struct {
	levels []*lockfree.Queue[T]
}

// NewLockFree constructs a LockFree priority queue with levels 0..n-1.
func NewLockFree[T any](n int) *LockFree[T] {
	if n <= 0 {
		panic("priority: NewLockFree requires at least one level")
	}
	lf := &LockFree[T]{levels: make([]*lockfree.Queue[T], n)}
	for i := range lf.levels {
		lf.levels[i] = lockfree.NewQueue[T]()
	}
	return lf
}

// Enqueue places v on the FIFO for the given level. It returns an error if
// level is out of range; this is the sole validated failure per spec §4.1.
func (lf *LockFree[T]) Enqueue(level int, v T) error {
	if level < 0 || level >= len(lf.levels) {
		return fmt.Errorf("priority: level %d out of range [0,%d)", level, len(lf.levels))
	}
	lf.levels[level].Enqueue(v)
	return nil
}

// Dequeue scans levels from 0 (highest priority) upward and returns the
// first available item.
func (lf *LockFree[T]) Dequeue() (v T, ok bool) {
	for _, q := range lf.levels {
		if v, ok = q.Dequeue(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Count sums the advisory counts across all levels; see lockfree.Queue.Count.
func (lf *LockFree[T]) Count() int {
	n := 0
	for _, q := range lf.levels {
		n += q.Count()
	}
	return n
}

// IsEmpty reports whether every level was empty at the moment of the call;
// advisory only.
func (lf *LockFree[T]) IsEmpty() bool {
	for _, q := range lf.levels {
		if !q.IsEmpty() {
			return false
		}
	}
	return true
}
