package lockfree

import "go.uber.org/atomic"

// Queue is a Michael-Scott concurrent FIFO queue: any number of goroutines
// may call Enqueue and Dequeue concurrently without external synchronization.
//
// Invariants: head is always a sentinel node; tail is either the true last
// node or one behind it (the "helping" rule below advances stragglers).
type Queue[T any] struct {
	head atomic.Pointer[singleNode[T]]
	tail atomic.Pointer[singleNode[T]]
}

// NewQueue constructs an empty Queue.
func NewQueue[T any]() *Queue[T] {
	sentinel := &singleNode[T]{}
	q := &Queue[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Enqueue appends item to the tail of the queue.
func (q *Queue[T]) Enqueue(item T) {
	n := &singleNode[T]{item: item}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue // tail moved under us, retry
		}
		if next == nil {
			// tail really is the last node: try to link the new node after it.
			if tail.next.CompareAndSwap(nil, n) {
				// success: help advance tail, whether or not this CAS wins.
				q.tail.CompareAndSwap(tail, n)
				return
			}
			continue
		}
		// tail is lagging one behind the true last node: help it catch up.
		q.tail.CompareAndSwap(tail, next)
	}
}

// Dequeue removes and returns the item at the head of the queue. ok is
// false if the queue was empty at the moment of the attempt.
func (q *Queue[T]) Dequeue() (item T, ok bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if head == tail {
			if next == nil {
				var zero T
				return zero, false
			}
			// a producer is mid-publish: help advance tail, then retry.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		val := next.item
		if q.head.CompareAndSwap(head, next) {
			var zero T
			next.item = zero // allow GC to reclaim the payload
			return val, true
		}
	}
}

// IsEmpty reports whether the queue had no elements at the moment of the
// call. Like Count, this is a snapshot, not a linearization point: the
// result may already be stale by the time the caller observes it.
func (q *Queue[T]) IsEmpty() bool {
	head := q.head.Load()
	next := head.next.Load()
	return head == q.tail.Load() && next == nil
}

// Count walks the queue and returns the number of elements present at some
// instant during the call. It is O(n) and, like IsEmpty, advisory only: no
// contract claims it is a linearization point (see spec §9 open question).
func (q *Queue[T]) Count() int {
	n := 0
	for cur := q.head.Load().next.Load(); cur != nil; cur = cur.next.Load() {
		n++
	}
	return n
}
