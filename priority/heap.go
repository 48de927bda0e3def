// Package priority implements the L2 priority queue: a binary heap used by
// the timer factory's "queued" tier, and a lock-free priority queue built
// from an array of per-level lockfree FIFOs for dispatch-time priority
// routing.
package priority

import (
	"container/heap"
	"sync"
)

// Heap is a mutex-protected binary heap ordered by an injected Less. Ties
// (Less reports neither a < b) are broken in FIFO order by an internal
// monotonic sequence tag, matching spec §8's "equal priorities are FIFO
// within priority" boundary behavior.
//
// No ecosystem library in this module's dependency set offers a generic
// priority heap, so this is built directly on stdlib container/heap — the
// standard, idiomatic tool for the job rather than a hand-rolled sift.
type Heap[T any] struct {
	mu    sync.Mutex
	inner innerHeap[T]
}

type heapEntry[T any] struct {
	value T
	seq   uint64
}

type innerHeap[T any] struct {
	entries    []heapEntry[T]
	less       func(a, b T) bool
	seqCounter uint64
}

func (h innerHeap[T]) Len() int { return len(h.entries) }

func (h innerHeap[T]) Less(i, j int) bool {
	a, b := h.entries[i], h.entries[j]
	if h.less(a.value, b.value) {
		return true
	}
	if h.less(b.value, a.value) {
		return false
	}
	return a.seq < b.seq
}

func (h innerHeap[T]) Swap(i, j int) { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }

func (h *innerHeap[T]) Push(x any) { h.entries = append(h.entries, x.(heapEntry[T])) }

func (h *innerHeap[T]) Pop() any {
	old := h.entries
	n := len(old)
	e := old[n-1]
	h.entries = old[:n-1]
	return e
}

// NewHeap constructs an empty Heap ordered by less (a < b).
func NewHeap[T any](less func(a, b T) bool) *Heap[T] {
	return &Heap[T]{inner: innerHeap[T]{less: less}}
}

// Push inserts v.
func (h *Heap[T]) Push(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.inner.seqPush(v)
}

func (h *innerHeap[T]) seqPush(v T) {
	heap.Push(h, heapEntry[T]{value: v, seq: h.nextSeq()})
}

func (h *innerHeap[T]) nextSeq() uint64 {
	// sequence numbers only need to be monotonic within this heap instance,
	// and pushes are already serialized by Heap.mu.
	h.seqCounter++
	return h.seqCounter
}

// Pop removes and returns the minimum element. ok is false if the heap is
// empty.
func (h *Heap[T]) Pop() (v T, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inner.Len() == 0 {
		var zero T
		return zero, false
	}
	e := heap.Pop(&h.inner).(heapEntry[T])
	return e.value, true
}

// Peek returns the minimum element without removing it.
func (h *Heap[T]) Peek() (v T, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inner.Len() == 0 {
		var zero T
		return zero, false
	}
	return h.inner.entries[0].value, true
}

// Len returns the current element count. Unlike the lock-free structures in
// package lockfree, this is a true linearization point: Heap is mutex-backed.
func (h *Heap[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inner.Len()
}

// Remove deletes the first element matching match, if any, and reports
// whether it found one. Used by the timer factory to pull a specific timer
// out of the queued tier when it is rescheduled or cancelled.
func (h *Heap[T]) Remove(match func(T) bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.inner.entries {
		if match(e.value) {
			heap.Remove(&h.inner, i)
			return true
		}
	}
	return false
}
