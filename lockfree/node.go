// Package lockfree implements the L0 concurrent containers the async
// runtime is built on: a Michael-Scott FIFO queue, a Treiber stack, a
// Hendler-Lev-Moir-Shavit work-stealing deque, and a lock-free
// consumer/producer rendezvous queue. Every structure here is accessed
// strictly through its CAS-based API; none require an external lock.
package lockfree

import "go.uber.org/atomic"

// singleNode is the immutable-shape link node shared by Queue and Stack.
// Its item may be zeroed after the node is unlinked, letting the garbage
// collector reclaim the payload independently of the node itself.
type singleNode[T any] struct {
	item T
	next atomic.Pointer[singleNode[T]]
}
