package lockfree

import "go.uber.org/atomic"

// Stack is a classical Treiber stack: lock-free LIFO via a single CAS on
// head. Popped nodes are never recycled within the stack, so the structure
// is ABA-safe without a tagged pointer — the garbage collector, not manual
// reclamation, retires unlinked nodes.
type Stack[T any] struct {
	head atomic.Pointer[singleNode[T]]
}

// NewStack constructs an empty Stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

// TryPush pushes item onto the stack. It always succeeds (the stack is
// unbounded); the bool return matches the vocabulary of TryPop/TryPop-style
// siblings in this package.
func (s *Stack[T]) TryPush(item T) bool {
	n := &singleNode[T]{item: item}
	for {
		head := s.head.Load()
		n.next.Store(head)
		if s.head.CompareAndSwap(head, n) {
			return true
		}
	}
}

// TryPop removes and returns the top item. ok is false if the stack was
// empty at the moment of the attempt.
func (s *Stack[T]) TryPop() (item T, ok bool) {
	for {
		head := s.head.Load()
		if head == nil {
			var zero T
			return zero, false
		}
		next := head.next.Load()
		if s.head.CompareAndSwap(head, next) {
			return head.item, true
		}
	}
}

// IsEmpty reports whether the stack had no elements at the moment of the
// call; advisory only, see Queue.IsEmpty.
func (s *Stack[T]) IsEmpty() bool {
	return s.head.Load() == nil
}

// Count walks the stack and returns an advisory, non-linearizing element
// count; see Queue.Count.
func (s *Stack[T]) Count() int {
	n := 0
	for cur := s.head.Load(); cur != nil; cur = cur.next.Load() {
		n++
	}
	return n
}
