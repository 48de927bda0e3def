// Package coroutine implements the L6 coroutine engine (spec §4.4): a
// suspension-driven iterator driver with exception-propagation modes and a
// coroutine-frame-aware stack trace, on top of the future package's
// Suspension contract. Go has no native generators, so a coroutine's lazy
// sequence is any hand-written Iterator implementation; the engine supplies
// the suspend/resume loop and thread-identity bookkeeping around it.
package coroutine

import (
	"errors"

	"github.com/mindtouch/dream-async/future"
)

// ErrMissingResult is synthesized when a coroutine's iterator is exhausted
// without its future ever being settled (spec §4.4 "Result discipline",
// §7 "Missing-result coroutine exit").
var ErrMissingResult = errors.New("coroutine: exited without settling its result")

// ExceptionMode selects how a coroutine reacts to an error surfaced by a
// yielded suspension point (spec §4.4 "Exception propagation").
type ExceptionMode int

const (
	// Unwind treats the error as thrown at the yield site: the engine stops
	// advancing and fails the coroutine's future with it. This is the
	// default.
	Unwind ExceptionMode = iota
	// CatchOnce lets the coroutine inspect the failed suspension as data
	// instead of unwinding. The engine reverts to Unwind immediately after
	// honoring one CatchOnce, so the next failure unwinds normally.
	CatchOnce
)

// Point is one element of a coroutine's lazy sequence: a suspension paired
// with an accessor for its current error, if any (GLOSSARY "Suspension
// point" — "can continue now?" plus "what is the current error?").
type Point struct {
	Suspension future.Suspension
	Err        func() error
}

// Iterator is a restartable lazy sequence of Points, pulled one at a time
// by the engine. Next returns false once the sequence is exhausted.
type Iterator interface {
	Next() (Point, bool)
}

// Outer is the stack-trace link a coroutine exposes to whatever coroutine
// it nests inside (spec §4.4 "Stack trace"). Only *Coroutine[T] implements
// it; callers obtain one via AsOuter and pass it to New for a nested
// coroutine.
type Outer interface {
	label() string
	outer() (Outer, bool)
}

// Coroutine is the engine's unit of work: an Iterator, an outer coroutine
// link for stack traces, the future it ultimately settles, and its current
// exception-handling mode.
type Coroutine[T any] struct {
	name string
	it   Iterator

	outerFrame Outer
	hasOuter   bool

	result *future.Result[T]
	mode   ExceptionMode
}

// New constructs a Coroutine bound to it and result. outer may be nil for a
// top-level coroutine with no enclosing invocation.
func New[T any](name string, it Iterator, result *future.Result[T], outer Outer) *Coroutine[T] {
	return &Coroutine[T]{
		name:       name,
		it:         it,
		result:     result,
		outerFrame: outer,
		hasOuter:   outer != nil,
		mode:       Unwind,
	}
}

func (c *Coroutine[T]) label() string { return c.name }

func (c *Coroutine[T]) outer() (Outer, bool) { return c.outerFrame, c.hasOuter }

// AsOuter exposes c as another coroutine's outer link.
func (c *Coroutine[T]) AsOuter() Outer { return c }

// CatchOnce switches the coroutine into catch-once mode for its next
// yielded failure (spec §4.4 "is how a coroutine expresses 'I want to
// handle this one failure locally'").
func (c *Coroutine[T]) CatchOnce() { c.mode = CatchOnce }

// Result returns the future this coroutine settles.
func (c *Coroutine[T]) Result() *future.Result[T] { return c.result }
