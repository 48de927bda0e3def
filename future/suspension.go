package future

// Suspension is the contract a coroutine engine suspends on (spec §4.3
// "Suspension interface"): CanContinueImmediately reports whether the
// outcome is already present — true means proceed synchronously without
// storing anything; false means continuation has been stored and will run
// exactly once when the outcome becomes available.
//
// *Result[T] satisfies this interface for every T, which is how the
// coroutine engine (package coroutine) drives a sequence of heterogeneous
// futures through one loop.
type Suspension interface {
	CanContinueImmediately(continuation func()) bool
}

var _ Suspension = (*Result[struct{}])(nil)
