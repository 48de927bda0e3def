package async

import (
	"context"
	"sync"

	"go.uber.org/multierr"

	"github.com/mindtouch/dream-async/future"
)

// errSource is satisfied by every *future.Result[T] (see LastError); Join
// type-asserts down to it member by member so it can aggregate errors
// across a slice of heterogeneous Suspension values without needing its own
// type parameter.
type errSource interface {
	LastError() error
}

// Join resolves once every member has resolved, regardless of outcome
// (spec §4.8). Each member is chained through
// Suspension.CanContinueImmediately, so Join never blocks a thread waiting
// on its members; errors from members that carry one are aggregated with
// multierr.Append. Cancelling ctx cancels the returned Result early but,
// per spec §5, does not propagate a cancellation down to the members
// themselves — Join's own cancellation semantics, not Alt's.
func Join(ctx context.Context, results ...future.Suspension) *future.Result[struct{}] {
	settled := make(chan struct{})
	r := future.NewResult[struct{}](future.WithOnSettle[struct{}](func() { close(settled) }))

	if len(results) == 0 {
		r.TryReturn(struct{}{}, nil)
		return r
	}
	for _, member := range results {
		if member == nil {
			r.TryReturn(struct{}{}, ErrNilArgument)
			return r
		}
	}

	var mu sync.Mutex
	remaining := len(results)
	var errs error

	for _, member := range results {
		member := member
		continuation := func() {
			mu.Lock()
			if es, ok := member.(errSource); ok {
				if err := es.LastError(); err != nil {
					errs = multierr.Append(errs, err)
				}
			}
			remaining--
			done := remaining == 0
			finalErr := errs
			mu.Unlock()
			if done {
				r.TryReturn(struct{}{}, finalErr)
			}
		}
		if member.CanContinueImmediately(continuation) {
			continuation()
		}
	}

	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				r.CancelWithError(ctx.Err())
			case <-settled:
			}
		}()
	}

	return r
}
