package async

import (
	"sync"

	"github.com/mindtouch/dream-async/future"
)

// Alt takes a set of alternative futures racing toward the same kind of
// result and returns a single output future (spec §4.8 "First-of / alt").
// The first alternative to succeed wins: its value settles the output and
// every other alternative is cancelled. Any alternative that later
// produces a real outcome anyway (spec §5 "Cancellation propagates through
// Alt") has that outcome routed to a discard cleanup rather than
// considered — a loser, however it eventually finishes, can never change
// the winner. If every alternative fails without a winner emerging, the
// output fails with ErrAllAlternatesFailed.
func Alt[T any](alternatives []*future.Result[T]) *future.Result[T] {
	out := future.NewResult[T]()

	if len(alternatives) == 0 {
		var zero T
		out.TryReturn(zero, ErrEmptyAlternatives)
		return out
	}

	var once sync.Once
	var mu sync.Mutex
	remaining := len(alternatives)

	for _, alt := range alternatives {
		alt := alt
		alt.RegisterCleanup(func(future.Outcome[T]) {
			// A loser settled after losing the race, or after cancellation
			// was confirmed; its outcome is discarded.
		})

		continuation := func() {
			v, err := alt.Value()
			if err == nil && !alt.IsCancelled() {
				once.Do(func() {
					out.TryReturn(v, nil)
					for _, other := range alternatives {
						if other != alt {
							other.Cancel()
						}
					}
				})
				return
			}

			mu.Lock()
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				var zero T
				out.TryReturn(zero, ErrAllAlternatesFailed)
			}
		}

		if alt.CanContinueImmediately(continuation) {
			continuation()
		}
	}

	return out
}
