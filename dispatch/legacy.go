package dispatch

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Legacy is the unbounded thread-per-item dispatch queue named as the
// alternative to Elastic by the `threadpool` configuration key (spec §6).
// It spawns a fresh goroutine for every submission rather than maintaining
// a bounded worker set; there is no stealing, no local affinity, and no
// parallelism ceiling. It exists for hosts that need to migrate off an
// older unbounded thread-pool model without adopting work-stealing
// semantics immediately.
type Legacy struct {
	logger  zerolog.Logger
	stopped atomic.Bool
	wg      sync.WaitGroup
}

// LegacyOption configures a Legacy queue.
type LegacyOption func(*Legacy)

// WithLegacyLogger attaches a logger for panics recovered from work items.
func WithLegacyLogger(l zerolog.Logger) LegacyOption {
	return func(q *Legacy) { q.logger = l }
}

// NewLegacy constructs a Legacy dispatch queue.
func NewLegacy(opts ...LegacyOption) *Legacy {
	q := &Legacy{logger: zerolog.New(io.Discard)}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// QueueWorkItem spawns a new goroutine to run action. It returns false,
// without spawning, once the queue has been closed.
func (q *Legacy) QueueWorkItem(action func()) bool {
	if q.stopped.Load() {
		return false
	}
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				q.logger.Error().Interface("panic", r).Msg("dispatch: work item panicked")
			}
		}()
		action()
	}()
	return true
}

// Close stops accepting new work and waits for every in-flight goroutine
// spawned so far to finish. Unlike Elastic, there is no queue at all:
// every accepted action is already running on its own
// goroutine the instant QueueWorkItem returns.
func (q *Legacy) Close() {
	if q.stopped.Swap(true) {
		return
	}
	q.wg.Wait()
}
