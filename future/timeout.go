package future

import (
	"time"

	"github.com/mindtouch/dream-async/clock"
)

// NewWithTimeout constructs a Result that cancels itself with ErrTimeout if
// it has not otherwise settled within delay (spec §4.3 "Timeout is
// equivalent to cancel with a timeout exception; the timer is cancelled if
// completion beats it"). factory schedules the backing clock.Timer against
// env, which every timer handler is wrapped through per spec §6.
func NewWithTimeout[T any](factory *clock.Factory, env clock.EnvBinder, delay time.Duration, opts ...Option[T]) *Result[T] {
	var timer *clock.Timer

	settleOpt := WithOnSettle[T](func() {
		if timer != nil {
			timer.Cancel()
		}
	})
	r := NewResult[T](append([]Option[T]{settleOpt}, opts...)...)

	timer = factory.NewAfter(delay, func(time.Time) {
		r.CancelWithError(ErrTimeout)
	}, nil, env)

	return r
}
