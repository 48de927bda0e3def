package coroutine

import "github.com/mindtouch/dream-async/internal/gls"

// currentFrame is the goroutine-local "current coroutine" slot (spec §4.4
// "Thread identity"), the same runtime.Stack-header trick taskenv.Env uses
// for its current-environment slot.
var currentFrame = gls.NewSlot[Outer]()

// Current returns the innermost coroutine frame active on the calling
// goroutine, if any.
func Current() (Outer, bool) {
	return currentFrame.Get()
}

// Invoke drives c's iterator until it either exhausts or yields a
// suspension that cannot complete immediately (spec §4.4). On a suspension,
// Invoke returns; the engine resumes automatically, on whatever goroutine
// fires the suspension's continuation, from exactly where it paused.
func Invoke[T any](c *Coroutine[T]) {
	c.resume()
}

func (c *Coroutine[T]) resume() {
	prev, hadPrev := currentFrame.Get()
	currentFrame.Set(c.AsOuter())
	defer func() {
		if hadPrev {
			currentFrame.Set(prev)
		} else {
			currentFrame.Clear()
		}
	}()

	for {
		point, ok := c.it.Next()
		if !ok {
			c.finishMissingResult()
			return
		}

		var yieldErr error
		if point.Err != nil {
			yieldErr = point.Err()
		}
		if yieldErr != nil {
			if c.mode == CatchOnce {
				// The coroutine body is expected to have already inspected
				// the failed suspension as data (it had the Point in hand);
				// the engine's only job is to stop treating failures as
				// fatal for exactly this one yield.
				c.mode = Unwind
				continue
			}
			c.result.TryReturn(zeroOf[T](), &Trace{Frame: c, Err: yieldErr})
			return
		}

		if point.Suspension.CanContinueImmediately(c.resume) {
			continue
		}
		return
	}
}

func (c *Coroutine[T]) finishMissingResult() {
	if !c.result.HasFinished() {
		c.result.TryReturn(zeroOf[T](), &Trace{Frame: c, Err: ErrMissingResult})
	}
}

func zeroOf[T any]() T {
	var zero T
	return zero
}
