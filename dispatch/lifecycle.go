package dispatch

import "sync"

// Lifecycle sequences an ordered list of shutdown steps so that Close runs
// them exactly once, in registration order, regardless of how many
// goroutines call it concurrently. It generalizes the teacher's
// lifecycleCoordinator (lifecycle.go), which hard-coded one Workers
// instance's cancel/drain/close sequence, into a reusable building block
// for any dispatch.Queue-backed component that needs the same
// close-once-in-order guarantee. Global, TaskEnv and the timer Factory do
// not use it; each sequences its own shutdown.
type Lifecycle struct {
	steps []func()
	once  sync.Once
}

// NewLifecycle constructs a Lifecycle that runs steps, in order, on the
// first call to Close.
func NewLifecycle(steps ...func()) *Lifecycle {
	return &Lifecycle{steps: steps}
}

// Close runs the registered steps exactly once. Subsequent calls return
// immediately.
func (l *Lifecycle) Close() {
	l.once.Do(func() {
		for _, step := range l.steps {
			if step != nil {
				step()
			}
		}
	})
}
