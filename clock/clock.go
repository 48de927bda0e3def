// Package clock implements the L3 time-keeping layer: the process-wide
// global clock (spec §6 "Global clock contract") and the per-owner two-tier
// timer factory built on top of it (spec §4.6).
package clock

import (
	"sync"
	"time"
)

// Clock is the process-wide tick source. A single goroutine drives a
// time.Ticker and invokes every registered callback in turn, once per tick,
// passing a monotonic now and the non-negative elapsed duration since the
// previous tick. Callback invocation is serialized: one callback running
// slow delays the others for that tick, but never overlaps itself.
type Clock struct {
	interval time.Duration

	mu        sync.Mutex
	callbacks map[string]func(now time.Time, elapsed time.Duration)
	order     []string

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedWG sync.WaitGroup

	last time.Time
}

// NewClock constructs a Clock that ticks every interval once started.
// Sub-second intervals are typical (spec §4.6); nothing enforces that here.
func NewClock(interval time.Duration) *Clock {
	return &Clock{
		interval:  interval,
		callbacks: make(map[string]func(now time.Time, elapsed time.Duration)),
		stopCh:    make(chan struct{}),
	}
}

// Register adds a named callback. Registering a name that already exists
// replaces its callback; Factory relies on this to be able to re-register
// after a Shutdown/New cycle under the same name.
func (c *Clock) Register(name string, fn func(now time.Time, elapsed time.Duration)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.callbacks[name]; !exists {
		c.order = append(c.order, name)
	}
	c.callbacks[name] = fn
}

// Deregister removes a named callback. It is a no-op if name was never
// registered.
func (c *Clock) Deregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.callbacks[name]; !exists {
		return
	}
	delete(c.callbacks, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Start launches the ticking goroutine. It is idempotent: only the first
// call has any effect.
func (c *Clock) Start() {
	c.startOnce.Do(func() {
		c.mu.Lock()
		c.last = time.Now()
		c.mu.Unlock()

		c.stoppedWG.Add(1)
		go c.run()
	})
}

func (c *Clock) run() {
	defer c.stoppedWG.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case now := <-ticker.C:
			c.tick(now)
		}
	}
}

func (c *Clock) tick(now time.Time) {
	c.mu.Lock()
	elapsed := now.Sub(c.last)
	if elapsed < 0 {
		elapsed = 0
	}
	c.last = now
	callbacks := make([]func(now time.Time, elapsed time.Duration), 0, len(c.order))
	for _, name := range c.order {
		callbacks = append(callbacks, c.callbacks[name])
	}
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn(now, elapsed)
	}
}

// Stop halts the ticking goroutine. It is idempotent and safe to call even
// if Start was never called.
func (c *Clock) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	c.stoppedWG.Wait()
}

var (
	defaultOnce sync.Once
	defaultC    *Clock
)

// Default returns the process-wide Clock, starting it on first use with a
// 100ms tick interval.
func Default() *Clock {
	defaultOnce.Do(func() {
		defaultC = NewClock(100 * time.Millisecond)
		defaultC.Start()
	})
	return defaultC
}
