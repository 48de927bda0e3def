package clock

import (
	"sync"
	"testing"
	"time"
)

func TestClock_InvokesRegisteredCallbackOnEveryTick(t *testing.T) {
	c := NewClock(5 * time.Millisecond)
	defer c.Stop()

	var mu sync.Mutex
	var ticks int
	var sawPositiveElapsed bool
	c.Register("counter", func(now time.Time, elapsed time.Duration) {
		mu.Lock()
		ticks++
		if elapsed > 0 {
			sawPositiveElapsed = true
		}
		mu.Unlock()
	})
	c.Start()

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if ticks < 3 {
		t.Fatalf("ticks = %d, want at least 3 in 60ms at a 5ms interval", ticks)
	}
	if !sawPositiveElapsed {
		t.Fatal("expected at least one tick to report positive elapsed duration")
	}
}

func TestClock_DeregisterStopsInvocation(t *testing.T) {
	c := NewClock(5 * time.Millisecond)
	defer c.Stop()
	c.Start()

	var mu sync.Mutex
	calls := 0
	c.Register("tmp", func(now time.Time, elapsed time.Duration) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	time.Sleep(20 * time.Millisecond)
	c.Deregister("tmp")

	mu.Lock()
	after := calls
	mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != after {
		t.Fatalf("calls grew from %d to %d after Deregister", after, calls)
	}
}

func TestClock_StopIsIdempotent(t *testing.T) {
	c := NewClock(time.Millisecond)
	c.Start()
	c.Stop()
	c.Stop()
}
