package clock

import (
	"sync"
	"testing"
	"time"
)

type fakeEnv struct{}

func (fakeEnv) MakeAction(fn func()) func() { return fn }

func TestFactory_FiresQueuedTimer(t *testing.T) {
	c := NewClock(2 * time.Millisecond)
	defer c.Stop()
	f := NewFactory(c)
	defer f.Shutdown()

	fired := make(chan time.Time, 1)
	f.NewAfter(10*time.Millisecond, func(now time.Time) {
		fired <- now
	}, nil, fakeEnv{})

	select {
	case <-fired:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timer never fired")
	}
}

func TestFactory_PendingTimerPromotedAndFires(t *testing.T) {
	c := NewClock(2 * time.Millisecond)
	defer c.Stop()
	f := NewFactory(c, WithQueueCutoff(20*time.Millisecond), WithQueueRescan(5*time.Millisecond))
	defer f.Shutdown()

	fired := make(chan struct{}, 1)
	timer := f.New(time.Now().Add(30*time.Millisecond), func(now time.Time) {
		close(fired)
	}, nil, fakeEnv{})

	f.mu.Lock()
	_, isPending := f.pending[timer]
	f.mu.Unlock()
	if !isPending {
		t.Fatal("expected a timer firing beyond cutoff to start in the pending tier")
	}

	select {
	case <-fired:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("pending timer never promoted and fired")
	}
}

func TestTimer_ChangeRelocates(t *testing.T) {
	c := NewClock(2 * time.Millisecond)
	defer c.Stop()
	f := NewFactory(c)
	defer f.Shutdown()

	var mu sync.Mutex
	var fireCount int
	timer := f.NewAfter(time.Hour, func(now time.Time) {
		mu.Lock()
		fireCount++
		mu.Unlock()
	}, nil, fakeEnv{})

	if err := timer.Change(time.Now().Add(5 * time.Millisecond)); err != nil {
		t.Fatalf("Change() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fireCount != 1 {
		t.Fatalf("fireCount = %d, want 1", fireCount)
	}
}

func TestTimer_CancelPreventsFiring(t *testing.T) {
	c := NewClock(2 * time.Millisecond)
	defer c.Stop()
	f := NewFactory(c)
	defer f.Shutdown()

	fired := false
	timer := f.NewAfter(5*time.Millisecond, func(now time.Time) {
		fired = true
	}, nil, fakeEnv{})
	timer.Cancel()

	time.Sleep(50 * time.Millisecond)
	if fired {
		t.Fatal("canceled timer fired")
	}
	if !timer.Fired() {
		t.Fatal("expected Fired() to report true (done) after Cancel")
	}
}

func TestFactory_ShutdownDrainsQueuedTimersImmediately(t *testing.T) {
	c := NewClock(time.Hour)
	defer c.Stop()
	f := NewFactory(c)

	drained := make(chan struct{}, 1)
	f.NewAfter(time.Hour, func(now time.Time) {
		close(drained)
	}, nil, fakeEnv{})

	f.Shutdown()

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not drain the queued timer")
	}
}
