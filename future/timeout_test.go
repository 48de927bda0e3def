package future

import (
	"errors"
	"testing"
	"time"

	"github.com/mindtouch/dream-async/clock"
)

type passthroughEnv struct{}

func (passthroughEnv) MakeAction(fn func()) func() { return fn }

func TestNewWithTimeout_FiresErrTimeoutWhenNeverSettled(t *testing.T) {
	c := clock.NewClock(2 * time.Millisecond)
	defer c.Stop()
	factory := clock.NewFactory(c)
	defer factory.Shutdown()

	r := NewWithTimeout[int](factory, passthroughEnv{}, 10*time.Millisecond)

	_, err := Wait(r)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Value() err = %v, want ErrTimeout", err)
	}
}

func TestNewWithTimeout_SettlingFirstCancelsTimer(t *testing.T) {
	c := clock.NewClock(2 * time.Millisecond)
	defer c.Stop()
	factory := clock.NewFactory(c)
	defer factory.Shutdown()

	r := NewWithTimeout[int](factory, passthroughEnv{}, 20*time.Millisecond)
	r.TryReturn(99, nil)

	time.Sleep(50 * time.Millisecond)

	v, err := r.Value()
	if err != nil || v != 99 {
		t.Fatalf("Value() = %v, %v; want 99, nil (timeout must not overwrite a prior real outcome)", v, err)
	}
}
