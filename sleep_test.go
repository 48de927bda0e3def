package async

import (
	"testing"
	"time"

	"github.com/mindtouch/dream-async/clock"
	"github.com/mindtouch/dream-async/future"
	"github.com/mindtouch/dream-async/taskenv"
)

func TestSleep_SettlesAfterTheDelay(t *testing.T) {
	c := clock.NewClock(2 * time.Millisecond)
	c.Start()
	defer c.Stop()
	factory := clock.NewFactory(c)
	env := taskenv.New(taskenv.WithFactory(factory))
	defer env.Release()

	r := Sleep(env, 20*time.Millisecond)
	if r.HasFinished() {
		t.Fatal("expected Sleep to still be pending immediately after arming")
	}

	_, err, ok := future.WaitTimeout(r, time.Second)
	if !ok {
		t.Fatal("expected Sleep to settle before the 1s timeout")
	}
	if err != nil {
		t.Fatalf("Value() err = %v, want nil", err)
	}
}
