package async

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mindtouch/dream-async/clock"
	"github.com/mindtouch/dream-async/coroutine"
	"github.com/mindtouch/dream-async/future"
	"github.com/mindtouch/dream-async/taskenv"
)

// These scenarios mirror the testable properties spec.md §8 calls out by
// letter; they exercise the combinators across package boundaries the way
// a real caller would, rather than one package's unit tests in isolation.
// Concurrent assertions use testify/require so a failed expectation aborts
// the goroutine immediately instead of continuing to race against state
// the rest of the test already gave up on.

const scenarioTick = 5 * time.Millisecond

func newScenarioEnv(t *testing.T, tick time.Duration) (*taskenv.Env, *clock.Factory) {
	t.Helper()
	c := clock.NewClock(tick)
	c.Start()
	t.Cleanup(c.Stop)
	factory := clock.NewFactory(c)
	env := taskenv.New(taskenv.WithFactory(factory))
	t.Cleanup(env.Release)
	return env, factory
}

// sleepThenIterator is a coroutine.Iterator that sleeps once, then settles
// the coroutine's result with the final value and ends the sequence, using
// the Result's ordinary TryReturn as the coroutine body's "return" statement.
type sleepThenIterator struct {
	sleep   *future.Result[struct{}]
	value   int
	result  *future.Result[int]
	yielded bool
}

func (s *sleepThenIterator) Next() (coroutine.Point, bool) {
	if !s.yielded {
		s.yielded = true
		return coroutine.Point{Suspension: s.sleep}, true
	}
	s.result.TryReturn(s.value, nil)
	return coroutine.Point{}, false
}

func TestScenarioA_SuccessfulCoroutineSleepsThenResolves(t *testing.T) {
	env, _ := newScenarioEnv(t, scenarioTick)

	start := time.Now()
	result := future.NewResult[int]()
	it := &sleepThenIterator{sleep: Sleep(env, 50*time.Millisecond), value: 42, result: result}
	c := coroutine.New("scenario-a", it, result, nil)

	coroutine.Invoke(c)
	require.False(t, result.HasFinished(), "coroutine must still be suspended on the sleep")

	v, err, ok := future.WaitTimeout(result, time.Second)
	elapsed := time.Since(start)
	require.True(t, ok, "expected the coroutine to finish before the 1s timeout")
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	require.LessOrEqual(t, elapsed, 50*time.Millisecond+2*scenarioTick+30*time.Millisecond)
}

// TestScenarioB models "open a resource, yield a 200ms read"
// as a single suspension point over a Result the test itself settles at
// t=200ms, with a cleanup registered to observe a late, post-cancel
// delivery (spec §8 scenario B).
func TestScenarioB_CancelRoutesLateCompletionToCleanup(t *testing.T) {
	read := future.NewResult[string]()
	resource := "handle"
	var cleanupOutcome future.Outcome[string]
	cleanupCh := make(chan struct{})
	read.RegisterCleanup(func(o future.Outcome[string]) {
		cleanupOutcome = o
		close(cleanupCh)
	})

	continuationCalls := 0
	continuationDone := make(chan struct{})
	read.CanContinueImmediately(func() {
		continuationCalls++
		close(continuationDone)
	})

	// 50ms: caller cancels.
	time.AfterFunc(50*time.Millisecond, func() {
		read.CancelWithError(errors.New("cancelled"))
	})
	// 200ms: the read completes anyway, after the cancel already observed.
	time.AfterFunc(200*time.Millisecond, func() {
		read.TryReturn(resource, nil)
	})

	select {
	case <-continuationDone:
	case <-time.After(time.Second):
		t.Fatal("expected the continuation to fire once on cancel")
	}
	require.True(t, read.IsCancelled())

	select {
	case <-cleanupCh:
	case <-time.After(time.Second):
		t.Fatal("expected the cleanup to fire once the late read completed")
	}
	require.Equal(t, resource, cleanupOutcome.Value)
	require.NoError(t, cleanupOutcome.Err)
	require.False(t, cleanupOutcome.Null)
	require.Equal(t, 1, continuationCalls, "the continuation must run exactly once")
}

func TestScenarioC_FirstOfResolvesWithTheEarliestSuccess(t *testing.T) {
	a := future.NewResult[string]()
	b := future.NewResult[string]()
	c := future.NewResult[string]()

	out := Alt([]*future.Result[string]{a, b, c})

	time.AfterFunc(30*time.Millisecond, func() { a.TryReturn("A", nil) })
	time.AfterFunc(50*time.Millisecond, func() { b.TryReturn("B", nil) })
	time.AfterFunc(70*time.Millisecond, func() { c.TryReturn("", errors.New("boom")) })

	v, err, ok := future.WaitTimeout(out, time.Second)
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, "A", v)

	// Give the 50ms and 70ms timers time to fire and discard themselves
	// against the already-cancelled losers before asserting on them.
	time.Sleep(100 * time.Millisecond)
	require.True(t, b.IsCancelled(), "the 50ms winner among losers must have been cancelled")
	require.True(t, c.IsCancelled(), "the 70ms failure must have been cancelled, not surfaced")
}

func TestScenarioD_TimeoutCancelsWithErrTimeoutAfterOneTick(t *testing.T) {
	env, factory := newScenarioEnv(t, 10*time.Millisecond)

	start := time.Now()
	r := future.NewWithTimeout[int](factory, env, 100*time.Millisecond)

	require.False(t, r.HasFinished())

	_, err, ok := future.WaitTimeout(r, time.Second)
	elapsed := time.Since(start)
	require.True(t, ok)
	require.True(t, errors.Is(err, future.ErrTimeout))
	require.True(t, r.IsCancelled())
	require.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	require.LessOrEqual(t, elapsed, 100*time.Millisecond+20*time.Millisecond)
}
