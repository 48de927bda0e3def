package coroutine

import (
	"errors"
	"strings"
	"testing"

	"github.com/mindtouch/dream-async/future"
)

// sliceIterator replays a fixed sequence of Points, the simplest possible
// hand-written Iterator for tests.
type sliceIterator struct {
	points []Point
	i      int
}

func (s *sliceIterator) Next() (Point, bool) {
	if s.i >= len(s.points) {
		return Point{}, false
	}
	p := s.points[s.i]
	s.i++
	return p, true
}

func settledPoint() Point {
	r := future.NewResult[int]()
	r.TryReturn(0, nil)
	return Point{Suspension: r}
}

func TestInvoke_DoesNotOverwriteAResultTheBodyAlreadySettled(t *testing.T) {
	result := future.NewResult[int]()
	result.TryReturn(42, nil)
	it := &sliceIterator{points: []Point{settledPoint(), settledPoint()}}
	c := New("root", it, result, nil)

	Invoke(c)

	v, err := result.Value()
	if err != nil || v != 42 {
		t.Fatalf("Value() = %v, %v; want 42, nil (missing-result check must not clobber an already-settled result)", v, err)
	}
}

func TestInvoke_SuspendsAndResumesOnLaterSuspension(t *testing.T) {
	pending := future.NewResult[int]()
	it := &sliceIterator{points: []Point{{Suspension: pending}}}
	result := future.NewResult[int]()
	c := New("root", it, result, nil)

	Invoke(c)
	if result.HasFinished() {
		t.Fatal("expected the coroutine to still be suspended")
	}

	pending.TryReturn(1, nil)
	if !result.HasFinished() {
		t.Fatal("expected resuming past the suspension to finish the coroutine loop")
	}
}

func TestInvoke_ExhaustedWithoutSettlingReportsMissingResult(t *testing.T) {
	result := future.NewResult[int]()
	it := &sliceIterator{points: nil}
	c := New("root", it, result, nil)

	Invoke(c)

	_, err := result.Value()
	if err == nil {
		t.Fatal("expected ErrMissingResult")
	}
	if !errors.Is(err, ErrMissingResult) {
		t.Fatalf("err = %v, want ErrMissingResult", err)
	}
}

func TestInvoke_UnwindFailsFutureOnYieldedError(t *testing.T) {
	boom := errors.New("boom")
	it := &sliceIterator{points: []Point{{
		Suspension: future.NewResult[int](),
		Err:        func() error { return boom },
	}}}
	result := future.NewResult[int]()
	c := New("root", it, result, nil)

	Invoke(c)

	_, err := result.Value()
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapping %v", err, boom)
	}
}

func TestInvoke_CatchOnceSkipsOneFailureThenUnwindsNext(t *testing.T) {
	boom1 := errors.New("first")
	boom2 := errors.New("second")
	it := &sliceIterator{points: []Point{
		{Suspension: future.NewResult[int](), Err: func() error { return boom1 }},
		{Suspension: future.NewResult[int](), Err: func() error { return boom2 }},
	}}
	result := future.NewResult[int]()
	c := New("root", it, result, nil)
	c.CatchOnce()

	Invoke(c)

	_, err := result.Value()
	if !errors.Is(err, boom2) {
		t.Fatalf("err = %v, want wrapping %v (first failure should have been caught)", err, boom2)
	}
}

func TestTrace_FramesWalksOuterChain(t *testing.T) {
	outerResult := future.NewResult[int]()
	outerIt := &sliceIterator{}
	outerC := New("outer", outerIt, outerResult, nil)

	boom := errors.New("inner failure")
	innerIt := &sliceIterator{points: []Point{{
		Suspension: future.NewResult[int](),
		Err:        func() error { return boom },
	}}}
	innerResult := future.NewResult[int]()
	innerC := New("inner", innerIt, innerResult, outerC.AsOuter())

	Invoke(innerC)

	_, err := innerResult.Value()
	frame, ok := Frames(err)
	if !ok {
		t.Fatal("expected a coroutine frame on the error")
	}
	if frame.label() != "inner" {
		t.Fatalf("frame.label() = %q, want inner", frame.label())
	}
	outerFrame, hasOuter := frame.outer()
	if !hasOuter || outerFrame.label() != "outer" {
		t.Fatal("expected the inner frame's outer chain to reach the outer coroutine")
	}

	var tr *Trace
	if !errors.As(err, &tr) {
		t.Fatal("expected err to be a *Trace")
	}
	if !strings.Contains(tr.framesString(), "inner <- outer") {
		t.Fatalf("framesString() = %q, want it to contain %q", tr.framesString(), "inner <- outer")
	}
}
