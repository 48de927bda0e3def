package async

import (
	"errors"
	"testing"
)

func TestFrom_AsynchronousCallbackCompletion(t *testing.T) {
	var stored func(int, error)
	begin := func(cb func(int, error)) any {
		stored = cb
		return nil
	}
	end := func(any) (int, error) { return 0, nil }

	r := From(begin, end)
	if r.HasFinished() {
		t.Fatal("expected From to still be pending before the callback fires")
	}

	stored(7, nil)
	v, err := r.Value()
	if err != nil || v != 7 {
		t.Fatalf("Value() = %v, %v; want 7, nil", v, err)
	}
}

func TestFrom_SynchronousTokenCompletion(t *testing.T) {
	begin := func(cb func(string, error)) any {
		return "token"
	}
	end := func(tok any) (string, error) {
		return tok.(string) + "-done", nil
	}

	r := From(begin, end)
	v, err := r.Value()
	if err != nil || v != "token-done" {
		t.Fatalf("Value() = %v, %v; want token-done, nil", v, err)
	}
}

func TestFrom_PropagatesErrorFromCallback(t *testing.T) {
	boom := errors.New("boom")
	begin := func(cb func(int, error)) any {
		cb(0, boom)
		return nil
	}
	end := func(any) (int, error) { return 0, nil }

	r := From(begin, end)
	_, err := r.Value()
	if !errors.Is(err, boom) {
		t.Fatalf("Value() err = %v, want %v", err, boom)
	}
}
