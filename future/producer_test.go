package future

import (
	"errors"
	"testing"
)

func TestNew_SettlesWithFnResult(t *testing.T) {
	r := New(func() (int, error) { return 10, nil })
	v, err := r.Value()
	if err != nil || v != 10 {
		t.Fatalf("Value() = %v, %v; want 10, nil", v, err)
	}
}

func TestNew_SettlesWithFnError(t *testing.T) {
	want := errors.New("boom")
	r := New(func() (int, error) { return 0, want })
	_, err := r.Value()
	if !errors.Is(err, want) {
		t.Fatalf("Value() err = %v, want %v", err, want)
	}
}

func TestNew_RecoversPanicAsError(t *testing.T) {
	r := New(func() (int, error) { panic("kaboom") })
	_, err := r.Value()
	if err == nil {
		t.Fatal("expected a panic to surface as an error")
	}
}

func TestNewValue_NeverFails(t *testing.T) {
	r := NewValue(func() string { return "ok" })
	v, err := r.Value()
	if err != nil || v != "ok" {
		t.Fatalf("Value() = %v, %v; want ok, nil", v, err)
	}
}

func TestNewVoid_SettlesOnError(t *testing.T) {
	want := errors.New("failed")
	r := NewVoid(func() error { return want })
	_, err := r.Value()
	if !errors.Is(err, want) {
		t.Fatalf("Value() err = %v, want %v", err, want)
	}
}
