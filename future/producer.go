package future

import "fmt"

// New runs fn on the calling goroutine and settles the returned Result with
// its value and error. A panic inside fn is recovered and delivered as the
// Result's error (spec §4.3 producer adapters, grounded on the teacher's
// newTask three-shape idiom).
func New[T any](fn func() (T, error)) *Result[T] {
	r := NewResult[T]()
	r.TryReturn(runCaptured(fn))
	return r
}

// NewValue adapts a function that never fails into the (value, error) shape
// New expects.
func NewValue[T any](fn func() T) *Result[T] {
	return New(func() (T, error) {
		return fn(), nil
	})
}

// NewVoid adapts a function that produces no value, only a possible error,
// settling a Result[struct{}].
func NewVoid(fn func() error) *Result[struct{}] {
	return New(func() (struct{}, error) {
		return struct{}{}, fn()
	})
}

func runCaptured[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero T
			result = zero
			err = fmt.Errorf("future: producer panicked: %v", p)
		}
	}()
	return fn()
}
