package async

import "github.com/mindtouch/dream-async/future"

// From adapts the classic begin/end Asynchronous Programming Model (the
// IAsyncResult callback shape many legacy host APIs still expose) into a
// Result (spec §4.8 "From bridges callback-based completion").
//
// begin starts the operation and is handed a callback to invoke with the
// eventual outcome; it may also return a non-nil token if the operation
// already completed synchronously, in which case end extracts the outcome
// from that token. Both paths route into the same Result, whichever fires
// first; TryReturn's single-writer-wins rule makes the race between an
// async callback and a synchronous token harmless.
func From[T any](begin func(cb func(T, error)) any, end func(any) (T, error)) *future.Result[T] {
	r := future.NewResult[T]()

	token := begin(func(v T, err error) {
		r.TryReturn(v, err)
	})
	if token != nil {
		v, err := end(token)
		r.TryReturn(v, err)
	}

	return r
}
