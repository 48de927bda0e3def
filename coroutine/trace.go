package coroutine

import (
	"errors"
	"fmt"
	"strings"
)

// Trace wraps a propagated error with the innermost coroutine that
// observed it (spec §4.4 "Stack trace"), redirecting the teacher's
// taskTaggedError/Format pattern from task-index tagging to
// coroutine-frame tagging.
type Trace struct {
	Frame Outer
	Err   error
}

func (t *Trace) Error() string { return t.Err.Error() }
func (t *Trace) Unwrap() error { return t.Err }

// Format walks the outer chain exactly the way taskTaggedError.Format
// walked its wrapped error. With %+v it prefixes the error with a single
// call-trace line naming every coroutine frame, innermost first, joined by
// " <- ", bridging the asynchronous suspensions between them (§7's "nested
// coroutine frames into a single diagnostic").
func (t *Trace) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "%s: %+v", t.framesString(), t.Err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, t.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", t.Error())
	}
}

func (t *Trace) framesString() string {
	var names []string
	frame, ok := t.Frame, t.Frame != nil
	for ok {
		names = append(names, frame.label())
		frame, ok = frame.outer()
	}
	return strings.Join(names, " <- ")
}

// Frames extracts the innermost coroutine frame from err if it carries one.
func Frames(err error) (Outer, bool) {
	var tr *Trace
	if errors.As(err, &tr) {
		return tr.Frame, tr.Frame != nil
	}
	return nil, false
}
