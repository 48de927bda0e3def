package dispatch

// Immediate runs every submitted action inline, on the submitter's own
// goroutine. It never rejects work: QueueWorkItem always returns true.
type Immediate struct{}

// NewImmediate constructs an Immediate dispatch queue.
func NewImmediate() *Immediate { return &Immediate{} }

// QueueWorkItem runs action synchronously before returning.
func (Immediate) QueueWorkItem(action func()) bool {
	action()
	return true
}
