package async

import "errors"

// Namespace prefixes every sentinel error defined across this module, the
// same convention the teacher's errors.go used for its own package.
const Namespace = "async"

var (
	// ErrAllAlternatesFailed is produced by Alt when every alternative
	// failed (spec §7 "All-alternates-failed").
	ErrAllAlternatesFailed = errors.New(Namespace + ": all alternates failed")

	// ErrQueueClosed names the "queue-closed" argument-shape condition
	// (spec §7): a dispatch.Queue's QueueWorkItem returned false because it
	// had already been closed. dispatch.Queue itself reports this as a
	// bool, not an error; callers that need an error value to propagate
	// through a Result wrap the false return in this sentinel.
	ErrQueueClosed = errors.New(Namespace + ": dispatch queue is closed")

	// ErrNilArgument is raised synchronously when a required argument is
	// nil (spec §7 "Argument-shape errors").
	ErrNilArgument = errors.New(Namespace + ": required argument is nil")

	// ErrEmptyAlternatives is raised synchronously when Alt is called with
	// zero alternatives, an argument-shape error rather than a normal
	// all-failed outcome.
	ErrEmptyAlternatives = errors.New(Namespace + ": Alt requires at least one alternative")

	// ErrInvalidConfig is raised synchronously by NewOptions when a Config
	// violates an argument-shape constraint, e.g. negative parallelism
	// (spec §7 "Argument-shape errors").
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
)
