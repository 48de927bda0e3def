package async

import (
	"context"

	"github.com/mindtouch/dream-async/dispatch"
)

// ForEach applies fn to each item concurrently over q and returns the
// aggregated error, or nil when every call succeeds (supplemented beyond
// spec.md, grounded in the teacher's ForEach convenience wrapper but
// rebuilt over RunAll/Join).
func ForEach[T any](ctx context.Context, q dispatch.Queue, items []T, fn func(context.Context, T) error) error {
	if len(items) == 0 {
		return nil
	}
	tasks := make([]func(context.Context) (struct{}, error), len(items))
	for i := range items {
		item := items[i]
		tasks[i] = func(c context.Context) (struct{}, error) { return struct{}{}, fn(c, item) }
	}
	_, err := RunAll[struct{}](ctx, q, tasks)
	return err
}
