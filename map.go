package async

import (
	"context"

	"github.com/mindtouch/dream-async/dispatch"
)

// Map fans items out through fn over q and joins the results, in input
// order (supplemented beyond spec.md, grounded in the teacher's Map
// convenience wrapper but rebuilt over RunAll/Join).
func Map[T, R any](ctx context.Context, q dispatch.Queue, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	tasks := make([]func(context.Context) (R, error), len(items))
	for i := range items {
		item := items[i]
		tasks[i] = func(c context.Context) (R, error) { return fn(c, item) }
	}
	return RunAll[R](ctx, q, tasks)
}
