package async

import (
	"context"

	"github.com/mindtouch/dream-async/dispatch"
	"github.com/mindtouch/dream-async/future"
)

// RunAll fans tasks out over q (dispatch.Default() if nil) and joins their
// futures, returning results in input order alongside the aggregated error
// (spec §4.8's combinators, supplemented with the teacher's higher-level
// RunAll convenience wrapper rebuilt over Result/Join instead of channels).
// Unlike the teacher's version, RunAll here never owns a pool's lifecycle:
// callers share whatever dispatch.Queue they pass in.
func RunAll[R any](ctx context.Context, q dispatch.Queue, tasks []func(context.Context) (R, error)) ([]R, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	if q == nil {
		q = dispatch.Default()
	}

	results := make([]*future.Result[R], len(tasks))
	members := make([]future.Suspension, len(tasks))

	for i, task := range tasks {
		i, task := i, task
		r := future.NewResult[R]()
		results[i] = r
		members[i] = r
		if !q.QueueWorkItem(func() {
			r.TryReturn(task(ctx))
		}) {
			var zero R
			r.TryReturn(zero, ErrQueueClosed)
		}
	}

	_, joinErr := future.Wait(Join(ctx, members...))

	out := make([]R, len(results))
	for i, r := range results {
		out[i], _ = r.Value()
	}
	return out, joinErr
}
