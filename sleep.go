package async

import (
	"time"

	"github.com/mindtouch/dream-async/future"
	"github.com/mindtouch/dream-async/taskenv"
)

// Sleep returns a Result that settles with no error once d has elapsed,
// without blocking the calling goroutine (spec §4.8 "Sleep is a suspension
// point, not a blocking call"). It is armed against env's bound
// *clock.Factory, the same two-tier timer every timeout and coroutine delay
// uses.
func Sleep(env *taskenv.Env, d time.Duration) *future.Result[struct{}] {
	r := future.NewResult[struct{}]()
	env.Factory().NewAfter(d, func(time.Time) {
		r.TryReturn(struct{}{}, nil)
	}, nil, env)
	return r
}
