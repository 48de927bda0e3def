package dispatch

import (
	"time"

	"github.com/mindtouch/dream-async/lockfree"
)

// elasticWorker is one dispatch thread of an Elastic pool. It owns a
// work-stealing deque (lockfree.Deque) for locally submitted work and
// drains the pool's shared queue and peer deques when its own is empty.
// This generalizes the teacher's dispatcher/worker split (dispatcher.go,
// worker.go), which paired a shared task channel with a pool.Pool of
// reusable *worker[R] executors, into a per-thread deque owner.
type elasticWorker struct {
	id    int
	local *lockfree.Deque[func()]
	pool  *Elastic

	wake chan struct{}
	done chan struct{}
}

func newElasticWorker(id int, p *Elastic) *elasticWorker {
	return &elasticWorker{
		id:    id,
		local: lockfree.NewDeque[func()](),
		pool:  p,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// trySignal wakes the worker if it is parked waiting for work and doesn't
// already have a wake pending. It reports whether it queued a wake.
func (w *elasticWorker) trySignal() bool {
	select {
	case w.wake <- struct{}{}:
		return true
	default:
		return false
	}
}

// run is the worker's main loop: local deque, then shared queue, then steal
// from peers, then park until signalled or idle long enough to exit.
func (w *elasticWorker) run() {
	defer close(w.done)
	defer w.pool.workerExited(w)

	idleSince := time.Time{}
	for {
		if action, ok := w.local.TryPop(); ok {
			idleSince = time.Time{}
			w.runAction(action)
			continue
		}
		if action, ok := w.pool.shared.Dequeue(); ok {
			idleSince = time.Time{}
			w.runAction(action)
			continue
		}
		if action, ok := w.stealFromPeers(); ok {
			idleSince = time.Time{}
			w.runAction(action)
			continue
		}

		if idleSince.IsZero() {
			idleSince = time.Now()
		}

		select {
		case <-w.pool.ctx.Done():
			return
		case <-w.wake:
			continue
		case <-time.After(w.pool.pollInterval()):
			if w.pool.shouldRetire(w, idleSince) {
				return
			}
		}
	}
}

func (w *elasticWorker) runAction(action func()) {
	w.pool.currentWorker.Set(w)
	defer w.pool.currentWorker.Clear()
	defer func() {
		if r := recover(); r != nil {
			w.pool.onPanic(r)
		}
	}()
	action()
}

func (w *elasticWorker) stealFromPeers() (func(), bool) {
	peers := w.pool.snapshotWorkers()
	for _, peer := range peers {
		if peer == w {
			continue
		}
		if action, ok := peer.local.TrySteal(); ok {
			return action, true
		}
	}
	return nil, false
}
