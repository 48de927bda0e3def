package dispatch

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/mindtouch/dream-async/internal/gls"
	"github.com/mindtouch/dream-async/lockfree"
)

// ElasticOption configures an Elastic pool. The pattern mirrors the
// teacher's functional-options builder (options.go): each option mutates a
// private config struct built from defaults before NewElastic constructs
// the pool.
type ElasticOption func(*elasticConfig)

type elasticConfig struct {
	minThreads  int
	maxThreads  int
	idleTimeout time.Duration
	logger      zerolog.Logger
}

func defaultElasticConfig() elasticConfig {
	return elasticConfig{
		minThreads:  4,   // spec §6 threadpool-min default
		maxThreads:  200, // spec §6 threadpool-max default
		idleTimeout: 10 * time.Second,
		logger:      zerolog.New(io.Discard),
	}
}

// WithThreads sets the lower and upper bound on pool size (spec §6
// threadpool-min / threadpool-max).
func WithThreads(min, max int) ElasticOption {
	return func(c *elasticConfig) {
		if min <= 0 || max < min {
			panic("dispatch: WithThreads requires 0 < min <= max")
		}
		c.minThreads = min
		c.maxThreads = max
	}
}

// WithIdleTimeout sets how long an idle worker above minThreads waits before
// retiring.
func WithIdleTimeout(d time.Duration) ElasticOption {
	return func(c *elasticConfig) { c.idleTimeout = d }
}

// WithLogger attaches a logger for panics recovered from work items. The
// default is a disabled logger, matching the ambient zerolog convention
// used across this module.
func WithLogger(l zerolog.Logger) ElasticOption {
	return func(c *elasticConfig) { c.logger = l }
}

// Elastic is the work-stealing dispatch pool of spec §4.2: a set of
// threads, each owning a lockfree.Deque, fed by per-thread local pushes and
// a shared lockfree.Queue for submissions from outside the pool. Idle
// threads steal from peers before parking; the pool scales between
// minThreads and maxThreads, retiring idle threads above the floor.
//
// This generalizes the teacher's dispatcher+pool.Pool pairing
// (dispatcher.go, pool/fixed.go, pool/dynamic.go), which recycled
// *worker[R]execute objects out of a pool.Pool, into deque-owning threads
// that themselves are the unit of reuse.
type Elastic struct {
	cfg elasticConfig

	mu      sync.Mutex
	workers []*elasticWorker
	nextID  int
	shared  *lockfree.Queue[func()]

	currentWorker *gls.Slot[*elasticWorker]

	ctx    context.Context
	cancel context.CancelFunc

	stopped atomic.Bool
	wg      sync.WaitGroup
}

// NewElastic constructs an Elastic pool and starts minThreads workers.
func NewElastic(opts ...ElasticOption) *Elastic {
	cfg := defaultElasticConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Elastic{
		cfg:           cfg,
		shared:        lockfree.NewQueue[func()](),
		currentWorker: gls.NewSlot[*elasticWorker](),
		ctx:           ctx,
		cancel:        cancel,
	}
	for i := 0; i < cfg.minThreads; i++ {
		p.spawnWorkerLocked()
	}
	return p
}

// QueueWorkItem places action on the submitter's own deque if the submitter
// is one of this pool's workers (that worker pops its own deque newest
// first, while thieves take the oldest), otherwise on the shared queue. It
// then wakes an idle
// worker, growing the pool if every worker is currently busy and below
// maxThreads.
func (p *Elastic) QueueWorkItem(action func()) bool {
	if p.stopped.Load() {
		return false
	}

	if w, ok := p.currentWorker.Get(); ok {
		w.local.Push(action)
		return true
	}

	p.shared.Enqueue(action)
	p.wakeOrGrow()
	return true
}

func (p *Elastic) wakeOrGrow() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, w := range p.workers {
		if w.trySignal() {
			return
		}
	}
	if len(p.workers) < p.cfg.maxThreads {
		p.spawnWorkerLocked()
	}
}

// spawnWorkerLocked must be called with p.mu held.
func (p *Elastic) spawnWorkerLocked() {
	w := newElasticWorker(p.nextID, p)
	p.nextID++
	p.workers = append(p.workers, w)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		w.run()
	}()
}

func (p *Elastic) workerExited(w *elasticWorker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.workers {
		if existing == w {
			p.workers = append(p.workers[:i], p.workers[i+1:]...)
			return
		}
	}
}

func (p *Elastic) snapshotWorkers() []*elasticWorker {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*elasticWorker, len(p.workers))
	copy(out, p.workers)
	return out
}

// shouldRetire reports whether w, having been idle since idleSince, should
// exit its run loop. Workers never retire below minThreads.
func (p *Elastic) shouldRetire(w *elasticWorker, idleSince time.Time) bool {
	if time.Since(idleSince) < p.cfg.idleTimeout {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers) > p.cfg.minThreads
}

func (p *Elastic) pollInterval() time.Duration {
	if p.cfg.idleTimeout < 100*time.Millisecond {
		return p.cfg.idleTimeout
	}
	return p.cfg.idleTimeout / 10
}

// EvictLocalWork moves every action currently queued on the calling
// goroutine's own deque onto the shared queue, where any worker (including
// ones stealing) can pick them up. It is a no-op if the caller is not one
// of this pool's workers. future.Block uses this before a worker parks to
// wait on an auto-reset event, so the worker's own queued continuations
// don't starve behind it (spec §5 deadlock-avoidance rule).
func (p *Elastic) EvictLocalWork() {
	w, ok := p.currentWorker.Get()
	if !ok {
		return
	}
	moved := false
	for {
		action, ok := w.local.TryPop()
		if !ok {
			break
		}
		p.shared.Enqueue(action)
		moved = true
	}
	if moved {
		p.wakeOrGrow()
	}
}

func (p *Elastic) onPanic(r any) {
	p.cfg.logger.Error().Interface("panic", r).Msg("dispatch: work item panicked")
}

// Close stops accepting new work and waits for every worker goroutine to
// exit. A worker exits only after it finds its own deque, the shared queue
// and its peers' deques empty, so actions queued before Close normally run
// before Close returns; a worker that sees the cancellation and a wake-up at
// the same moment may exit first, and an action it would have taken is then
// not run.
func (p *Elastic) Close() {
	if p.stopped.Swap(true) {
		return
	}
	p.cancel()
	p.wg.Wait()
}
