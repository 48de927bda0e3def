package dispatch

import "sync"

// ThreadPoolKind selects the Global dispatch queue's backing implementation,
// mirroring the `threadpool` configuration key of spec §6.
type ThreadPoolKind int

const (
	// ThreadPoolElastic backs Global with an Elastic work-stealing pool.
	// This is the default.
	ThreadPoolElastic ThreadPoolKind = iota
	// ThreadPoolLegacy backs Global with a Legacy unbounded thread-per-item
	// queue.
	ThreadPoolLegacy
)

// Global is the process-wide dispatch queue: either an Elastic pool or a
// Legacy queue, selected once at construction. Most hosts need exactly one
// of these; a small process-level singleton (Default/SetDefault) is
// provided for callers that don't want to thread a *Global through every
// TaskEnv by hand.
type Global struct {
	kind    ThreadPoolKind
	elastic *Elastic
	legacy  *Legacy
}

// NewGlobal constructs a Global queue backed by kind. elasticOpts is used
// only when kind is ThreadPoolElastic; legacyOpts only when ThreadPoolLegacy.
func NewGlobal(kind ThreadPoolKind, elasticOpts []ElasticOption, legacyOpts []LegacyOption) *Global {
	g := &Global{kind: kind}
	switch kind {
	case ThreadPoolLegacy:
		g.legacy = NewLegacy(legacyOpts...)
	default:
		g.elastic = NewElastic(elasticOpts...)
	}
	return g
}

// QueueWorkItem delegates to the backing implementation.
func (g *Global) QueueWorkItem(action func()) bool {
	if g.kind == ThreadPoolLegacy {
		return g.legacy.QueueWorkItem(action)
	}
	return g.elastic.QueueWorkItem(action)
}

// IsPoolThread reports whether the calling goroutine is one of this
// Global's own worker threads. Only the Elastic backing tracks thread
// identity (spec §4.2's "submitter is a pool thread" distinction is
// meaningless for Legacy's one-goroutine-per-item model, where every
// submission's thread is by definition not reused).
func (g *Global) IsPoolThread() bool {
	if g.elastic == nil {
		return false
	}
	_, ok := g.elastic.currentWorker.Get()
	return ok
}

// EvictLocalWork delegates to the Elastic backing's EvictLocalWork; it is a
// no-op for a Legacy-backed Global, which has no per-thread local queue to
// evict.
func (g *Global) EvictLocalWork() {
	if g.elastic != nil {
		g.elastic.EvictLocalWork()
	}
}

// Close shuts down the backing implementation.
func (g *Global) Close() {
	if g.legacy != nil {
		g.legacy.Close()
		return
	}
	g.elastic.Close()
}

var (
	defaultMu  sync.Mutex
	defaultG   *Global
	defaultSet bool
)

// Default returns the process-wide Global queue, lazily constructing the
// spec §6 default (elastic, threadpool-min=4, threadpool-max=200) on first
// use if SetDefault was never called.
func Default() *Global {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultG == nil {
		defaultG = NewGlobal(ThreadPoolElastic, nil, nil)
	}
	return defaultG
}

// SetDefault installs g as the process-wide Global queue. It panics if
// called after Default has already been used, since swapping the backing
// queue out from under in-flight TaskEnv bindings would be unsound.
func SetDefault(g *Global) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSet {
		panic("dispatch: SetDefault called more than once")
	}
	if defaultG != nil {
		panic("dispatch: SetDefault called after Default was already used")
	}
	defaultG = g
	defaultSet = true
}
