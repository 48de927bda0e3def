package async

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/mindtouch/dream-async/clock"
	"github.com/mindtouch/dream-async/dispatch"
	"github.com/mindtouch/dream-async/taskenv"
)

// Option configures a Runtime. Use NewOptions(opts...) to construct one.
type Option func(*Config)

// WithElasticThreadPool selects the elastic dispatcher (the default).
func WithElasticThreadPool() Option {
	return func(c *Config) { c.ThreadPool = ThreadPoolElastic }
}

// WithLegacyThreadPool selects the unbounded goroutine-per-item dispatcher
// (spec §6's "legacy" threadpool choice).
func WithLegacyThreadPool() Option {
	return func(c *Config) { c.ThreadPool = ThreadPoolLegacy }
}

// WithThreadPoolBounds sets the elastic dispatcher's min/max parallelism.
func WithThreadPoolBounds(min, max int) Option {
	return func(c *Config) {
		c.ThreadPoolMin = min
		c.ThreadPoolMax = max
	}
}

// WithMaxStackSize bounds a worker goroutine's stack (spec §6
// "max-stacksize").
func WithMaxStackSize(bytes int) Option {
	return func(c *Config) { c.MaxStackSize = bytes }
}

// WithQueueCutoff overrides the clock.Factory queued/pending tier boundary
// (spec §4.6).
func WithQueueCutoff(d time.Duration) Option {
	return func(c *Config) { c.QueueCutoff = d }
}

// WithQueueRescan overrides the clock.Factory pending-promotion interval
// (spec §4.6).
func WithQueueRescan(d time.Duration) Option {
	return func(c *Config) { c.QueueRescan = d }
}

// WithAutoRefreshCoalesce sets Config.AutoRefreshCoalesce (spec §4.7).
// NewOptions does not read it and builds no expiring.Set; a Set takes its
// refresh window from expiring.WithAutoRefresh.
func WithAutoRefreshCoalesce(d time.Duration) Option {
	return func(c *Config) { c.AutoRefreshCoalesce = d }
}

// WithLogger attaches a logger, propagated to the runtime's taskenv.Env
// default environment.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) { c.logger = l }
}

// Runtime bundles the process-wide dispatch queue, timer factory, and the
// root ambient environment NewOptions constructs them against. Installing
// it as the process-wide default is left to the caller
// (dispatch.SetDefault(runtime.Queue)), since a host may legitimately want
// more than one Runtime (e.g. one per test) without fighting
// dispatch.SetDefault's once-only guard.
type Runtime struct {
	Queue   *dispatch.Global
	Factory *clock.Factory
	Env     *taskenv.Env
}

// NewOptions builds a Runtime from functional options. It panics on a nil
// option or an invalid Config, mirroring the teacher's NewOptions
// panic-on-conflict behavior — these are argument-shape defects a caller
// fixes once at startup, not a runtime condition worth a typed error.
func NewOptions(opts ...Option) *Runtime {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic("async: nil option")
		}
		opt(&cfg)
	}
	if err := validateConfig(&cfg); err != nil {
		panic(fmt.Errorf("async: %w", err))
	}
	if cfg.MaxStackSize > 0 {
		debug.SetMaxStack(cfg.MaxStackSize)
	}

	var global *dispatch.Global
	switch cfg.ThreadPool {
	case ThreadPoolLegacy:
		global = dispatch.NewGlobal(dispatch.ThreadPoolLegacy, nil, nil)
	default:
		global = dispatch.NewGlobal(dispatch.ThreadPoolElastic, []dispatch.ElasticOption{
			dispatch.WithThreads(cfg.ThreadPoolMin, cfg.ThreadPoolMax),
		}, nil)
	}

	factory := clock.NewFactory(clock.Default(),
		clock.WithQueueCutoff(cfg.QueueCutoff),
		clock.WithQueueRescan(cfg.QueueRescan),
	)

	env := taskenv.New(
		taskenv.WithQueue(global),
		taskenv.WithFactory(factory),
		taskenv.WithLogger(cfg.logger),
	)

	return &Runtime{Queue: global, Factory: factory, Env: env}
}
