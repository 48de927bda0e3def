package async

import (
	"io"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/automaxprocs/maxprocs"
)

func init() {
	// Best-effort: align GOMAXPROCS with the container's CPU quota before
	// Config ever computes a default threadpool-max, the same
	// container-aware posture the teacher's doc.go describes for channel
	// lifecycle defaults. A failure here (no cgroup, e.g. outside a
	// container) is not worth surfacing.
	_, _ = maxprocs.Set()
}

// ThreadPoolKind selects which dispatch.Queue implementation backs the
// process-wide runtime (spec §6 configuration table, "threadpool").
type ThreadPoolKind int

const (
	ThreadPoolElastic ThreadPoolKind = iota
	ThreadPoolLegacy
)

// Config holds the runtime-wide settings of spec §6's configuration table,
// plus the §4.6/§4.7 tuning constants. The zero value is not meaningful;
// use defaultConfig or NewOptions.
type Config struct {
	// ThreadPool selects elastic vs legacy dispatch. Default: elastic.
	ThreadPool ThreadPoolKind

	// ThreadPoolMin is the elastic dispatcher's lower parallelism bound.
	// Default: 4.
	ThreadPoolMin int

	// ThreadPoolMax is the elastic dispatcher's upper parallelism bound.
	// Default: 200, computed relative to GOMAXPROCS as adjusted by
	// automaxprocs, not the host's full core count (§1's "lives inside a
	// containerized service host").
	ThreadPoolMax int

	// MaxStackSize bounds a worker goroutine's stack via debug.SetMaxStack
	// when non-zero. Default: 0 (host default).
	MaxStackSize int

	// QueueCutoff is the clock.Factory queued/pending tier boundary
	// (spec §4.6). Default: clock.DefaultQueueCutoff.
	QueueCutoff time.Duration

	// QueueRescan is the clock.Factory pending-promotion interval
	// (spec §4.6). Default: clock.DefaultQueueRescan.
	QueueRescan time.Duration

	// AutoRefreshCoalesce records an expiring.Set AutoRefresh coalescing
	// window (spec §4.7). Default: 500ms. NewOptions does not pass it to
	// anything; a Set takes its window from expiring.WithAutoRefresh.
	AutoRefreshCoalesce time.Duration

	logger zerolog.Logger
}

// defaultThreadPoolMax mirrors §1's containerized-host framing: 200 capped
// by a factor of the (automaxprocs-adjusted) GOMAXPROCS, so a tightly
// quota-limited container does not spawn as many worker goroutines as a
// bare-metal host would.
func defaultThreadPoolMax() int {
	const cap200 = 200
	if scaled := runtime.GOMAXPROCS(0) * 50; scaled < cap200 {
		return scaled
	}
	return cap200
}

func defaultConfig() Config {
	return Config{
		ThreadPool:          ThreadPoolElastic,
		ThreadPoolMin:       4,
		ThreadPoolMax:       defaultThreadPoolMax(),
		MaxStackSize:        0,
		QueueCutoff:         30 * time.Second,
		QueueRescan:         25 * time.Second,
		AutoRefreshCoalesce: 500 * time.Millisecond,
		logger:              zerolog.New(io.Discard),
	}
}

// validateConfig performs the argument-shape checks spec §7 calls for
// ("negative parallelism" raised synchronously at submission).
func validateConfig(cfg *Config) error {
	if cfg.ThreadPoolMin < 0 {
		return ErrInvalidConfig
	}
	if cfg.ThreadPoolMax < cfg.ThreadPoolMin {
		return ErrInvalidConfig
	}
	return nil
}
