package taskpool

import (
	"runtime"
	"strconv"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ygrebnov/taskpool/metrics"
)

// config holds Pool configuration.
type config struct {
	// Workers defines the fixed number of worker goroutines.
	// Default: runtime.GOMAXPROCS(0)
	Workers uint

	// Logger receives structured pool and worker events.
	// Default: zap.NewNop()
	Logger *zap.Logger

	// Metrics receives pool instruments.
	// Default: metrics.NewNoopProvider()
	Metrics metrics.Provider

	// ErrorTagging wraps task errors with their submission index.
	// Default: false
	ErrorTagging bool

	// PinnedWorkers locks each worker to an OS thread and, on Linux, to one CPU.
	// Default: false
	PinnedWorkers bool

	// RateLimit throttles task starts across the whole pool. Zero means unlimited.
	// Default: 0
	RateLimit rate.Limit

	// RateBurst is the limiter bucket size, used only when RateLimit > 0.
	// Default: 0
	RateBurst int

	// QueueCapacity is the initial size of the task ring; it grows on demand.
	// Default: 64
	QueueCapacity uint
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		Workers:       uint(runtime.GOMAXPROCS(0)),
		Logger:        zap.NewNop(),
		Metrics:       metrics.NewNoopProvider(),
		ErrorTagging:  false,
		PinnedWorkers: false,
		RateLimit:     0,
		RateBurst:     0,
		QueueCapacity: defaultQueueCapacity,
	}
}

// validateConfig checks the invariants New relies on.
func validateConfig(cfg *config) error {
	switch {
	case cfg.Workers == 0:
		return errorc.With(ErrInvalidConfig, errorc.String("workers", "0"))
	case cfg.Logger == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("logger", "nil"))
	case cfg.Metrics == nil:
		return errorc.With(ErrInvalidConfig, errorc.String("metrics", "nil"))
	case cfg.RateLimit > 0 && cfg.RateBurst < 1:
		return errorc.With(ErrInvalidConfig, errorc.String("rate_burst", strconv.Itoa(cfg.RateBurst)))
	}
	return nil
}

// Option configures a Pool. Use New(ctx, opts...) to construct a Pool via options.
type Option func(*config) error

// WithWorkers sets the fixed number of workers (must be > 0).
func WithWorkers(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithWorkers requires n > 0"))
		}
		cfg.Workers = n
		return nil
	}
}

// WithLogger sets the logger used for pool and worker events.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the provider the pool records its instruments with.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}

// WithErrorTagging wraps task errors with their submission index, see ExtractTaskIndex.
func WithErrorTagging() Option {
	return func(cfg *config) error { cfg.ErrorTagging = true; return nil }
}

// WithPinnedWorkers locks every worker goroutine to its own OS thread and, on Linux,
// restricts that thread to CPU workerID % NumCPU.
func WithPinnedWorkers() Option {
	return func(cfg *config) error { cfg.PinnedWorkers = true; return nil }
}

// WithRateLimit caps how many tasks per second the pool starts, with the given burst.
// A dequeued task waits for a token and then always runs; nothing is dropped.
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) error {
		if tasksPerSecond <= 0 || burst <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithRateLimit requires positive rate and burst"))
		}
		cfg.RateLimit = rate.Limit(tasksPerSecond)
		cfg.RateBurst = burst
		return nil
	}
}

// WithQueueCapacity sets the initial capacity of the task queue.
func WithQueueCapacity(n uint) Option {
	return func(cfg *config) error { cfg.QueueCapacity = n; return nil }
}
