package taskpool

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"go.uber.org/zap"

	"github.com/ygrebnov/taskpool/metrics"
)

func TestValidateConfig_Defaults(t *testing.T) {
	cfg := defaultConfig()
	if err := validateConfig(&cfg); err != nil {
		t.Fatalf("validateConfig returned error for defaults: %v", err)
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := defaultConfig()
	if want := uint(runtime.GOMAXPROCS(0)); cfg.Workers != want {
		t.Fatalf("Workers default = %d; want %d", cfg.Workers, want)
	}
	if cfg.Logger == nil {
		t.Fatalf("Logger default is nil")
	}
	if _, ok := cfg.Metrics.(metrics.NoopProvider); !ok {
		t.Fatalf("Metrics default = %T; want metrics.NoopProvider", cfg.Metrics)
	}
	if cfg.ErrorTagging {
		t.Fatalf("ErrorTagging default = true; want false")
	}
	if cfg.PinnedWorkers {
		t.Fatalf("PinnedWorkers default = true; want false")
	}
	if cfg.RateLimit != 0 || cfg.RateBurst != 0 {
		t.Fatalf("rate limit defaults = (%v, %d); want (0, 0)", cfg.RateLimit, cfg.RateBurst)
	}
	if cfg.QueueCapacity != defaultQueueCapacity {
		t.Fatalf("QueueCapacity default = %d; want %d", cfg.QueueCapacity, defaultQueueCapacity)
	}
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config)
	}{
		{"zero workers", func(c *config) { c.Workers = 0 }},
		{"nil logger", func(c *config) { c.Logger = nil }},
		{"nil metrics", func(c *config) { c.Metrics = nil }},
		{"rate without burst", func(c *config) { c.RateLimit = 10; c.RateBurst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("validateConfig error = %v; want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNew_InvalidOptions_ReturnsError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
	}{
		{"WithWorkers(0)", WithWorkers(0)},
		{"WithLogger(nil)", WithLogger(nil)},
		{"WithMetrics(nil)", WithMetrics(nil)},
		{"WithRateLimit zero rate", WithRateLimit(0, 1)},
		{"WithRateLimit zero burst", WithRateLimit(5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(context.Background(), tt.opt)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("New error = %v; want ErrInvalidConfig", err)
			}
			if p != nil {
				t.Fatalf("expected nil pool on error, got: %v", p)
			}
		})
	}
}

func TestNew_ValidOptions_Succeeds(t *testing.T) {
	t.Parallel()

	p, err := New(
		context.Background(),
		WithWorkers(3),
		WithLogger(zap.NewNop()),
		WithMetrics(metrics.NewBasicProvider()),
		WithErrorTagging(),
		WithRateLimit(1000, 10),
		WithQueueCapacity(0),
		nil, // nil options are skipped
	)
	if err != nil {
		t.Fatalf("unexpected error from New with valid options: %v", err)
	}
	if p == nil {
		t.Fatalf("expected non-nil pool")
	}
	defer p.Stop()

	if p.Workers() != 3 {
		t.Fatalf("Workers() = %d; want 3", p.Workers())
	}
	if !p.cfg.ErrorTagging {
		t.Fatalf("ErrorTagging not applied")
	}
	if p.limiter == nil {
		t.Fatalf("rate limiter not created")
	}
}

func TestNew_DefaultWorkers(t *testing.T) {
	p, err := New(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Stop()

	if want := runtime.GOMAXPROCS(0); p.Workers() != want {
		t.Fatalf("Workers() = %d; want %d", p.Workers(), want)
	}
	if p.limiter != nil {
		t.Fatalf("limiter must be nil without WithRateLimit")
	}
}
