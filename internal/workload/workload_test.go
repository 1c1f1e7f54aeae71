package workload

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
workers: 3
tasks: 12
sleep: 5ms
fail_every: 4
producers: 2
pin: true
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.EqualValues(t, 3, cfg.Workers)
	require.Equal(t, 12, cfg.Tasks)
	require.Equal(t, "5ms", cfg.Sleep)
	require.Equal(t, 4, cfg.FailEvery)
	require.Equal(t, 2, cfg.Producers)
	require.True(t, cfg.Pin)
	// untouched fields keep their defaults
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, 1, cfg.Burst)
}

func TestLoadFile_JSON(t *testing.T) {
	path := writeFile(t, "run.json", `{"tasks": 7, "rate": 50, "burst": 2, "metrics": true}`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Tasks)
	require.InDelta(t, 50.0, cfg.Rate, 1e-9)
	require.Equal(t, 2, cfg.Burst)
	require.True(t, cfg.Metrics)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadFile(writeFile(t, "run.toml", "tasks = 1"))
	require.ErrorContains(t, err, "unsupported config format")

	_, err = LoadFile(writeFile(t, "bad.yaml", "tasks: [1, 2"))
	require.ErrorContains(t, err, "failed to parse YAML")
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, Default().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative tasks", func(c *Config) { c.Tasks = -1 }},
		{"no producers", func(c *Config) { c.Producers = 0 }},
		{"negative fail_every", func(c *Config) { c.FailEvery = -2 }},
		{"negative rate", func(c *Config) { c.Rate = -1 }},
		{"rate without burst", func(c *Config) { c.Rate = 10; c.Burst = 0 }},
		{"bad sleep", func(c *Config) { c.Sleep = "soon" }},
		{"negative sleep", func(c *Config) { c.Sleep = "-1s" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestRunner_Run(t *testing.T) {
	cfg := Default()
	cfg.Workers = 4
	cfg.Tasks = 40
	cfg.Sleep = "2ms"
	cfg.FailEvery = 5
	cfg.Producers = 3

	reg := prometheus.NewRegistry()
	r, err := NewRunner(cfg, zaptest.NewLogger(t), reg)
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		resolved int
	)
	r.OnResolved(func(error) {
		mu.Lock()
		resolved++
		mu.Unlock()
	})

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, rep.Workers)
	require.Equal(t, 40, rep.Tasks)
	require.Equal(t, 32, rep.OK)
	require.Equal(t, 8, rep.Failed)
	require.Equal(t, 80*time.Millisecond, rep.Serial)
	require.Positive(t, rep.Wall)
	require.Positive(t, rep.Speedup())
	require.Equal(t, 40, resolved)

	require.InDelta(t, 8.0, gatheredCounter(t, reg, "taskpool_tasks_failed"), 1e-9)
	require.InDelta(t, 40.0, gatheredCounter(t, reg, "taskpool_tasks_submitted"), 1e-9)
}

func gatheredCounter(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestRunner_ZeroTasks(t *testing.T) {
	cfg := Default()
	cfg.Tasks = 0
	cfg.Producers = 4

	r, err := NewRunner(cfg, nil, nil)
	require.NoError(t, err)
	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, rep.OK+rep.Failed)
	require.Zero(t, rep.Speedup())
}

func TestNewRunner_InvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.Producers = 0
	_, err := NewRunner(cfg, nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
