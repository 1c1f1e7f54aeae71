// Package workload describes and runs the synthetic task workload driven by the
// taskpool command.
package workload

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ygrebnov/errorc"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("workload: invalid configuration")

// Config is the run file schema. Every field can be overridden by a flag.
type Config struct {
	// Workers is the pool size. Zero means runtime.GOMAXPROCS(0).
	Workers uint `yaml:"workers" json:"workers"`
	// Tasks is the total number of tasks submitted.
	Tasks int `yaml:"tasks" json:"tasks"`
	// Sleep is how long each task sleeps, e.g. "10ms".
	Sleep string `yaml:"sleep" json:"sleep"`
	// FailEvery makes every n-th task return an error. Zero disables failures.
	FailEvery int `yaml:"fail_every" json:"fail_every"`
	// Producers is the number of goroutines submitting concurrently.
	Producers int `yaml:"producers" json:"producers"`
	// Rate caps task starts per second. Zero means unlimited.
	Rate float64 `yaml:"rate" json:"rate"`
	// Burst is the rate limiter bucket size.
	Burst int `yaml:"burst" json:"burst"`
	// Pin locks workers to OS threads and CPUs.
	Pin bool `yaml:"pin" json:"pin"`
	// LogLevel is a zap level name.
	LogLevel string `yaml:"log_level" json:"log_level"`
	// Metrics dumps Prometheus metrics after the run.
	Metrics bool `yaml:"metrics" json:"metrics"`
}

// Default returns the configuration used when neither a file nor flags say otherwise.
func Default() Config {
	return Config{
		Tasks:     100,
		Sleep:     "10ms",
		FailEvery: 0,
		Producers: 1,
		Burst:     1,
		LogLevel:  "warn",
	}
}

// LoadFile reads a YAML or JSON run file on top of Default.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format: %s", ext)
	}

	return cfg, nil
}

// SleepDuration parses Sleep. An empty value means no sleep.
func (c Config) SleepDuration() (time.Duration, error) {
	if c.Sleep == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Sleep)
	if err != nil {
		return 0, errorc.With(ErrInvalidConfig, errorc.String("sleep", c.Sleep))
	}
	return d, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Tasks < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("tasks", strconv.Itoa(c.Tasks)))
	case c.Producers < 1:
		return errorc.With(ErrInvalidConfig, errorc.String("producers", strconv.Itoa(c.Producers)))
	case c.FailEvery < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("fail_every", strconv.Itoa(c.FailEvery)))
	case c.Rate < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("rate", strconv.FormatFloat(c.Rate, 'f', -1, 64)))
	case c.Rate > 0 && c.Burst < 1:
		return errorc.With(ErrInvalidConfig, errorc.String("burst", strconv.Itoa(c.Burst)))
	}
	d, err := c.SleepDuration()
	if err != nil {
		return err
	}
	if d < 0 {
		return errorc.With(ErrInvalidConfig, errorc.String("sleep", c.Sleep))
	}
	return nil
}
