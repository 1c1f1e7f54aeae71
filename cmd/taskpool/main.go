// Package main runs a synthetic workload through a taskpool.Pool and reports
// how well the fixed set of workers overlapped the tasks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ygrebnov/taskpool/internal/workload"
)

func main() {
	var (
		configFile = flag.String("config", "", "run file path (YAML/JSON)")
		workers    = flag.Uint("workers", 0, "number of workers (0 = GOMAXPROCS)")
		tasks      = flag.Int("tasks", 0, "number of tasks to submit")
		sleep      = flag.String("sleep", "", "per-task sleep (e.g. 10ms)")
		failEvery  = flag.Int("fail-every", 0, "make every n-th task fail (0 = never)")
		producers  = flag.Int("producers", 0, "number of concurrent submitters")
		rate       = flag.Float64("rate", 0, "max task starts per second (0 = unlimited)")
		burst      = flag.Int("burst", 0, "rate limiter burst")
		pin        = flag.Bool("pin", false, "pin workers to OS threads and CPUs")
		logLevel   = flag.String("log-level", "", "log level (debug, info, warn, error)")
		dumpMetric = flag.Bool("metrics", false, "print Prometheus metrics after the run")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `taskpool - fixed-size worker pool workload runner

Usage:
  taskpool [options]

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # 200 tasks of 20ms on 8 workers
  taskpool -workers 8 -tasks 200 -sleep 20ms

  # run file with flag overrides
  taskpool -config run.yaml -metrics
`)
	}

	flag.Parse()

	cfg := workload.Default()
	if *configFile != "" {
		fileCfg, err := workload.LoadFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
		cfg = fileCfg
	}

	// explicitly set flags override the run file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = *workers
		case "tasks":
			cfg.Tasks = *tasks
		case "sleep":
			cfg.Sleep = *sleep
		case "fail-every":
			cfg.FailEvery = *failEvery
		case "producers":
			cfg.Producers = *producers
		case "rate":
			cfg.Rate = *rate
		case "burst":
			cfg.Burst = *burst
		case "pin":
			cfg.Pin = *pin
		case "log-level":
			cfg.LogLevel = *logLevel
		case "metrics":
			cfg.Metrics = *dumpMetric
		}
	})

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg workload.Config) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reg *prometheus.Registry
	if cfg.Metrics {
		reg = prometheus.NewRegistry()
	}

	// a nil *Registry must not become a non-nil Registerer
	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}

	r, err := workload.NewRunner(cfg, logger, registerer)
	if err != nil {
		return err
	}

	bar := newProgressBar(cfg.Tasks)
	r.OnResolved(func(error) { _ = bar.Add(1) })

	printHeader(cfg)
	rep, err := r.Run(ctx)
	_ = bar.Finish()
	if err != nil {
		return err
	}

	if err := renderReport(os.Stdout, rep); err != nil {
		return err
	}
	if reg != nil {
		return dumpMetrics(os.Stdout, reg)
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.WarnLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = true
	return zc.Build()
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Running tasks"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
