package workload

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/taskpool"
	"github.com/ygrebnov/taskpool/metrics"
)

// ErrSimulated is returned by every FailEvery-th task.
var ErrSimulated = errors.New("workload: simulated task failure")

// Report summarizes one run.
type Report struct {
	Workers int
	Tasks   int
	OK      int
	Failed  int
	Wall    time.Duration
	// Serial is the time the same tasks would take on a single worker.
	Serial time.Duration
}

// Speedup is Serial divided by Wall, or 0 when either is unknown.
func (r Report) Speedup() float64 {
	if r.Wall <= 0 || r.Serial <= 0 {
		return 0
	}
	return float64(r.Serial) / float64(r.Wall)
}

// Runner executes a Config on a fresh pool.
type Runner struct {
	cfg    Config
	logger *zap.Logger
	reg    prometheus.Registerer

	// onResolved is called once per task after its future resolved.
	onResolved func(err error)
}

// NewRunner validates cfg and returns a Runner. reg may be nil to disable
// Prometheus instruments.
func NewRunner(cfg Config, logger *zap.Logger, reg prometheus.Registerer) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger, reg: reg}, nil
}

// OnResolved registers a callback invoked for every resolved task, in submission order.
func (r *Runner) OnResolved(fn func(err error)) { r.onResolved = fn }

// Run submits cfg.Tasks tasks from cfg.Producers goroutines, waits for the pool
// to become quiescent and stops it.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	sleep, err := r.cfg.SleepDuration()
	if err != nil {
		return Report{}, err
	}

	p, err := taskpool.New(ctx, r.options()...)
	if err != nil {
		return Report{}, err
	}
	defer p.Close()

	rep := Report{
		Workers: p.Workers(),
		Tasks:   r.cfg.Tasks,
		Serial:  time.Duration(r.cfg.Tasks) * sleep,
	}

	start := time.Now()
	futures, err := r.submit(p, sleep)
	if err != nil {
		return rep, err
	}

	for _, f := range futures {
		_, taskErr := f.Get()
		if taskErr != nil {
			rep.Failed++
		} else {
			rep.OK++
		}
		if r.onResolved != nil {
			r.onResolved(taskErr)
		}
	}

	p.Wait()
	rep.Wall = time.Since(start)
	p.Stop()

	r.logger.Info("workload finished",
		zap.Int("tasks", rep.Tasks),
		zap.Int("failed", rep.Failed),
		zap.Duration("wall", rep.Wall),
	)
	return rep, nil
}

func (r *Runner) options() []taskpool.Option {
	opts := []taskpool.Option{taskpool.WithLogger(r.logger)}
	if r.cfg.Workers > 0 {
		opts = append(opts, taskpool.WithWorkers(r.cfg.Workers))
	}
	if r.cfg.Rate > 0 {
		opts = append(opts, taskpool.WithRateLimit(r.cfg.Rate, r.cfg.Burst))
	}
	if r.cfg.Pin {
		opts = append(opts, taskpool.WithPinnedWorkers())
	}
	if r.reg != nil {
		opts = append(opts, taskpool.WithMetrics(metrics.NewPrometheusProvider(r.reg, "taskpool", "")))
	}
	return opts
}

// submit splits the tasks into contiguous ranges, one per producer.
func (r *Runner) submit(p *taskpool.Pool, sleep time.Duration) ([]*taskpool.Future[struct{}], error) {
	n := r.cfg.Tasks
	futures := make([]*taskpool.Future[struct{}], n)

	producers := r.cfg.Producers
	if producers > n && n > 0 {
		producers = n
	}
	chunk := (n + producers - 1) / producers

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				f, err := taskpool.Go(p, r.task(i, sleep))
				if err != nil {
					return errorc.With(err, errorc.String("task", strconv.Itoa(i)))
				}
				futures[i] = f
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return futures, nil
}

func (r *Runner) task(i int, sleep time.Duration) func(context.Context) error {
	fail := r.cfg.FailEvery > 0 && (i+1)%r.cfg.FailEvery == 0
	return func(ctx context.Context) error {
		if sleep > 0 {
			t := time.NewTimer(sleep)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			}
		}
		if fail {
			return ErrSimulated
		}
		return nil
	}
}
