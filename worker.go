package taskpool

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ygrebnov/taskpool/internal/cpu"
)

// worker runs the fetch-execute loop of one pool slot:
// WaitingForWork -> Executing -> WaitingForWork, until the pool is stopping
// and the queue is empty.
type worker struct {
	id     int
	pool   *Pool
	logger *zap.Logger
}

func newWorker(id int, p *Pool) *worker {
	return &worker{id: id, pool: p, logger: p.logger.With(zap.Int("worker", id))}
}

func (w *worker) run() {
	defer w.pool.workers.Done()

	if w.pool.cfg.PinnedWorkers {
		cpuID, release := cpu.Pin(w.id)
		defer release()
		w.logger = w.logger.With(zap.Int("cpu", cpuID))
	}

	w.logger.Debug("worker started")
	defer w.logger.Debug("worker exited")

	for {
		t, ok := w.pool.next()
		if !ok {
			return
		}
		w.execute(t)
		w.pool.finish()
	}
}

// execute runs t to completion on this goroutine. Errors and panics end up in
// the task's future; nothing propagates to the worker.
func (w *worker) execute(t runnable) {
	p := w.pool

	if p.limiter != nil {
		// Background: the wait is a delay, never a reason to skip the task.
		_ = p.limiter.Wait(context.Background())
	}

	start := time.Now()
	panicked, err := t.run(p.ctx)
	p.inst.duration.Record(time.Since(start).Seconds())

	switch {
	case panicked:
		p.inst.panicked.Add(1)
		p.inst.failed.Add(1)
		fields := []zap.Field{zap.Uint64("task", t.index())}
		var pe *PanicError
		if errors.As(err, &pe) {
			fields = append(fields, zap.Any("panic", pe.Value), zap.ByteString("stack", pe.Stack))
		}
		w.logger.Error("task panicked", fields...)
	case err != nil:
		p.inst.failed.Add(1)
		w.logger.Debug("task failed", zap.Uint64("task", t.index()), zap.Error(err))
	default:
		p.inst.completed.Add(1)
	}
}
