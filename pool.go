package taskpool

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Pool is a fixed-size group of worker goroutines consuming one FIFO task queue.
// A single mutex guards the queue, the stopping flag and the busy counter; a
// single condition variable carries the three wake reasons (new task, stop,
// quiescence). Every waiter re-checks its own predicate after each wake.
//
// Pool must be created with New; methods are safe for concurrent use.
type Pool struct {
	// noCopy prevents accidental copying of the pool.
	//go:nocopy
	nc noCopy

	cfg     config
	ctx     context.Context
	logger  *zap.Logger
	inst    instruments
	limiter *rate.Limiter

	mu        sync.Mutex
	cond      *sync.Cond
	queue     *taskQueue
	busy      int    // workers executing a task
	waiters   int    // goroutines parked in Wait
	stopping  bool   // false -> true once, never reverts
	seq       uint64 // next submission index
	completed uint64 // tasks whose execution finished

	// onDequeue, when set, observes every dequeue under mu.
	onDequeue func(index uint64)

	workers sync.WaitGroup
	done    chan struct{}
	lc      *lifecycleCoordinator
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
// It works with the "-copylocks" analyzer via the presence of Lock/Unlock methods.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New creates a pool using functional options and starts its workers.
// The returned pool is ready for submissions. ctx is handed to every task; the
// pool itself never cancels it.
func New(ctx context.Context, opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	p := &Pool{
		cfg:    cfg,
		ctx:    ctx,
		logger: cfg.Logger.Named(Namespace),
		inst:   newInstruments(cfg.Metrics),
		queue:  newTaskQueue(cfg.QueueCapacity),
		done:   make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	if cfg.RateLimit > 0 {
		p.limiter = rate.NewLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	p.lc = newLifecycleCoordinator(p.markStopping, p.workers.Wait, p.onStopped, p.done)

	n := int(cfg.Workers)
	p.workers.Add(n)
	for i := 0; i < n; i++ {
		go newWorker(i, p).run()
	}

	p.logger.Info("pool started",
		zap.Int("workers", n),
		zap.Bool("pinned", cfg.PinnedWorkers),
		zap.Float64("rate_limit", float64(cfg.RateLimit)),
	)
	return p, nil
}

// Submit enqueues t for execution on p and returns its Future.
//
// Semantics:
//   - Safe for concurrent use. Never waits for execution, only for the pool mutex.
//   - Returns ErrNilTask for a nil task and ErrPoolStopped once Stop has begun;
//     a rejected task is never enqueued.
//   - Tasks are dequeued in submission order; completion order depends on durations.
func Submit[R any](p *Pool, t Task[R]) (*Future[R], error) {
	if t == nil {
		return nil, ErrNilTask
	}

	p.mu.Lock()
	if p.stopping {
		p.mu.Unlock()
		p.inst.rejected.Add(1)
		p.logger.Debug("task rejected", zap.Error(ErrPoolStopped))
		return nil, ErrPoolStopped
	}

	f := newFuture[R](p.seq)
	p.queue.Push(&queuedTask[R]{fn: t, future: f, seq: p.seq, tag: p.cfg.ErrorTagging})
	p.seq++
	p.inst.submitted.Add(1)
	p.inst.queued.Add(1)
	p.wakeWorkerLocked()
	p.mu.Unlock()

	return f, nil
}

// SubmitWith binds arg to fn and submits the resulting task.
func SubmitWith[A, R any](p *Pool, fn func(context.Context, A) (R, error), arg A) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	return Submit(p, Bind(fn, arg))
}

// Go submits a task that produces no value. The Future resolves to fn's error.
func Go(p *Pool, fn func(context.Context) error) (*Future[struct{}], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	return Submit(p, TaskError[struct{}](fn))
}

// wakeWorkerLocked wakes one worker for a newly queued task. When a Wait caller
// is parked on the same condition variable a Signal could be consumed by it, so
// everyone is woken instead. Must be called with p.mu held.
func (p *Pool) wakeWorkerLocked() {
	if p.waiters > 0 {
		p.cond.Broadcast()
		return
	}
	p.cond.Signal()
}

// Wait blocks until the queue is empty and no worker is executing a task.
// A task submitted by another goroutine while Wait is blocked postpones its
// return until the pool is quiescent again. Must not be called from a task.
func (p *Pool) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.waiters++
	for !p.quiescentLocked() {
		p.cond.Wait()
	}
	p.waiters--
}

func (p *Pool) quiescentLocked() bool {
	return p.queue.Len() == 0 && p.busy == 0
}

// Stop rejects further submissions, lets the workers drain the queue and blocks
// until every worker has exited.
//
// Semantics:
//   - Idempotent and safe for concurrent use: every caller returns once the
//     first shutdown has completed; later calls return immediately.
//   - Tasks already queued still run, so every Future returned by Submit resolves.
//   - Must not be called from a task.
func (p *Pool) Stop() {
	p.lc.Close()
}

// Close is Stop in io.Closer form, for `defer p.Close()` teardown. It always returns nil.
func (p *Pool) Close() error {
	p.Stop()
	return nil
}

// Done returns a channel closed once Stop has completed and no worker is alive.
func (p *Pool) Done() <-chan struct{} { return p.done }

// Workers returns the fixed number of workers.
func (p *Pool) Workers() int { return int(p.cfg.Workers) }

// Stats is a point-in-time snapshot of pool state.
type Stats struct {
	Workers   int
	Busy      int
	Queued    int
	Submitted uint64
	Completed uint64
	Stopping  bool
}

// Stats returns a consistent snapshot taken under the pool mutex.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Workers:   int(p.cfg.Workers),
		Busy:      p.busy,
		Queued:    p.queue.Len(),
		Submitted: p.seq,
		Completed: p.completed,
		Stopping:  p.stopping,
	}
}

// next blocks until a task is available or the pool is stopping with an empty
// queue. It returns false only in the latter case.
func (p *Pool) next() (runnable, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.queue.Len() == 0 && !p.stopping {
		p.cond.Wait()
	}

	t, ok := p.queue.Pop()
	if !ok {
		// stopping and drained
		return nil, false
	}
	p.busy++
	p.inst.queued.Add(-1)
	p.inst.busy.Add(1)
	if p.onDequeue != nil {
		p.onDequeue(t.index())
	}
	return t, true
}

// finish releases the busy slot taken by next and announces quiescence.
func (p *Pool) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.busy--
	p.completed++
	p.inst.busy.Add(-1)
	if p.quiescentLocked() {
		p.cond.Broadcast()
	}
}

func (p *Pool) markStopping() {
	p.mu.Lock()
	p.stopping = true
	queued := p.queue.Len()
	p.cond.Broadcast()
	p.mu.Unlock()

	p.logger.Info("pool stopping", zap.Int("queued", queued))
}

func (p *Pool) onStopped() {
	p.mu.Lock()
	submitted, completed := p.seq, p.completed
	p.mu.Unlock()

	p.logger.Info("pool stopped",
		zap.Uint64("submitted", submitted),
		zap.Uint64("completed", completed),
	)
}
