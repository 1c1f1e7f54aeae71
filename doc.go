// Package taskpool provides a fixed-size pool of long-lived worker goroutines
// that execute submitted tasks in FIFO order and deliver each outcome through a
// per-task Future.
//
// Constructor
//   - New(ctx, opts ...Option): starts the workers immediately and returns a ready Pool.
//     WithWorkers(0) fails with ErrInvalidConfig.
//
// Defaults
// Unless overridden, the following defaults apply to a newly created pool:
//   - Workers: runtime.GOMAXPROCS(0)
//   - Logger: zap.NewNop()
//   - Metrics: metrics.NewNoopProvider()
//   - ErrorTagging: false
//   - PinnedWorkers: false
//   - RateLimit: none
//   - QueueCapacity: 64 (initial ring size; the queue grows as needed)
//
// Submission and results
// Submit, SubmitWith and Go never block on task execution. Each returns a Future
// whose Get blocks until the task has run and returns its value or error. A task
// that panics resolves its Future with an error wrapping ErrTaskPanicked; the
// worker that ran it keeps serving the queue.
//
// Lifecycle
//   - Wait blocks until the queue is empty and no worker is executing a task.
//   - Stop rejects further submissions with ErrPoolStopped, lets the workers drain
//     the tasks already queued, and returns once every worker has exited. It is
//     idempotent and safe for concurrent use.
//   - Close is Stop in io.Closer form; the usual pattern is `defer p.Close()`.
//
// Wait and Stop must not be called from inside a task: the calling worker counts
// as busy, so neither predicate could become true.
package taskpool
