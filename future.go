package taskpool

import (
	"context"
	"sync"
)

// Future is the result handle of a submitted task.
// It is written exactly once, by the worker that ran the task, and may be read
// any number of times from any goroutine.
type Future[R any] struct {
	done  chan struct{}
	once  sync.Once
	index uint64

	value R
	err   error
}

func newFuture[R any](index uint64) *Future[R] {
	return &Future[R]{done: make(chan struct{}), index: index}
}

// complete stores the outcome and releases readers. Later calls are ignored.
func (f *Future[R]) complete(value R, err error) {
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
	})
}

// Get blocks until the task has run and returns its value and error.
// A task that panicked yields an error wrapping ErrTaskPanicked.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// GetContext is like Get but stops waiting when ctx is done, returning ctx.Err().
// The task itself is not affected.
func (f *Future[R]) GetContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Done returns a channel closed once the outcome is available.
func (f *Future[R]) Done() <-chan struct{} { return f.done }

// IsReady reports whether the outcome is available without blocking.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Index returns the pool-wide submission index of the task, which is also its
// position in dequeue order.
func (f *Future[R]) Index() uint64 { return f.index }
