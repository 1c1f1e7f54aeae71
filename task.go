package taskpool

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Task is the canonical unit of work: it receives the pool's context and returns
// a value of type R or an error. Use TaskFunc / TaskValue / TaskError to adapt
// common function shapes. Arguments are bound by closing over them.
//
// Example:
//
//	t := TaskFunc(func(ctx context.Context) (int, error) { return 42, nil })
//	_ = t
type Task[R any] func(context.Context) (R, error)

// TaskFunc adapts func(ctx) (R, error) to Task[R].
func TaskFunc[R any](fn func(context.Context) (R, error)) Task[R] { return Task[R](fn) }

// TaskValue adapts func(ctx) R to Task[R].
func TaskValue[R any](fn func(context.Context) R) Task[R] {
	return func(ctx context.Context) (R, error) { return fn(ctx), nil }
}

// TaskError adapts func(ctx) error to Task[R].
// The returned Task yields the zero value of R alongside the error.
func TaskError[R any](fn func(context.Context) error) Task[R] {
	return func(ctx context.Context) (R, error) { var zero R; return zero, fn(ctx) }
}

// Bind turns fn and a pre-bound argument into a Task.
func Bind[A, R any](fn func(context.Context, A) (R, error), arg A) Task[R] {
	return func(ctx context.Context) (R, error) { return fn(ctx, arg) }
}

// runnable is what the queue holds: a boxed task with its result channel attached.
// The queue never needs to know a task's result type.
type runnable interface {
	// run executes the task and resolves its future. It reports whether the task
	// panicked and the error stored in the future.
	run(ctx context.Context) (panicked bool, err error)
	index() uint64
}

// queuedTask binds a Task to the Future it completes.
type queuedTask[R any] struct {
	fn     Task[R]
	future *Future[R]
	seq    uint64
	tag    bool
}

func (t *queuedTask[R]) index() uint64 { return t.seq }

func (t *queuedTask[R]) run(ctx context.Context) (bool, error) {
	result, panicked, err := execTask(ctx, t.fn)
	if err != nil && t.tag {
		err = newTaskTaggedError(err, t.seq)
	}
	t.future.complete(result, err)
	return panicked, err
}

// execTask runs fn synchronously, converting a panic into a *PanicError.
func execTask[R any](ctx context.Context, fn Task[R]) (result R, panicked bool, err error) {
	defer func() {
		if ePanic := recover(); ePanic != nil {
			var zero R
			result, panicked, err = zero, true, &PanicError{Value: ePanic, Stack: debug.Stack()}
		}
	}()

	result, err = fn(ctx)
	return result, false, err
}

// PanicError is stored in a Future when its task panicked.
// It wraps ErrTaskPanicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTaskPanicked.Error(), e.Value)
}

func (e *PanicError) Unwrap() error { return ErrTaskPanicked }
