package taskpool

import (
	"context"
	"errors"
	"strconv"

	"github.com/ygrebnov/errorc"
)

// RunAll executes the provided tasks on a new Pool configured by opts.
// It owns the pool lifecycle: New, submit everything, collect, Stop.
//
// Semantics:
// - Results are returned in input order; a failed task leaves the zero value in its slot.
// - The returned error is errors.Join of all task errors (nil if no errors).
// - A nil task aborts submission with ErrNilTask; tasks already submitted still run.
func RunAll[R any](ctx context.Context, tasks []Task[R], opts ...Option) ([]R, error) {
	p, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	defer p.Stop()

	futures, err := submitAll(p, tasks)
	if err != nil {
		return nil, err
	}
	return collect(futures)
}

// submitAll submits tasks in order and returns their futures.
func submitAll[R any](p *Pool, tasks []Task[R]) ([]*Future[R], error) {
	futures := make([]*Future[R], 0, len(tasks))
	for i, t := range tasks {
		f, err := Submit(p, t)
		if err != nil {
			return nil, errorc.With(err, errorc.String("index", strconv.Itoa(i)))
		}
		futures = append(futures, f)
	}
	return futures, nil
}

// collect waits for every future and aggregates errors.
func collect[R any](futures []*Future[R]) ([]R, error) {
	results := make([]R, len(futures))
	var errs []error
	for i, f := range futures {
		r, err := f.Get()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results[i] = r
	}
	return results, errors.Join(errs...)
}
