package taskpool

import "context"

// Map applies fn to every element of in on a new Pool configured by opts.
// Results keep input order. The returned error joins all per-element errors.
func Map[T, R any](
	ctx context.Context, in []T, fn func(context.Context, T) (R, error), opts ...Option,
) ([]R, error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	tasks := make([]Task[R], len(in))
	for i, v := range in {
		tasks[i] = Bind(fn, v)
	}
	return RunAll(ctx, tasks, opts...)
}
