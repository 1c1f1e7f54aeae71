package taskpool

import "context"

// ForEach runs fn for every element of in on a new Pool configured by opts
// and returns the joined errors.
func ForEach[T any](ctx context.Context, in []T, fn func(context.Context, T) error, opts ...Option) error {
	if fn == nil {
		return ErrNilTask
	}
	_, err := Map(ctx, in, func(ctx context.Context, v T) (struct{}, error) {
		return struct{}{}, fn(ctx, v)
	}, opts...)
	return err
}
