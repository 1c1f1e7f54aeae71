package taskpool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Outcome is one result emitted by RunStream.
type Outcome[R any] struct {
	// Index is the position of the task in the input stream.
	Index int
	Value R
	Err   error
}

type pendingOutcome[R any] struct {
	index  int
	future *Future[R]
	err    error // submission error, when future is nil
}

// RunStream consumes tasks from in and executes them on a new Pool configured by
// opts. Outcomes are emitted in input order on the returned channel, which is
// closed after the last one. A non-nil error is returned only for setup failures.
//
// Lifecycle:
//   - Intake stops when in is closed or ctx is done.
//   - Tasks already submitted always run; once ctx is done their outcomes are
//     no longer delivered.
//   - The pool is stopped after the collector has observed every submitted task.
func RunStream[R any](ctx context.Context, in <-chan Task[R], opts ...Option) (<-chan Outcome[R], error) {
	p, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	pending := make(chan pendingOutcome[R], p.Workers())
	out := make(chan Outcome[R], p.Workers())

	var g errgroup.Group
	g.Go(func() error {
		defer close(pending)
		return intake(ctx, p, in, pending)
	})
	g.Go(func() error {
		defer close(out)
		emit(ctx, pending, out)
		return nil
	})

	go func() {
		_ = g.Wait()
		p.Stop()
	}()

	return out, nil
}

// intake submits tasks in arrival order and forwards their futures to pending.
func intake[R any](ctx context.Context, p *Pool, in <-chan Task[R], pending chan<- pendingOutcome[R]) error {
	for i := 0; ; i++ {
		var t Task[R]
		select {
		case <-ctx.Done():
			return ctx.Err()
		case next, ok := <-in:
			if !ok {
				return nil
			}
			t = next
		}

		f, err := Submit(p, t)
		select {
		case pending <- pendingOutcome[R]{index: i, future: f, err: err}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// emit resolves pending futures in order and delivers their outcomes.
func emit[R any](ctx context.Context, pending <-chan pendingOutcome[R], out chan<- Outcome[R]) {
	for po := range pending {
		o := Outcome[R]{Index: po.index, Err: po.err}
		if po.future != nil {
			o.Value, o.Err = po.future.Get()
		}
		select {
		case out <- o:
		case <-ctx.Done():
		}
	}
}
