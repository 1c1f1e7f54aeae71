package taskpool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/taskpool"
)

// helper: collect from an outcome channel until it closes or timeout expires.
func collectOutcomesWithTimeout[R any](t *testing.T, ch <-chan taskpool.Outcome[R], d time.Duration) []taskpool.Outcome[R] {
	t.Helper()
	res := make([]taskpool.Outcome[R], 0)
	deadline := time.After(d)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return res
			}
			res = append(res, v)
		case <-deadline:
			t.Fatalf("outcome channel not closed after %v", d)
			return res
		}
	}
}

func TestRunStream_HappyPathInOrder(t *testing.T) {
	in := make(chan taskpool.Task[int], 8)

	out, err := taskpool.RunStream(context.Background(), in, taskpool.WithWorkers(4))
	require.NoError(t, err)

	const n = 10
	for i := 0; i < n; i++ {
		in <- taskpool.TaskValue(func(context.Context) int {
			time.Sleep(time.Duration(n-i) * time.Millisecond)
			return i
		})
	}
	close(in)

	outcomes := collectOutcomesWithTimeout(t, out, 2*time.Second)
	require.Len(t, outcomes, n)
	for i, o := range outcomes {
		require.NoError(t, o.Err)
		require.Equal(t, i, o.Index)
		require.Equal(t, i, o.Value)
	}
}

func TestRunStream_ErrorsAndNilTasks(t *testing.T) {
	boom := errors.New("boom")
	in := make(chan taskpool.Task[string], 3)
	in <- taskpool.TaskValue(func(context.Context) string { return "a" })
	in <- nil
	in <- taskpool.TaskFunc(func(context.Context) (string, error) { return "", boom })
	close(in)

	out, err := taskpool.RunStream(context.Background(), in, taskpool.WithWorkers(2))
	require.NoError(t, err)

	outcomes := collectOutcomesWithTimeout(t, out, 2*time.Second)
	require.Len(t, outcomes, 3)
	require.Equal(t, "a", outcomes[0].Value)
	require.NoError(t, outcomes[0].Err)
	require.ErrorIs(t, outcomes[1].Err, taskpool.ErrNilTask)
	require.ErrorIs(t, outcomes[2].Err, boom)
}

func TestRunStream_ContextCancelClosesOutput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan taskpool.Task[int])
	out, err := taskpool.RunStream(ctx, in, taskpool.WithWorkers(1))
	require.NoError(t, err)

	in <- taskpool.TaskValue(func(context.Context) int { return 1 })
	select {
	case o := <-out:
		require.Equal(t, 1, o.Value)
	case <-time.After(time.Second):
		t.Fatal("first outcome not delivered")
	}

	// in is never closed; cancellation alone ends the stream
	cancel()
	collectOutcomesWithTimeout(t, out, 2*time.Second)
}

func TestRunStream_InvalidOptions(t *testing.T) {
	out, err := taskpool.RunStream[int](context.Background(), nil, taskpool.WithWorkers(0))
	require.ErrorIs(t, err, taskpool.ErrInvalidConfig)
	require.Nil(t, out)
}
