package taskpool

import (
	"sync"
)

// lifecycleCoordinator encapsulates the shutdown sequence of a Pool.
// It is a wiring helper: it owns only the done channel and orchestrates the
// stop flag, the worker join and the final bookkeeping in a fixed order.
//
// Close() is safe for concurrent calls; the sequence executes exactly once and
// every caller returns only after it has finished.
type lifecycleCoordinator struct {
	markStopping func()
	waitWorkers  func()
	onStopped    func()
	done         chan struct{}

	once sync.Once
}

func newLifecycleCoordinator(
	markStopping func(),
	waitWorkers func(),
	onStopped func(),
	done chan struct{},
) *lifecycleCoordinator {
	return &lifecycleCoordinator{
		markStopping: markStopping,
		waitWorkers:  waitWorkers,
		onStopped:    onStopped,
		done:         done,
	}
}

// Close executes the shutdown sequence exactly once:
// 1) set the stopping flag and wake every worker
// 2) wait for all workers to drain the queue and exit
// 3) run final bookkeeping (metrics, logs)
// 4) close done
func (lc *lifecycleCoordinator) Close() {
	lc.once.Do(func() {
		if lc.markStopping != nil {
			lc.markStopping()
		}
		if lc.waitWorkers != nil {
			lc.waitWorkers()
		}
		if lc.onStopped != nil {
			lc.onStopped()
		}
		if lc.done != nil {
			close(lc.done)
		}
	})
}
