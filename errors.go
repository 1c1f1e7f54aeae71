package taskpool

import "errors"

const Namespace = "taskpool"

var (
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
	ErrPoolStopped   = errors.New(Namespace + ": cannot submit a task to a stopped pool")
	ErrNilTask       = errors.New(Namespace + ": cannot submit a nil task")
	ErrTaskPanicked  = errors.New(Namespace + ": task execution panicked")
)
