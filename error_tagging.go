package taskpool

import (
	"errors"
	"fmt"
)

// TaskMetaError exposes correlation metadata for a task failure.
// Errors stored in futures implement it when WithErrorTagging is enabled.
type TaskMetaError interface {
	error
	Unwrap() error
	TaskIndex() (uint64, bool)
}

type taskTaggedError struct {
	err   error
	index uint64
}

func newTaskTaggedError(err error, index uint64) error {
	if err == nil {
		return nil
	}
	return &taskTaggedError{err: err, index: index}
}

func (e *taskTaggedError) Error() string { return e.err.Error() }
func (e *taskTaggedError) Unwrap() error { return e.err }

// TaskIndex returns the submission index (0-based, pool-wide) of the failed task.
func (e *taskTaggedError) TaskIndex() (uint64, bool) { return e.index, true }

func (e *taskTaggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "task(index=%d): %+v", e.index, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractTaskIndex returns the submission index carried by err, if any.
func ExtractTaskIndex(err error) (uint64, bool) {
	var tme TaskMetaError
	if errors.As(err, &tme) {
		return tme.TaskIndex()
	}
	return 0, false
}
