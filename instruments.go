package taskpool

import "github.com/ygrebnov/taskpool/metrics"

// Instrument names recorded by a Pool.
const (
	MetricTasksSubmitted = "tasks_submitted"
	MetricTasksRejected  = "tasks_rejected"
	MetricTasksCompleted = "tasks_completed"
	MetricTasksFailed    = "tasks_failed"
	MetricTasksPanicked  = "tasks_panicked"
	MetricTasksQueued    = "tasks_queued"
	MetricWorkersBusy    = "workers_busy"
	MetricTaskDuration   = "task_duration_seconds"
)

type instruments struct {
	submitted metrics.Counter
	rejected  metrics.Counter
	completed metrics.Counter
	failed    metrics.Counter
	panicked  metrics.Counter
	queued    metrics.UpDownCounter
	busy      metrics.UpDownCounter
	duration  metrics.Histogram
}

func newInstruments(p metrics.Provider) instruments {
	return instruments{
		submitted: p.Counter(MetricTasksSubmitted, metrics.WithDescription("Tasks accepted by Submit"), metrics.WithUnit("1")),
		rejected:  p.Counter(MetricTasksRejected, metrics.WithDescription("Submissions rejected because the pool was stopping"), metrics.WithUnit("1")),
		completed: p.Counter(MetricTasksCompleted, metrics.WithDescription("Tasks that returned without error"), metrics.WithUnit("1")),
		failed:    p.Counter(MetricTasksFailed, metrics.WithDescription("Tasks that returned an error or panicked"), metrics.WithUnit("1")),
		panicked:  p.Counter(MetricTasksPanicked, metrics.WithDescription("Tasks that panicked"), metrics.WithUnit("1")),
		queued:    p.UpDownCounter(MetricTasksQueued, metrics.WithDescription("Tasks waiting in the queue"), metrics.WithUnit("1")),
		busy:      p.UpDownCounter(MetricWorkersBusy, metrics.WithDescription("Workers currently executing a task"), metrics.WithUnit("1")),
		duration:  p.Histogram(MetricTaskDuration, metrics.WithDescription("Task execution time"), metrics.WithUnit("seconds")),
	}
}
