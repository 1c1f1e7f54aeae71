package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusProvider_Instruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg, "taskpool", "test")

	c := p.Counter("tasks_completed", WithDescription("completed tasks"))
	c.Add(2)
	c.Add(-7) // ignored
	p.Counter("tasks_completed").Add(1)

	g := p.UpDownCounter("workers_busy")
	g.Add(3)
	g.Add(-1)

	h := p.Histogram("task_duration_seconds")
	h.Record(0.01)
	h.Record(0.2)

	pc := p.collectors["tasks_completed"].(prometheus.Counter)
	require.InDelta(t, 3.0, testutil.ToFloat64(pc), 1e-9)

	pg := p.collectors["workers_busy"].(prometheus.Gauge)
	require.InDelta(t, 2.0, testutil.ToFloat64(pg), 1e-9)

	n, err := testutil.GatherAndCount(reg, "taskpool_test_task_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestPrometheusProvider_SharedRegistererReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewPrometheusProvider(reg, "taskpool", "")
	b := NewPrometheusProvider(reg, "taskpool", "")

	a.Counter("tasks_submitted").Add(1)
	b.Counter("tasks_submitted").Add(4)

	pc := a.collectors["tasks_submitted"].(prometheus.Counter)
	require.InDelta(t, 5.0, testutil.ToFloat64(pc), 1e-9)
}

func TestPrometheusProvider_ConstLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg, "taskpool", "")
	p.Counter("tasks_failed", WithAttributes(map[string]string{"pool": "demo"})).Add(1)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Equal(t, "taskpool_tasks_failed", families[0].GetName())
	labels := families[0].GetMetric()[0].GetLabel()
	require.Len(t, labels, 1)
	require.Equal(t, "pool", labels[0].GetName())
	require.Equal(t, "demo", labels[0].GetValue())
}
