package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider exposes instruments as Prometheus collectors.
// Counters map to prometheus.Counter, up/down counters to prometheus.Gauge and
// histograms to prometheus.Histogram with prometheus.DefBuckets.
// Instrument attributes become constant labels.
type PrometheusProvider struct {
	namespace string
	subsystem string
	reg       prometheus.Registerer

	mu         sync.Mutex
	collectors map[string]prometheus.Collector
}

// NewPrometheusProvider returns a provider registering its collectors with reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewPrometheusProvider(reg prometheus.Registerer, namespace, subsystem string) *PrometheusProvider {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusProvider{
		namespace:  namespace,
		subsystem:  subsystem,
		reg:        reg,
		collectors: make(map[string]prometheus.Collector),
	}
}

// Counter returns a Prometheus-backed monotonic counter.
func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	c := p.collector(name, func(cfg InstrumentConfig) prometheus.Collector {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   p.namespace,
			Subsystem:   p.subsystem,
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
		})
	}, opts)
	return promCounter{c.(prometheus.Counter)}
}

// UpDownCounter returns a Prometheus gauge.
func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	g := p.collector(name, func(cfg InstrumentConfig) prometheus.Collector {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   p.namespace,
			Subsystem:   p.subsystem,
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
		})
	}, opts)
	return promGauge{g.(prometheus.Gauge)}
}

// Histogram returns a Prometheus histogram.
func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	h := p.collector(name, func(cfg InstrumentConfig) prometheus.Collector {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   p.namespace,
			Subsystem:   p.subsystem,
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.Attributes,
			Buckets:     prometheus.DefBuckets,
		})
	}, opts)
	return promHistogram{h.(prometheus.Histogram)}
}

func (p *PrometheusProvider) collector(
	name string, mk func(InstrumentConfig) prometheus.Collector, opts []InstrumentOption,
) prometheus.Collector {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.collectors[name]; ok {
		return c
	}

	c := mk(applyOptions(opts))
	if err := p.reg.Register(c); err != nil {
		// another provider sharing the registerer created it first
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			c = are.ExistingCollector
		}
	}
	p.collectors[name] = c
	return c
}

func help(name string, cfg InstrumentConfig) string {
	if cfg.Description != "" {
		return cfg.Description
	}
	return name
}

type promCounter struct{ c prometheus.Counter }

// Add ignores negative deltas, which Prometheus counters reject with a panic.
func (c promCounter) Add(n int64) {
	if n > 0 {
		c.c.Add(float64(n))
	}
}

type promGauge struct{ g prometheus.Gauge }

func (g promGauge) Add(n int64) { g.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Histogram }

func (h promHistogram) Record(v float64) { h.h.Observe(v) }
