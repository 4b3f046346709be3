package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusExporter implements Exporter on a Prometheus registry.
type PrometheusExporter struct {
	eventsTotal       *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// PrometheusConfig holds Prometheus-specific configuration.
type PrometheusConfig struct {
	// Registry to register metrics with. Defaults to the default
	// registerer.
	Registry prometheus.Registerer

	// Names overrides the default metric names.
	Names *MetricNames

	// DurationBuckets overrides the histogram buckets for operation
	// durations, in seconds.
	DurationBuckets []float64
}

// NewPrometheusExporter creates and registers the cache metrics.
func NewPrometheusExporter(config *PrometheusConfig) (*PrometheusExporter, error) {
	if config == nil {
		config = &PrometheusConfig{}
	}

	registry := config.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	names := DefaultMetricNames()
	if config.Names != nil {
		names = *config.Names
	}

	buckets := config.DurationBuckets
	if buckets == nil {
		buckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	}

	p := &PrometheusExporter{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: names.EventsTotal,
			Help: "Total cache events by tag and event type",
		}, []string{"tag", "event"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    names.OperationDuration,
			Help:    "Duration of cache call phases in seconds",
			Buckets: buckets,
		}, []string{"tag", "operation"}),
	}

	for _, c := range []prometheus.Collector{p.eventsTotal, p.operationDuration} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return p, nil
}

func (p *PrometheusExporter) RecordEvent(tag string, event Event) error {
	p.eventsTotal.WithLabelValues(tag, string(event)).Inc()
	return nil
}

func (p *PrometheusExporter) RecordDuration(tag string, op Operation, d time.Duration) error {
	p.operationDuration.WithLabelValues(tag, string(op)).Observe(d.Seconds())
	return nil
}

func (p *PrometheusExporter) Close() error {
	return nil
}
