// Package metrics exports cache observability data to monitoring
// systems. The Exporter abstraction keeps the decorator independent of
// any single backend; Prometheus and OpenTelemetry implementations are
// provided.
package metrics

import "time"

// Event classifies what happened during a decorated call.
type Event string

const (
	EventHit        Event = "hit"
	EventMiss       Event = "miss"
	EventStore      Event = "store"
	EventStoreError Event = "store_error"
	EventDecodeMiss Event = "decode_miss"
)

// Operation identifies the timed phases of a decorated call.
type Operation string

const (
	OperationLookup Operation = "lookup"
	OperationInvoke Operation = "invoke"
	OperationStore  Operation = "store"
)

// Exporter receives cache events and operation timings, labeled by the
// cache tag they belong to.
type Exporter interface {
	// RecordEvent counts one occurrence of event under tag.
	RecordEvent(tag string, event Event) error

	// RecordDuration records how long one phase of a call took.
	RecordDuration(tag string, op Operation, d time.Duration) error

	// Close shuts down the exporter and flushes pending metrics.
	Close() error
}

// MetricNames defines the metric identifiers shared by all exporters.
type MetricNames struct {
	EventsTotal       string
	OperationDuration string
}

// DefaultMetricNames returns the default, namespaced metric names.
func DefaultMetricNames() MetricNames {
	return MetricNames{
		EventsTotal:       "perscache_events_total",
		OperationDuration: "perscache_operation_duration_seconds",
	}
}
