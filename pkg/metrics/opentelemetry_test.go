package metrics

import (
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
)

func TestOpenTelemetryExporterRequiresMeter(t *testing.T) {
	if _, err := NewOpenTelemetryExporter(nil); err == nil {
		t.Fatal("Expected an error for a nil config")
	}
	if _, err := NewOpenTelemetryExporter(&OpenTelemetryConfig{}); err == nil {
		t.Fatal("Expected an error for a missing meter")
	}
}

func TestOpenTelemetryExporterRecords(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	exporter, err := NewOpenTelemetryExporter(&OpenTelemetryConfig{Meter: meter})
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}
	defer exporter.Close()

	if err := exporter.RecordEvent("users", EventHit); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}
	if err := exporter.RecordDuration("users", OperationLookup, time.Millisecond); err != nil {
		t.Fatalf("RecordDuration failed: %v", err)
	}
}
