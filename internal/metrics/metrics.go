// Package metrics instruments the collection cycle with OpenTelemetry
// counters and a duration histogram, read by whatever metrics backend the
// OTLP/gRPC exporter configured in internal/telemetry.InitMeterProvider
// points at. The teacher's go-core/telemetry package wires up a
// MeterProvider in every service but none of them actually record an
// instrument anywhere in the retrieved pack — this package fills that gap
// for the Orchestrator, using the same otel.Meter(name) convention the
// MeterProvider setup implies.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/dronewatch/dronewatch/internal/orchestrator"

// Collector records per-source collection-cycle outcomes: how many raw
// reports a Collector found, how many were ingested as new or merged,
// how many were skipped or errored, and how long a cycle took.
type Collector struct {
	found     metric.Int64Counter
	ingested  metric.Int64Counter
	skipped   metric.Int64Counter
	errors    metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewCollector builds the Orchestrator's instrument set against the
// process-global MeterProvider (set by telemetry.InitMeterProvider).
func NewCollector() (*Collector, error) {
	meter := otel.Meter(meterName)

	found, err := meter.Int64Counter("dronewatch.collector.reports_found",
		metric.WithDescription("raw reports returned by a Collector in one cycle"))
	if err != nil {
		return nil, err
	}
	ingested, err := meter.Int64Counter("dronewatch.collector.reports_ingested",
		metric.WithDescription("reports that produced a created or merged incident"))
	if err != nil {
		return nil, err
	}
	skipped, err := meter.Int64Counter("dronewatch.collector.reports_skipped",
		metric.WithDescription("reports short-circuited by the scraper cache"))
	if err != nil {
		return nil, err
	}
	errs, err := meter.Int64Counter("dronewatch.collector.errors",
		metric.WithDescription("collector or ingest failures"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("dronewatch.collector.cycle_duration_seconds",
		metric.WithDescription("wall-clock time of one source's collect+ingest pass"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Collector{found: found, ingested: ingested, skipped: skipped, errors: errs, duration: duration}, nil
}

// RecordSource records the outcome of one source's collection pass.
func (c *Collector) RecordSource(ctx context.Context, sourceKey string, found, ingested, skipped, errorCount int, seconds float64) {
	attrs := metric.WithAttributes(sourceAttr(sourceKey))
	c.found.Add(ctx, int64(found), attrs)
	c.ingested.Add(ctx, int64(ingested), attrs)
	c.skipped.Add(ctx, int64(skipped), attrs)
	c.errors.Add(ctx, int64(errorCount), attrs)
	c.duration.Record(ctx, seconds, attrs)
}

func sourceAttr(sourceKey string) attribute.KeyValue {
	return attribute.String("source", sourceKey)
}
