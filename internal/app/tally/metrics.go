package tally

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TallyMetrics defines the metrics recorded around each tally.
type TallyMetrics interface {
	ObserveTally(ctx context.Context, strategy Strategy, entries int, duration time.Duration)
}

// Metrics implements TallyMetrics.
type Metrics struct {
	operations     metric.Int64Counter
	entriesScanned metric.Int64Counter
	duration       metric.Float64Histogram
}

const namespace = "tally"

// NewMetrics creates the tally instruments on the given meter provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(namespace, metric.WithInstrumentationVersion("v0.1.0"))

	m := new(Metrics)
	var err error

	if m.operations, err = meter.Int64Counter(
		"tally_operations_total",
		metric.WithDescription("Total number of tally operations"),
	); err != nil {
		return nil, err
	}

	if m.entriesScanned, err = meter.Int64Counter(
		"tally_entries_scanned_total",
		metric.WithDescription("Total number of map entries visited by tally operations"),
	); err != nil {
		return nil, err
	}

	if m.duration, err = meter.Float64Histogram(
		"tally_duration_seconds",
		metric.WithDescription("Wall-clock time spent in a single tally operation"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// ObserveTally records one completed tally.
func (m *Metrics) ObserveTally(ctx context.Context, strategy Strategy, entries int, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("strategy", strategy.String()))
	m.operations.Add(ctx, 1, attrs)
	m.entriesScanned.Add(ctx, int64(entries), attrs)
	m.duration.Record(ctx, duration.Seconds(), attrs)
}
