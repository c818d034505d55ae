package tally

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ahrav/progress-tally/internal/app/fixtures"
	"github.com/ahrav/progress-tally/internal/domain/progress"
	"github.com/ahrav/progress-tally/pkg/common/logger"
)

func TestService_Tally_ReturnsCounterResult(t *testing.T) {
	svc := NewService(logger.Noop(), noop.NewTracerProvider().Tracer("test"), nil)
	c := fixtures.GenerateCollection(4, 100)

	assert.Equal(t, 100, svc.Tally(context.Background(), Sequential{}, c, progress.StatusComplete))
	assert.Equal(t, 100, svc.Tally(context.Background(), NewParallel(), c, progress.StatusComplete))
}

func TestService_Tally_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	svc := NewService(logger.Noop(), tp.Tracer("test"), nil)
	c := progress.Collection{fixtures.Generate("a", 3)}

	n := svc.Tally(context.Background(), Sequential{}, c, progress.StatusNone)
	require.Equal(t, 2, n)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "tally.count", spans[0].Name())

	attrs := make(map[string]any)
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "sequential", attrs["strategy"])
	assert.Equal(t, "NONE", attrs["target"])
	assert.EqualValues(t, 1, attrs["maps"])
	assert.EqualValues(t, 4, attrs["entries"])
	assert.EqualValues(t, 2, attrs["result"])
}

func TestService_Tally_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp)
	require.NoError(t, err)

	svc := NewService(logger.Noop(), noop.NewTracerProvider().Tracer("test"), m)
	c := fixtures.GenerateCollection(2, 9)

	svc.Tally(context.Background(), Sequential{}, c, progress.StatusComplete)
	svc.Tally(context.Background(), NewParallel(), c, progress.StatusComplete)
	svc.Tally(context.Background(), NewParallel(), c, progress.StatusPartial)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := make(map[string]metricdata.Metrics)
	for _, met := range rm.ScopeMetrics[0].Metrics {
		byName[met.Name] = met
	}

	ops, ok := byName["tally_operations_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	perStrategy := make(map[string]int64)
	for _, dp := range ops.DataPoints {
		v, _ := dp.Attributes.Value("strategy")
		perStrategy[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"sequential": 1, "parallel": 2}, perStrategy)

	scanned, ok := byName["tally_entries_scanned_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range scanned.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3*c.Len()), total)

	_, ok = byName["tally_duration_seconds"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)
}
