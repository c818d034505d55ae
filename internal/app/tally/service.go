package tally

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/progress-tally/internal/domain/progress"
	"github.com/ahrav/progress-tally/pkg/common/logger"
	"github.com/ahrav/progress-tally/pkg/common/otel"
)

// Service runs tallies with tracing, metrics and debug logging around them.
// It adds observability only; the result is always the Counter's result.
type Service struct {
	logger  *logger.Logger
	tracer  trace.Tracer
	metrics TallyMetrics
}

// NewService creates a Service. A nil metrics value disables metric
// recording.
func NewService(log *logger.Logger, tracer trace.Tracer, metrics TallyMetrics) *Service {
	return &Service{
		logger:  log.With("component", "tally"),
		tracer:  tracer,
		metrics: metrics,
	}
}

// Tally counts the entries in c whose status equals target using counter.
func (s *Service) Tally(
	ctx context.Context,
	counter Counter,
	c progress.Collection,
	target progress.Status,
) int {
	entries := c.Len()
	ctx, span := otel.AddSpan(ctx, s.tracer, "tally.count",
		attribute.String("strategy", counter.Strategy().String()),
		attribute.String("target", target.String()),
		attribute.Int("maps", len(c)),
		attribute.Int("entries", entries),
	)
	defer span.End()

	start := time.Now()
	n := counter.Count(c, target)
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Int("result", n))
	if s.metrics != nil {
		s.metrics.ObserveTally(ctx, counter.Strategy(), entries, elapsed)
	}
	s.logger.Debug(ctx, "tally complete",
		"strategy", counter.Strategy(),
		"target", target,
		"maps", len(c),
		"result", n,
		"duration", elapsed,
	)

	return n
}
