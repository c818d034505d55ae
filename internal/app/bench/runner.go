// Package bench measures tally strategies against generated collections of
// increasing size and cross-checks their results.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/progress-tally/internal/app/fixtures"
	"github.com/ahrav/progress-tally/internal/app/tally"
	"github.com/ahrav/progress-tally/internal/domain/progress"
	"github.com/ahrav/progress-tally/pkg/common/logger"
	"github.com/ahrav/progress-tally/pkg/common/otel"
)

var (
	// ErrStrategyMismatch means two strategies disagreed on the same input.
	ErrStrategyMismatch = errors.New("tally strategies disagree")
	// ErrUnexpectedTally means a tally differs from the generator's known
	// distribution.
	ErrUnexpectedTally = errors.New("tally differs from expected distribution")
	// ErrNoCounters is returned when a run has nothing to measure.
	ErrNoCounters = errors.New("no counters to benchmark")
)

// Config describes one benchmark run.
type Config struct {
	Target   progress.Status
	Counters []tally.Counter
	// Sizes are passed to the generator one at a time; each produces a
	// collection of Maps maps.
	Sizes      []int
	Maps       int
	Iterations int
	Warmup     int
}

// Measurement is the outcome of timing one counter on one collection.
type Measurement struct {
	Strategy tally.Strategy `yaml:"strategy"`
	Size     int            `yaml:"size"`
	Maps     int            `yaml:"maps"`
	Entries  int            `yaml:"entries"`
	Result   int            `yaml:"result"`
	Stats    Stats          `yaml:"stats"`
}

// Report collects every measurement of a run.
type Report struct {
	RunID        uuid.UUID       `yaml:"run_id"`
	Target       progress.Status `yaml:"target"`
	StartedAt    time.Time       `yaml:"started_at"`
	FinishedAt   time.Time       `yaml:"finished_at"`
	Measurements []Measurement   `yaml:"measurements"`
}

// Runner executes benchmark runs.
type Runner struct {
	logger *logger.Logger
	tracer trace.Tracer
	tally  *tally.Service

	timeNow func() time.Time
}

// NewRunner creates a Runner that reports each verified tally through svc.
func NewRunner(log *logger.Logger, tracer trace.Tracer, svc *tally.Service) *Runner {
	return &Runner{
		logger:  log.With("component", "bench"),
		tracer:  tracer,
		tally:   svc,
		timeNow: time.Now,
	}
}

// Run measures every counter on every size. Timed iterations call the
// counter directly so instrumentation does not skew the samples; one extra
// call per measurement goes through the tally service and is the value that
// gets verified and reported.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Report, error) {
	if len(cfg.Counters) == 0 {
		return nil, ErrNoCounters
	}

	report := &Report{
		RunID:     uuid.New(),
		Target:    cfg.Target,
		StartedAt: r.timeNow(),
	}

	ctx, span := otel.AddSpan(ctx, r.tracer, "bench.run",
		attribute.String("run_id", report.RunID.String()),
		attribute.String("target", cfg.Target.String()),
		attribute.Int("sizes", len(cfg.Sizes)),
		attribute.Int("maps", cfg.Maps),
	)
	defer span.End()

	log := r.logger.With("run_id", report.RunID.String())
	log.Info(ctx, "benchmark started",
		"target", cfg.Target,
		"sizes", len(cfg.Sizes),
		"counters", len(cfg.Counters),
		"iterations", cfg.Iterations,
	)

	for _, size := range cfg.Sizes {
		ms, err := r.measureSize(ctx, cfg, size)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "benchmark failed")
			return nil, err
		}
		report.Measurements = append(report.Measurements, ms...)
	}

	report.FinishedAt = r.timeNow()
	log.Info(ctx, "benchmark finished",
		"measurements", len(report.Measurements),
		"elapsed", report.FinishedAt.Sub(report.StartedAt),
	)

	return report, nil
}

func (r *Runner) measureSize(ctx context.Context, cfg Config, size int) ([]Measurement, error) {
	c := fixtures.GenerateCollection(cfg.Maps, size)
	entries := c.Len()

	want := 0
	if cfg.Maps > 0 {
		want = cfg.Maps * fixtures.Distribution(size)[cfg.Target]
	}

	ms := make([]Measurement, 0, len(cfg.Counters))
	for _, counter := range cfg.Counters {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("benchmark interrupted at size %d: %w", size, err)
		}

		for range cfg.Warmup {
			_ = counter.Count(c, cfg.Target)
		}

		samples := make([]time.Duration, cfg.Iterations)
		for i := range samples {
			start := time.Now()
			_ = counter.Count(c, cfg.Target)
			samples[i] = time.Since(start)
		}

		got := r.tally.Tally(ctx, counter, c, cfg.Target)
		if len(ms) > 0 && ms[0].Result != got {
			return nil, fmt.Errorf("%w: %s=%d %s=%d at size %d",
				ErrStrategyMismatch, ms[0].Strategy, ms[0].Result, counter.Strategy(), got, size)
		}
		if got != want {
			return nil, fmt.Errorf("%w: %s counted %d %s entries at size %d, want %d",
				ErrUnexpectedTally, counter.Strategy(), got, cfg.Target, size, want)
		}

		m := Measurement{
			Strategy: counter.Strategy(),
			Size:     size,
			Maps:     len(c),
			Entries:  entries,
			Result:   got,
			Stats:    summarize(samples),
		}
		ms = append(ms, m)

		r.logger.Debug(ctx, "measured",
			"strategy", m.Strategy,
			"size", size,
			"result", got,
			"median", m.Stats.Median,
		)
	}

	return ms, nil
}
