package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/ahrav/progress-tally/internal/app/bench"
	"github.com/ahrav/progress-tally/internal/app/fixtures"
	"github.com/ahrav/progress-tally/internal/app/tally"
	"github.com/ahrav/progress-tally/internal/config"
	"github.com/ahrav/progress-tally/internal/config/envloader"
	"github.com/ahrav/progress-tally/internal/domain/progress"
	"github.com/ahrav/progress-tally/pkg/common/debug"
	"github.com/ahrav/progress-tally/pkg/common/logger"
	"github.com/ahrav/progress-tally/pkg/common/otel"
)

var build = "develop"

const serviceType = "progress-tally"

const usage = `usage: tally [count|bench] [flags]

  count  tally one generated collection and print the result
  bench  benchmark every configured strategy over the configured size ranges

flags:
`

func main() {
	// Set the correct number of threads for the worker pool.
	_, _ = maxprocs.Set()

	fs := envloader.NewFlagSet("tally")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cmd, err := command(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := envloader.New(fs).Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	hostname, err := os.Hostname()
	if err != nil {
		log.Fatalf("failed to get hostname: %v", err)
	}

	logEvents := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			errorAttrs := map[string]any{
				"error_message": r.Message,
				"error_time":    r.Time.UTC().Format(time.RFC3339),
				"trace_id":      otel.GetTraceID(ctx),
			}
			for k, v := range r.Attributes {
				errorAttrs[k] = v
			}

			errorAttrsJSON, err := json.Marshal(errorAttrs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to marshal error attributes: %v\n", err)
				return
			}
			fmt.Fprintf(os.Stderr, "Error event: %s, details: %s\n", r.Message, errorAttrsJSON)
		},
	}

	metadata := map[string]string{
		"hostname": hostname,
		"build":    build,
		"app":      serviceType,
		"command":  cmd,
	}

	// Results go to stdout; logs stay on stderr.
	lg := logger.NewWithMetadata(os.Stderr, logger.ParseLevel(cfg.Log.Level), cfg.Telemetry.ServiceName,
		otel.GetTraceID, logEvents, metadata)

	if err := run(ctx, lg, cfg, cmd, hostname, os.Stdout); err != nil {
		lg.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

// command picks the subcommand from the positional arguments left after flag
// parsing, so flags may appear before or after it.
func command(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "bench", nil
	case 1:
		if args[0] == "count" || args[0] == "bench" {
			return args[0], nil
		}
		return "", fmt.Errorf("unknown command %q", args[0])
	default:
		return "", fmt.Errorf("unexpected arguments %q", args[1:])
	}
}

func run(ctx context.Context, log *logger.Logger, cfg *config.Config, cmd, hostname string, out io.Writer) error {
	// -------------------------------------------------------------------------
	// GOMAXPROCS
	log.Info(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "command", cmd)

	// -------------------------------------------------------------------------
	// Start Telemetry Support
	log.Info(ctx, "startup", "status", "initializing telemetry support")

	providers, teardown, err := otel.InitTelemetry(log, otel.Config{
		ServiceName:      cfg.Telemetry.ServiceName,
		ExporterEndpoint: cfg.Telemetry.Endpoint,
		Probability:      cfg.Telemetry.SamplingRatio,
		ResourceAttributes: map[string]string{
			"library.language": "go",
			"host.name":        hostname,
		},
		InsecureExporter: true,
	})
	if err != nil {
		return fmt.Errorf("starting telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		teardown(shutdownCtx)
	}()

	tracer := providers.TracerProvider.Tracer(cfg.Telemetry.ServiceName)

	metrics, err := tally.NewMetrics(providers.MeterProvider)
	if err != nil {
		return fmt.Errorf("creating tally metrics: %w", err)
	}
	svc := tally.NewService(log, tracer, metrics)

	// -------------------------------------------------------------------------
	// Start Debug Service
	if cfg.Debug.Addr != "" {
		if err := debug.Start(ctx, log, cfg.Debug.Addr); err != nil {
			return fmt.Errorf("starting debug server: %w", err)
		}
	}

	target, err := progress.ParseStatus(cfg.Tally.Target)
	if err != nil {
		return err
	}

	parallelOpts := []tally.ParallelOption{
		tally.WithWorkers(cfg.Tally.Workers),
		tally.WithChunkSize(cfg.Tally.ChunkSize),
	}

	switch cmd {
	case "count":
		strategy, err := tally.ParseStrategy(cfg.Tally.Strategy)
		if err != nil {
			return err
		}
		counter, err := tally.New(strategy, parallelOpts...)
		if err != nil {
			return err
		}

		c := fixtures.GenerateCollection(cfg.Fixture.Maps, cfg.Fixture.Size)
		n := svc.Tally(ctx, counter, c, target)
		if _, err := fmt.Fprintln(out, n); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
		return nil

	case "bench":
		counters := make([]tally.Counter, 0, len(cfg.Bench.Strategies))
		for _, name := range cfg.Bench.Strategies {
			strategy, err := tally.ParseStrategy(name)
			if err != nil {
				return err
			}
			counter, err := tally.New(strategy, parallelOpts...)
			if err != nil {
				return err
			}
			counters = append(counters, counter)
		}

		var sizes []int
		for _, r := range cfg.Bench.Ranges {
			sizes = append(sizes, r.Sizes()...)
		}

		reporter, err := bench.NewReporter(string(cfg.Bench.Format), out)
		if err != nil {
			return err
		}

		runner := bench.NewRunner(log, tracer, svc)
		report, err := runner.Run(ctx, bench.Config{
			Target:     target,
			Counters:   counters,
			Sizes:      sizes,
			Maps:       cfg.Fixture.Maps,
			Iterations: cfg.Bench.Iterations,
			Warmup:     cfg.Bench.Warmup,
		})
		if err != nil {
			return fmt.Errorf("running benchmark: %w", err)
		}
		return reporter.Write(report)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
