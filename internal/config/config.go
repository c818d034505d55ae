package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/progress-tally/internal/domain/progress"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// OutputFormat enumerates the supported benchmark report formats.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatYAML OutputFormat = "yaml"
)

// Config represents the top-level configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Fixture   FixtureConfig   `yaml:"fixture" mapstructure:"fixture"`
	Tally     TallyConfig     `yaml:"tally" mapstructure:"tally"`
	Bench     BenchConfig     `yaml:"bench" mapstructure:"bench"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
	Debug     DebugConfig     `yaml:"debug" mapstructure:"debug"`
}

// LogConfig controls the service logger.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
}

// FixtureConfig holds the two size parameters used to generate synthetic
// collections: how many maps, and the size passed to the generator for each.
type FixtureConfig struct {
	Maps int `yaml:"maps" mapstructure:"maps" validate:"gte=0"`
	Size int `yaml:"size" mapstructure:"size" validate:"gte=0"`
}

// TallyConfig selects the counting strategy and what to count.
type TallyConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy" validate:"oneof=sequential parallel"`
	Target   string `yaml:"target" mapstructure:"target" validate:"required"`

	// Workers bounds the parallel strategy's concurrency. Zero means GOMAXPROCS.
	Workers int `yaml:"workers,omitempty" mapstructure:"workers" validate:"gte=0"`
	// ChunkSize is the number of maps per parallel task. Zero means one.
	ChunkSize int `yaml:"chunk_size,omitempty" mapstructure:"chunk_size" validate:"gte=0"`
}

// BenchConfig drives the benchmark runner.
type BenchConfig struct {
	Strategies []string     `yaml:"strategies" mapstructure:"strategies" validate:"min=1,dive,oneof=sequential parallel"`
	Ranges     []SizeRange  `yaml:"ranges" mapstructure:"ranges" validate:"min=1,dive"`
	Iterations int          `yaml:"iterations" mapstructure:"iterations" validate:"gte=1"`
	Warmup     int          `yaml:"warmup" mapstructure:"warmup" validate:"gte=0"`
	Format     OutputFormat `yaml:"format" mapstructure:"format" validate:"oneof=text yaml"`
}

// SizeRange is a half-open range [From, To) of map sizes to benchmark.
type SizeRange struct {
	From int `yaml:"from" mapstructure:"from" validate:"gte=0"`
	To   int `yaml:"to" mapstructure:"to" validate:"gtefield=From"`
}

// Sizes expands the range into its individual sizes.
func (r SizeRange) Sizes() []int {
	if r.To <= r.From {
		return nil
	}
	sizes := make([]int, 0, r.To-r.From)
	for s := r.From; s < r.To; s++ {
		sizes = append(sizes, s)
	}
	return sizes
}

// String renders the range as "from-to".
func (r SizeRange) String() string { return fmt.Sprintf("%d-%d", r.From, r.To) }

// ParseSizeRanges parses a comma separated list of "from-to" ranges, e.g.
// "0-100,900-1001". A bare number N is the single-size range N-(N+1).
func ParseSizeRanges(s string) ([]SizeRange, error) {
	var ranges []SizeRange
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		from, to, isRange := strings.Cut(part, "-")
		lo, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("%w: size range %q: %w", ErrInvalidConfig, part, err)
		}
		hi := lo + 1
		if isRange {
			if hi, err = strconv.Atoi(strings.TrimSpace(to)); err != nil {
				return nil, fmt.Errorf("%w: size range %q: %w", ErrInvalidConfig, part, err)
			}
		}
		ranges = append(ranges, SizeRange{From: lo, To: hi})
	}
	return ranges, nil
}

// TelemetryConfig configures tracing and metrics export.
type TelemetryConfig struct {
	// Endpoint is the OTLP gRPC collector address. Empty disables export.
	Endpoint      string  `yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	ServiceName   string  `yaml:"service_name" mapstructure:"service_name" validate:"required"`
	SamplingRatio float64 `yaml:"sampling_ratio" mapstructure:"sampling_ratio" validate:"gte=0,lte=1"`
}

// DebugConfig configures the optional debug HTTP server.
type DebugConfig struct {
	// Addr is the listen address for pprof and statsviz. Empty disables it.
	Addr string `yaml:"addr,omitempty" mapstructure:"addr"`
}

// Default returns the configuration used when nothing is overridden. The
// benchmark ranges and collection size mirror the classic run: ten maps per
// collection, sizes 0-99 and 900-1000.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Fixture: FixtureConfig{
			Maps: 10,
			Size: 100,
		},
		Tally: TallyConfig{
			Strategy: "sequential",
			Target:   progress.StatusComplete.String(),
		},
		Bench: BenchConfig{
			Strategies: []string{"sequential", "parallel"},
			Ranges: []SizeRange{
				{From: 0, To: 100},
				{From: 900, To: 1001},
			},
			Iterations: 100,
			Warmup:     10,
			Format:     OutputFormatText,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "progress-tally",
			SamplingRatio: 0.05,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg for structural and semantic errors. Enumerated names
// are case-insensitive and are lower-cased in place before checking.
func Validate(cfg *Config) error {
	normalize(cfg)
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := progress.ParseStatus(cfg.Tally.Target); err != nil {
		return fmt.Errorf("%w: tally.target: %w", ErrInvalidConfig, err)
	}
	return nil
}

func normalize(cfg *Config) {
	lower := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	cfg.Log.Level = lower(cfg.Log.Level)
	cfg.Tally.Strategy = lower(cfg.Tally.Strategy)
	for i, s := range cfg.Bench.Strategies {
		cfg.Bench.Strategies[i] = lower(s)
	}
	cfg.Bench.Format = OutputFormat(lower(string(cfg.Bench.Format)))
}
