// Package envloader loads configuration from command-line flags, TALLY_*
// environment variables and an optional config file, in that order of
// precedence, on top of config.Default.
package envloader

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ahrav/progress-tally/internal/config"
	"github.com/ahrav/progress-tally/internal/config/fileloader"
)

// EnvPrefix is prepended to every environment variable, e.g. TALLY_FIXTURE_MAPS.
const EnvPrefix = "TALLY"

// flagKeys maps a flag name to the config key it overrides.
var flagKeys = map[string]string{
	"log-level":      "log.level",
	"maps":           "fixture.maps",
	"size":           "fixture.size",
	"strategy":       "tally.strategy",
	"target":         "tally.target",
	"workers":        "tally.workers",
	"chunk-size":     "tally.chunk_size",
	"strategies":     "bench.strategies",
	"iterations":     "bench.iterations",
	"warmup":         "bench.warmup",
	"format":         "bench.format",
	"otlp-endpoint":  "telemetry.endpoint",
	"sampling-ratio": "telemetry.sampling_ratio",
	"debug-addr":     "debug.addr",
}

// NewFlagSet returns the flags understood by the loader. Defaults shown in
// usage come from config.Default.
func NewFlagSet(name string) *pflag.FlagSet {
	d := config.Default()

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "path to a YAML config file")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.Int("maps", d.Fixture.Maps, "number of maps per generated collection")
	fs.Int("size", d.Fixture.Size, "size passed to the generator for each map")
	fs.String("strategy", d.Tally.Strategy, "tally strategy for count (sequential, parallel)")
	fs.String("target", d.Tally.Target, "status to count (none, partial, complete)")
	fs.Int("workers", d.Tally.Workers, "parallel worker limit, 0 for GOMAXPROCS")
	fs.Int("chunk-size", d.Tally.ChunkSize, "maps per parallel task, 0 for one")
	fs.StringSlice("strategies", d.Bench.Strategies, "strategies to benchmark")
	fs.String("ranges", "", "benchmark size ranges, e.g. 0-100,900-1001")
	fs.Int("iterations", d.Bench.Iterations, "timed iterations per measurement")
	fs.Int("warmup", d.Bench.Warmup, "untimed iterations per measurement")
	fs.String("format", string(d.Bench.Format), "report format (text, yaml)")
	fs.String("otlp-endpoint", d.Telemetry.Endpoint, "OTLP gRPC endpoint, empty to disable export")
	fs.Float64("sampling-ratio", d.Telemetry.SamplingRatio, "trace sampling ratio")
	fs.String("debug-addr", d.Debug.Addr, "debug server address, empty to disable")
	return fs
}

// Loader resolves configuration through viper.
type Loader struct {
	flags *pflag.FlagSet
}

var _ config.Loader = (*Loader)(nil)

// New creates a Loader bound to a parsed flag set from NewFlagSet.
func New(flags *pflag.FlagSet) *Loader {
	return &Loader{flags: flags}
}

// Load implements config.Loader. The config file, when given, is read by
// fileloader and becomes the base that environment variables and flags
// override.
func (l *Loader) Load(ctx context.Context) (*config.Config, error) {
	base := config.Default()
	if path := l.flagString("config"); path != "" {
		fileCfg, err := fileloader.NewFileLoader(path).Load(ctx)
		if err != nil {
			return nil, err
		}
		base = *fileCfg
	}

	v := viper.New()
	setDefaults(v, base)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := l.flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", name, err)
		}
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if s := l.flagString("ranges"); s != "" {
		ranges, err := config.ParseSizeRanges(s)
		if err != nil {
			return nil, err
		}
		cfg.Bench.Ranges = ranges
	}

	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *Loader) flagString(name string) string {
	f := l.flags.Lookup(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}

func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("fixture.maps", d.Fixture.Maps)
	v.SetDefault("fixture.size", d.Fixture.Size)
	v.SetDefault("tally.strategy", d.Tally.Strategy)
	v.SetDefault("tally.target", d.Tally.Target)
	v.SetDefault("tally.workers", d.Tally.Workers)
	v.SetDefault("tally.chunk_size", d.Tally.ChunkSize)
	v.SetDefault("bench.strategies", d.Bench.Strategies)
	v.SetDefault("bench.ranges", d.Bench.Ranges)
	v.SetDefault("bench.iterations", d.Bench.Iterations)
	v.SetDefault("bench.warmup", d.Bench.Warmup)
	v.SetDefault("bench.format", string(d.Bench.Format))
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
	v.SetDefault("telemetry.service_name", d.Telemetry.ServiceName)
	v.SetDefault("telemetry.sampling_ratio", d.Telemetry.SamplingRatio)
	v.SetDefault("debug.addr", d.Debug.Addr)
}
