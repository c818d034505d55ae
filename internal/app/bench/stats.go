package bench

import (
	"math"
	"slices"
	"time"
)

// Stats summarizes the wall-clock samples of one measurement.
type Stats struct {
	Samples int           `yaml:"samples"`
	Min     time.Duration `yaml:"min"`
	Max     time.Duration `yaml:"max"`
	Mean    time.Duration `yaml:"mean"`
	Median  time.Duration `yaml:"median"`
	StdDev  time.Duration `yaml:"std_dev"`
}

// summarize computes Stats for samples. It sorts a copy; the input is left
// untouched.
func summarize(samples []time.Duration) Stats {
	if len(samples) == 0 {
		return Stats{}
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var sum float64
	for _, d := range sorted {
		sum += float64(d)
	}
	mean := sum / float64(len(sorted))

	var sq float64
	for _, d := range sorted {
		diff := float64(d) - mean
		sq += diff * diff
	}

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return Stats{
		Samples: len(sorted),
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Mean:    time.Duration(mean),
		Median:  median,
		StdDev:  time.Duration(math.Sqrt(sq / float64(len(sorted)))),
	}
}
