// Package tally counts how many entries across a collection of status maps
// carry a given status. Two strategies are provided, a sequential fold and a
// fork-join over a bounded pool of goroutines, and both always agree.
package tally

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/progress-tally/internal/domain/progress"
)

// Strategy names a tally execution strategy.
type Strategy string

const (
	StrategySequential Strategy = "sequential"
	StrategyParallel   Strategy = "parallel"
)

// String returns the string representation of the Strategy.
func (s Strategy) String() string { return string(s) }

// ErrUnknownStrategy is returned for a strategy name that is not supported.
var ErrUnknownStrategy = errors.New("unknown tally strategy")

// ParseStrategy converts a case-insensitive name into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategySequential:
		return StrategySequential, nil
	case StrategyParallel:
		return StrategyParallel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Counter tallies entries matching a target status across a collection.
// Count is total and pure: it never fails and never mutates its input.
type Counter interface {
	Count(c progress.Collection, target progress.Status) int
	Strategy() Strategy
}

// New returns the Counter for the given strategy. Options only affect the
// parallel strategy.
func New(strategy Strategy, opts ...ParallelOption) (Counter, error) {
	switch strategy {
	case StrategySequential:
		return Sequential{}, nil
	case StrategyParallel:
		return NewParallel(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

var (
	_ Counter = Sequential{}
	_ Counter = (*Parallel)(nil)
)

// Sequential counts on the calling goroutine, map by map.
type Sequential struct{}

// Strategy implements Counter.
func (Sequential) Strategy() Strategy { return StrategySequential }

// Count implements Counter.
func (Sequential) Count(c progress.Collection, target progress.Status) int {
	total := 0
	for _, m := range c {
		total += progress.CountMap(m, target)
	}
	return total
}

// ParallelOption configures a Parallel counter.
type ParallelOption func(*Parallel)

// WithWorkers bounds how many chunks are counted at once. Values below one
// keep the default of GOMAXPROCS.
func WithWorkers(n int) ParallelOption {
	return func(p *Parallel) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithChunkSize sets how many maps each task counts. Values below one keep
// the default of one map per task.
func WithChunkSize(n int) ParallelOption {
	return func(p *Parallel) {
		if n > 0 {
			p.chunkSize = n
		}
	}
}

// Parallel splits a collection into disjoint chunks of maps, counts each
// chunk in its own goroutine and sums the per-chunk results once every task
// has finished. Each task writes only its own result slot.
type Parallel struct {
	workers   int
	chunkSize int
}

// NewParallel creates a Parallel counter sized to GOMAXPROCS unless
// overridden.
func NewParallel(opts ...ParallelOption) *Parallel {
	p := &Parallel{
		workers:   runtime.GOMAXPROCS(0),
		chunkSize: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Strategy implements Counter.
func (p *Parallel) Strategy() Strategy { return StrategyParallel }

// Workers returns the concurrency limit.
func (p *Parallel) Workers() int { return p.workers }

// ChunkSize returns the number of maps per task.
func (p *Parallel) ChunkSize() int { return p.chunkSize }

// Count implements Counter. A zero Parallel counts with the same defaults
// NewParallel applies.
func (p *Parallel) Count(c progress.Collection, target progress.Status) int {
	if len(c) == 0 {
		return 0
	}

	size := p.chunkSize
	if size <= 0 {
		size = 1
	}
	workers := p.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	chunks := (len(c) + size - 1) / size
	partials := make([]int, chunks)

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range chunks {
		lo := i * size
		hi := min(lo+size, len(c))
		g.Go(func() error {
			partials[i] = Sequential{}.Count(c[lo:hi], target)
			return nil
		})
	}
	// Tasks never return an error.
	_ = g.Wait()

	total := 0
	for _, n := range partials {
		total += n
	}
	return total
}
