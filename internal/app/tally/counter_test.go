package tally

import (
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/progress-tally/internal/app/fixtures"
	"github.com/ahrav/progress-tally/internal/domain/progress"
)

// counters returns every strategy under a spread of parallel settings.
func counters() []Counter {
	return []Counter{
		Sequential{},
		NewParallel(),
		NewParallel(WithWorkers(1)),
		NewParallel(WithWorkers(3), WithChunkSize(2)),
		NewParallel(WithWorkers(16), WithChunkSize(7)),
		NewParallel(WithChunkSize(1000)),
		&Parallel{},
	}
}

func counterName(c Counter) string {
	if p, ok := c.(*Parallel); ok {
		return fmt.Sprintf("%s/workers=%d/chunk=%d", p.Strategy(), p.Workers(), p.ChunkSize())
	}
	return c.Strategy().String()
}

// randomCollection builds maps of varying size, including empty ones, with
// random statuses.
func randomCollection(r *rand.Rand, maps int) progress.Collection {
	statuses := progress.AllStatuses()
	c := make(progress.Collection, maps)
	for i := range c {
		m := make(progress.StatusMap)
		for j := range r.Intn(50) {
			m["k"+strconv.Itoa(j)] = statuses[r.Intn(len(statuses))]
		}
		c[i] = m
	}
	return c
}

func bruteForce(c progress.Collection, target progress.Status) int {
	n := 0
	for _, m := range c {
		for _, s := range m {
			if s == target {
				n++
			}
		}
	}
	return n
}

func TestCount_SingleGeneratedMap(t *testing.T) {
	c := progress.Collection{fixtures.Generate("a", 3)}

	for _, counter := range counters() {
		t.Run(counterName(counter), func(t *testing.T) {
			assert.Equal(t, 1, counter.Count(c, progress.StatusComplete))
			assert.Equal(t, 1, counter.Count(c, progress.StatusPartial))
			assert.Equal(t, 2, counter.Count(c, progress.StatusNone))
		})
	}
}

func TestCount_TwoDisjointCompleteMaps(t *testing.T) {
	c := progress.Collection{
		{"m1": progress.StatusComplete},
		{"m2": progress.StatusComplete},
	}

	for _, counter := range counters() {
		t.Run(counterName(counter), func(t *testing.T) {
			assert.Equal(t, 2, counter.Count(c, progress.StatusComplete))
			assert.Zero(t, counter.Count(c, progress.StatusPartial))
		})
	}
}

func TestCount_EmptyInputs(t *testing.T) {
	inputs := map[string]progress.Collection{
		"nil collection":   nil,
		"empty collection": {},
		"one empty map":    {{}},
		"many empty maps":  {{}, {}, nil, {}},
	}

	for _, counter := range counters() {
		for name, c := range inputs {
			t.Run(counterName(counter)+"/"+name, func(t *testing.T) {
				for _, s := range progress.AllStatuses() {
					assert.Zero(t, counter.Count(c, s))
				}
			})
		}
	}
}

func TestCount_MatchesSumOfSubCounts(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for trial := range 20 {
		c := randomCollection(r, r.Intn(40))
		for _, s := range progress.AllStatuses() {
			want := bruteForce(c, s)
			for _, counter := range counters() {
				assert.Equal(t, want, counter.Count(c, s),
					"trial=%d counter=%s status=%s", trial, counterName(counter), s)
			}
		}
	}
}

func TestCount_StatusesPartitionEntries(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	c := randomCollection(r, 25)

	for _, counter := range counters() {
		t.Run(counterName(counter), func(t *testing.T) {
			total := 0
			for _, s := range progress.AllStatuses() {
				total += counter.Count(c, s)
			}
			assert.Equal(t, c.Len(), total)
		})
	}
}

func TestCount_IsIdempotentAndPure(t *testing.T) {
	c := fixtures.GenerateCollection(10, 100)
	snapshot := fixtures.GenerateCollection(10, 100)

	for _, counter := range counters() {
		t.Run(counterName(counter), func(t *testing.T) {
			first := counter.Count(c, progress.StatusComplete)
			for range 5 {
				assert.Equal(t, first, counter.Count(c, progress.StatusComplete))
			}
			assert.Equal(t, 250, first)
			assert.Equal(t, snapshot, c, "count must not mutate its input")
		})
	}
}

func TestCount_UnknownTargetMatchesNothing(t *testing.T) {
	c := fixtures.GenerateCollection(3, 10)
	for _, counter := range counters() {
		assert.Zero(t, counter.Count(c, progress.Status("BOGUS")), counterName(counter))
	}
}

func TestParallel_ZeroValueCounts(t *testing.T) {
	var p Parallel
	c := fixtures.GenerateCollection(4, 10)

	assert.NotPanics(t, func() {
		assert.Equal(t, Sequential{}.Count(c, progress.StatusComplete), p.Count(c, progress.StatusComplete))
	})
	assert.Equal(t, 1, p.Count(progress.Collection{{"a": progress.StatusComplete}}, progress.StatusComplete))
}

func TestNewParallel_Defaults(t *testing.T) {
	p := NewParallel(WithWorkers(0), WithChunkSize(-4))
	assert.Positive(t, p.Workers())
	assert.Equal(t, 1, p.ChunkSize())
}

func TestNew(t *testing.T) {
	seq, err := New(StrategySequential)
	require.NoError(t, err)
	assert.Equal(t, StrategySequential, seq.Strategy())

	par, err := New(StrategyParallel, WithWorkers(2))
	require.NoError(t, err)
	require.IsType(t, &Parallel{}, par)
	assert.Equal(t, 2, par.(*Parallel).Workers())

	_, err = New(Strategy("threads"))
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestParseStrategy(t *testing.T) {
	testCases := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{input: "sequential", want: StrategySequential},
		{input: "Parallel", want: StrategyParallel},
		{input: " PARALLEL ", want: StrategyParallel},
		{input: "fold", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseStrategy(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
