package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/progress-tally/internal/domain/progress"
)

func TestGenerate_SmallMap(t *testing.T) {
	m := Generate("a", 3)

	want := progress.StatusMap{
		"a0": progress.StatusNone,
		"a1": progress.StatusNone,
		"a2": progress.StatusPartial,
		"a3": progress.StatusComplete,
	}
	assert.Equal(t, want, m)
}

func TestGenerate_EdgeSizes(t *testing.T) {
	assert.Equal(t, progress.StatusMap{"k0": progress.StatusNone}, Generate("k", 0))
	assert.Empty(t, Generate("k", -1))
}

func TestGenerate_IsDeterministic(t *testing.T) {
	assert.Equal(t, Generate("x", 250), Generate("x", 250))
}

func TestDistribution_MatchesGenerate(t *testing.T) {
	for _, size := range []int{-1, 0, 1, 2, 3, 4, 7, 99, 100, 101, 900, 1000} {
		m := Generate("p", size)
		d := Distribution(size)

		total := 0
		for _, s := range progress.AllStatuses() {
			assert.Equal(t, d[s], progress.CountMap(m, s), "size=%d status=%s", size, s)
			total += d[s]
		}
		assert.Equal(t, len(m), total, "size=%d", size)
	}
}

func TestDistribution_HundredHasQuarterComplete(t *testing.T) {
	assert.Equal(t, 25, Distribution(100)[progress.StatusComplete])
}

func TestGenerateCollection(t *testing.T) {
	c := GenerateCollection(10, 5)
	require.Len(t, c, 10)

	seen := make(map[string]struct{})
	for _, m := range c {
		assert.Len(t, m, 6)
		for k := range m {
			_, dup := seen[k]
			assert.False(t, dup, "key %q appears in more than one map", k)
			seen[k] = struct{}{}
		}
	}
	assert.Equal(t, 60, c.Len())

	assert.Equal(t, c, GenerateCollection(10, 5))
	assert.Empty(t, GenerateCollection(0, 5))
	assert.Empty(t, GenerateCollection(-3, 5))
}
