// Package fixtures produces deterministic status collections for benchmarks
// and tests.
package fixtures

import (
	"fmt"
	"strconv"

	"github.com/ahrav/progress-tally/internal/domain/progress"
)

// Generate builds a map of size+1 entries keyed prefix+i for i in [0, size].
// Entries above the three-quarter mark are complete, entries above the
// halfway mark are partial, and the rest have no progress. Thresholds use
// integer division. A negative size yields an empty map.
func Generate(prefix string, size int) progress.StatusMap {
	if size < 0 {
		return progress.StatusMap{}
	}

	m := make(progress.StatusMap, size+1)
	for i := 0; i <= size; i++ {
		m[prefix+strconv.Itoa(i)] = statusAt(i, size)
	}
	return m
}

// GenerateCollection builds count maps of the given size. Each map gets its
// own key prefix so the maps are disjoint.
func GenerateCollection(count, size int) progress.Collection {
	if count <= 0 {
		return progress.Collection{}
	}

	c := make(progress.Collection, count)
	for i := range c {
		c[i] = Generate(fmt.Sprintf("vec,%d,%d,%d:", count, size, i), size)
	}
	return c
}

// Distribution returns the number of entries per status in a map produced by
// Generate(_, size).
func Distribution(size int) map[progress.Status]int {
	d := map[progress.Status]int{
		progress.StatusNone:     0,
		progress.StatusPartial:  0,
		progress.StatusComplete: 0,
	}
	if size < 0 {
		return d
	}

	half, threeQuarters := size/2, 3*size/4
	d[progress.StatusComplete] = size - threeQuarters
	d[progress.StatusPartial] = threeQuarters - half
	d[progress.StatusNone] = half + 1
	return d
}

func statusAt(i, size int) progress.Status {
	switch {
	case i > 3*size/4:
		return progress.StatusComplete
	case i > size/2:
		return progress.StatusPartial
	default:
		return progress.StatusNone
	}
}
