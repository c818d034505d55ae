// Package progress holds the data model for status tallies: the tri-state
// Status value, a StatusMap of identifiers to statuses, and an ordered
// Collection of such maps.
package progress

// StatusMap maps an identifier to its Status.
type StatusMap map[string]Status

// Collection is an ordered sequence of StatusMaps. Order is preserved for
// reproducible fixtures but has no effect on a tally.
type Collection []StatusMap

// Len returns the total number of entries across every map in the collection.
func (c Collection) Len() int {
	n := 0
	for _, m := range c {
		n += len(m)
	}
	return n
}

// CountMap returns the number of entries in m whose status equals target.
// It is the per-entry predicate every tally strategy folds over.
func CountMap(m StatusMap, target Status) int {
	n := 0
	for _, s := range m {
		if s == target {
			n++
		}
	}
	return n
}
