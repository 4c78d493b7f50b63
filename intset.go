package automaton

import "slices"

// IntSet is a set of state numbers usable as a HashMap key. The mutable StateSet is used for lookups
// while the subset construction runs, and FrozenIntSet is what gets stored.
type IntSet interface {
	Hashable

	// GetArray returns the sorted members. The caller must not modify it.
	GetArray() []int

	Size() int
}

// hashIntSet is the hash shared by every IntSet implementation: size plus the mixed members.
func hashIntSet(values []int) uint64 {
	h := uint64(len(values))
	for _, v := range values {
		h += uint64(mix32(v))
	}
	return h
}

func equalIntSets(a IntSet, other Hashable) bool {
	o, ok := other.(IntSet)
	if !ok || o == nil {
		return false
	}
	if a.Size() != o.Size() || a.Hash() != o.Hash() {
		return false
	}
	return slices.Equal(a.GetArray(), o.GetArray())
}
