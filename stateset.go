package automaton

import "slices"

var _ IntSet = &StateSet{}

// StateSet is a multiset of NFA states, counting how many open transition intervals lead to each one.
// A state is a member while its count is positive.
type StateSet struct {
	inner       *IntIntHashMap
	hashUpdated bool
	hashCode    uint64
	arrayCache  []int
}

func NewStateSet(capacity int) *StateSet {
	return &StateSet{
		inner: NewIntIntHashMap(capacity),
	}
}

// Incr adds one reference to state.
func (s *StateSet) Incr(state int) {
	if s.inner.AddTo(state, 1) == 1 {
		s.keyChanged()
	}
}

// Decr removes one reference to state, dropping it once no references remain.
func (s *StateSet) Decr(state int) {
	count, ok := s.inner.Get(state)
	if !ok {
		panic("automaton: decrementing a state that is not in the set")
	}
	if count == 1 {
		s.inner.Remove(state)
		s.keyChanged()
	} else {
		s.inner.Put(state, count-1)
	}
}

// Freeze creates a FrozenIntSet snapshot of the current members, tagged with state.
func (s *StateSet) Freeze(state int) *FrozenIntSet {
	return NewFrozenIntSet(slices.Clone(s.GetArray()), s.Hash(), state)
}

func (s *StateSet) Hash() uint64 {
	if s.hashUpdated {
		return s.hashCode
	}
	s.hashCode = uint64(s.inner.Size())
	for k := range s.inner.Keys() {
		s.hashCode += uint64(mix(k))
	}
	s.hashUpdated = true
	return s.hashCode
}

func (s *StateSet) Equals(other Hashable) bool {
	return equalIntSets(s, other)
}

func (s *StateSet) GetArray() []int {
	if s.arrayCache != nil {
		return s.arrayCache
	}
	keys := make([]int, 0, s.inner.Size())
	for k := range s.inner.Keys() {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	s.arrayCache = keys
	return keys
}

func (s *StateSet) Size() int {
	return s.inner.Size()
}

func (s *StateSet) keyChanged() {
	s.hashUpdated = false
	s.arrayCache = nil
}
