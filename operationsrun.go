package automaton

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Run Returns true if the given string is accepted by the automaton. The automaton may be
// nondeterministic; it is not modified apart from expanding a singleton.
// Complexity: linear in the length of the string for a deterministic automaton, otherwise linear
// in the length times the number of states.
func Run(a *Automaton, s string) bool {
	labels := make([]int, 0, len(s))
	for _, r := range s {
		labels = append(labels, int(r))
	}
	return RunLabels(a, labels)
}

// RunLabels Returns true if the given label sequence is accepted by the automaton.
func RunLabels(a *Automaton, labels []int) bool {
	if a.IsSingleton() {
		return slices.Equal(a.Singleton(), labels)
	}
	numStates := a.GetNumStates()
	if numStates == 0 {
		return false
	}

	if a.IsDeterministic() {
		state := 0
		for _, label := range labels {
			state = a.Step(state, label)
			if state == -1 {
				return false
			}
		}
		return a.IsAccept(state)
	}

	current := bitset.New(uint(numStates))
	next := bitset.New(uint(numStates))
	current.Set(0)
	t := Transition{}
	for _, label := range labels {
		for s, ok := current.NextSet(0); ok; s, ok = current.NextSet(s + 1) {
			count := a.InitTransition(int(s), &t)
			for i := 0; i < count; i++ {
				a.GetNextTransition(&t)
				if t.Min > label {
					// sorted by min
					break
				}
				if label <= t.Max {
					next.Set(uint(t.Dest))
				}
			}
		}
		if !next.Any() {
			return false
		}
		current, next = next, current
		next.ClearAll()
	}

	for s, ok := current.NextSet(0); ok; s, ok = current.NextSet(s + 1) {
		if a.IsAccept(int(s)) {
			return true
		}
	}
	return false
}
