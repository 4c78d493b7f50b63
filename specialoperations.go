package automaton

import (
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Reverse Returns an automaton accepting the reverse language.
func Reverse(a *Automaton) *Automaton {
	return reverseStates(a, nil)
}

// reverseStates reverses the language of a; if initialStates is non-nil it receives the states of the
// result that an epsilon transition from the new initial state leads to.
func reverseStates(a *Automaton, initialStates map[int]struct{}) *Automaton {
	if a.IsSingleton() && initialStates == nil {
		labels := slices.Clone(a.Singleton())
		slices.Reverse(labels)
		return newSingleton(labels)
	}
	if IsEmpty(a) {
		return NewAutomaton()
	}

	numStates := a.GetNumStates()

	// Build a new automaton with all edges reversed
	builder := NewBuilder()

	// Initial node; we'll add epsilon transitions in the end:
	builder.CreateState()

	for s := 0; s < numStates; s++ {
		builder.CreateState()
	}

	// Old initial state becomes new accept state:
	builder.SetAccept(1, true)

	t := Transition{}
	for s := 0; s < numStates; s++ {
		numTransitions := a.InitTransition(s, &t)
		for i := 0; i < numTransitions; i++ {
			a.GetNextTransition(&t)
			builder.AddTransition(t.Dest+1, s+1, t.Min, t.Max)
		}
	}

	result := builder.Finish()

	acceptStates := a.getAcceptStates()
	for s, ok := acceptStates.NextSet(0); ok && s < uint(numStates); s, ok = acceptStates.NextSet(s + 1) {
		result.AddEpsilon(0, int(s)+1)
		if initialStates != nil {
			initialStates[int(s)+1] = struct{}{}
		}
	}

	result.FinishState()

	return result
}

// GetCommonPrefix Returns the longest string that is a prefix of all accepted strings and visits each
// state at most once. The automaton must not have dead states reachable from the initial state.
// Returns: common prefix, which can be an empty string
func GetCommonPrefix(a *Automaton) (string, error) {
	labels, err := commonPrefix(a)
	if err != nil {
		return "", err
	}
	return labelsToString(labels), nil
}

// GetCommonPrefixBytesRef Returns the longest byte sequence that is a prefix of all accepted strings,
// failing with ErrNotBinary if a label of the prefix does not fit in a byte.
func GetCommonPrefixBytesRef(a *Automaton) ([]byte, error) {
	labels, err := commonPrefix(a)
	if err != nil {
		return nil, err
	}
	return labelsToBytes(labels)
}

// GetCommonSuffix Returns the longest string that is a suffix of all accepted strings.
// Worst case complexity: quadratic with the number of states+transitions.
func GetCommonSuffix(a *Automaton) (string, error) {
	labels, err := commonSuffix(a)
	if err != nil {
		return "", err
	}
	return labelsToString(labels), nil
}

// GetCommonSuffixBytesRef
// Returns the longest BytesRef that is a suffix of all accepted strings. Worst case complexity: quadratic
// with the number of states+transitions.
// Returns: common suffix, which can be an empty (length 0) BytesRef (never nil)
func GetCommonSuffixBytesRef(a *Automaton) ([]byte, error) {
	labels, err := commonSuffix(a)
	if err != nil {
		return nil, err
	}
	return labelsToBytes(labels)
}

func commonSuffix(a *Automaton) ([]int, error) {
	if a.IsSingleton() {
		return slices.Clone(a.Singleton()), nil
	}
	// reverse the language of the automaton, then reverse its common prefix.
	r := RemoveDeadStates(Reverse(a))
	labels, err := commonPrefix(r)
	if err != nil {
		return nil, err
	}
	slices.Reverse(labels)
	return labels, nil
}

func commonPrefix(a *Automaton) ([]int, error) {
	if a.IsSingleton() {
		return slices.Clone(a.Singleton()), nil
	}
	if HasDeadStatesFromInitial(a) {
		return nil, ErrDeadStates
	}
	labels := make([]int, 0)
	if IsEmpty(a) {
		return labels, nil
	}

	numStates := uint(a.GetNumStates())
	scratch := Transition{}
	current := bitset.New(numStates)
	next := bitset.New(numStates)
	current.Set(0) // start with initial state

OUT:
	for {
		label := -1
		// do a pass, stepping all current paths forward once
		for state, ok := current.NextSet(0); ok && state < numStates; state, ok = current.NextSet(state + 1) {
			// if it is an accept state, we are done
			if a.IsAccept(int(state)) {
				break OUT
			}
			numTransitions := a.GetNumTransitionsWithState(int(state))
			for transition := 0; transition < numTransitions; transition++ {
				a.GetTransition(int(state), transition, &scratch)
				if label == -1 {
					label = scratch.Min
				}
				// either a range of labels, or label that doesn't match all the other paths this round
				if scratch.Min != scratch.Max || scratch.Min != label {
					break OUT
				}
				// mark target state for next iteration
				next.Set(uint(scratch.Dest))
			}
		}
		if label == -1 {
			break
		}

		// add the label to the prefix
		labels = append(labels, label)
		// swap "current" with "next", clear "next"
		current, next = next, current
		next.ClearAll()
	}
	return labels, nil
}

func labelsToBytes(labels []int) ([]byte, error) {
	bs := make([]byte, len(labels))
	for i, label := range labels {
		if label < 0 || label > 0xff {
			return nil, fmt.Errorf("%w: label 0x%x", ErrNotBinary, label)
		}
		bs[i] = byte(label)
	}
	return bs, nil
}

// IsFinite Returns true if the language of this automaton is finite. States that cannot reach an accept
// state are ignored, so a loop among dead states does not make the language infinite.
func IsFinite(a *Automaton) bool {
	if a.IsSingleton() {
		return true
	}
	numStates := a.GetNumStates()
	if numStates == 0 {
		return true
	}
	live := getLiveStates(a)
	if !live.Test(0) {
		return true
	}

	type frame struct {
		state int
		upto  int
		count int
	}

	path := bitset.New(uint(numStates))
	visited := bitset.New(uint(numStates))
	stack := []frame{{state: 0, count: a.GetNumTransitionsWithState(0)}}
	path.Set(0)

	t := Transition{}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.upto == top.count {
			path.Clear(uint(top.state))
			visited.Set(uint(top.state))
			stack = stack[:len(stack)-1]
			continue
		}
		a.GetTransition(top.state, top.upto, &t)
		top.upto++

		dest := uint(t.Dest)
		if !live.Test(dest) || visited.Test(dest) {
			continue
		}
		if path.Test(dest) {
			// loop containing dest
			return false
		}
		path.Set(dest)
		stack = append(stack, frame{state: t.Dest, count: a.GetNumTransitionsWithState(t.Dest)})
	}
	return true
}

// GetFiniteStrings Returns up to limit accepted strings (all of them if limit < 0), each as a slice
// of labels. The language must be finite, otherwise ErrNotFinite is returned. Strings of a
// deterministic automaton come out in sorted order; for other automata duplicates are dropped.
func GetFiniteStrings(a *Automaton, limit int) ([][]int, error) {
	results := make([][]int, 0)
	if limit == 0 {
		return results, nil
	}
	if a.IsSingleton() {
		return append(results, slices.Clone(a.Singleton())), nil
	}
	if !IsFinite(a) {
		return nil, ErrNotFinite
	}
	if a.GetNumStates() == 0 {
		return results, nil
	}
	live := getLiveStates(a)
	if !live.Test(0) {
		return results, nil
	}

	var seen map[string]struct{}
	if !a.IsDeterministic() {
		seen = make(map[string]struct{})
	}

	path := make([]int, 0)
	var walk func(state int) bool
	walk = func(state int) bool {
		if a.IsAccept(state) {
			emit := true
			if seen != nil {
				key := fmt.Sprint(path)
				if _, ok := seen[key]; ok {
					emit = false
				} else {
					seen[key] = struct{}{}
				}
			}
			if emit {
				results = append(results, slices.Clone(path))
				if limit > 0 && len(results) >= limit {
					return false
				}
			}
		}

		t := Transition{}
		count := a.GetNumTransitionsWithState(state)
		for i := 0; i < count; i++ {
			a.GetTransition(state, i, &t)
			if !live.Test(uint(t.Dest)) {
				continue
			}
			for label := t.Min; label <= t.Max; label++ {
				path = append(path, label)
				if !walk(t.Dest) {
					return false
				}
				path = path[:len(path)-1]
			}
		}
		return true
	}
	walk(0)

	return results, nil
}
