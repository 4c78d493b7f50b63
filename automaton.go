package automaton

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/bits-and-blooms/bitset"
)

// Automaton Represents an automaton and all its states and transitions. States are integers and must be
// created using CreateState. Mark a state as an accept state using SetAccept. Add transitions using
// AddTransition. Each state must have all of its transitions added at once; if this is too restrictive
// then use Builder instead. State 0 is always the initial state. Once a state is finished,
// either because you've starting adding transitions to another state or you call FinishState, then that
// states transitions are sorted (first by min, then max, then dest) and reduced (transitions with adjacent
// labels going to the same dest are combined).
//
// An Automaton may also be a singleton: a literal string held without any states. Any method that needs
// the graph expands the singleton into a linear chain of states first, and the automaton stays expanded.
// Call ExpandSingleton before sharing an automaton between goroutines.
type Automaton struct {
	// Current state we are adding transitions to; the caller must add all transitions for this state
	// before moving onto another state.
	curState int

	// Index in the transitions array, where this states leaving transitions are stored, or -1
	// if this state has not added any transitions yet, followed by number of transitions.
	states []int

	isAccept *bitset.BitSet

	// Holds toState, min, max for each transition.
	transitions []int

	// True if no state has two transitions leaving with the same label.
	deterministic bool

	// Literal labels when isSingleton is set; the graph is empty until expansion.
	isSingleton bool
	singleton   []int

	// Reachable states in BFS order from the initial state; nil when stale.
	numbered []int
}

func NewAutomaton() *Automaton {
	return NewAutomatonV1(2, 2)
}

// NewAutomatonV1 creates an empty automaton with room for numStates states and numTransitions transitions.
func NewAutomatonV1(numStates, numTransitions int) *Automaton {
	return &Automaton{
		curState:      -1,
		deterministic: true,
		states:        make([]int, 0, numStates*2),
		isAccept:      bitset.New(uint(numStates)),
		transitions:   make([]int, 0, numTransitions*3),
	}
}

// newSingleton returns an automaton accepting exactly the given labels, without building states.
func newSingleton(labels []int) *Automaton {
	a := NewAutomaton()
	a.isSingleton = true
	a.singleton = slices.Clone(labels)
	if a.singleton == nil {
		a.singleton = []int{}
	}
	return a
}

// touch drops every cached view of the graph. Every mutating method calls it first.
func (a *Automaton) touch() {
	a.numbered = nil
}

// IsSingleton returns true if this automaton still holds a literal string instead of a graph.
func (a *Automaton) IsSingleton() bool {
	return a.isSingleton
}

// Singleton returns the literal labels of a singleton automaton, or nil.
func (a *Automaton) Singleton() []int {
	if !a.isSingleton {
		return nil
	}
	return a.singleton
}

// ExpandSingleton converts a singleton into an explicit chain of states. It is a no-op for other automata.
func (a *Automaton) ExpandSingleton() {
	if !a.isSingleton {
		return
	}
	labels := a.singleton
	a.isSingleton = false
	a.singleton = nil
	a.touch()

	s := a.CreateState()
	for _, label := range labels {
		next := a.CreateState()
		a.addTransition(s, next, label, label)
		s = next
	}
	a.isAccept.Set(uint(s))
	a.FinishState()
}

// CreateState Create a new state.
func (a *Automaton) CreateState() int {
	a.ExpandSingleton()
	a.touch()
	state := len(a.states) / 2
	a.states = append(a.states, -1, 0)
	return state
}

// SetAccept Set or clear this state as an accept state.
func (a *Automaton) SetAccept(state int, accept bool) {
	a.ExpandSingleton()
	a.touch()
	a.isAccept.SetTo(uint(state), accept)
}

// Sugar to get all transitions for all states. This is object-heavy; it's better to iterate state by state instead.
func (a *Automaton) getSortedTransitions() [][]Transition {
	numStates := a.GetNumStates()
	transitions := make([][]Transition, numStates)

	for s := 0; s < numStates; s++ {
		numTransitions := a.GetNumTransitionsWithState(s)
		transitions[s] = make([]Transition, numTransitions)

		for t := 0; t < numTransitions; t++ {
			a.GetTransition(s, t, &transitions[s][t])
		}
	}

	return transitions
}

// Returns accept states. If the bit is set then that state is an accept state.
func (a *Automaton) getAcceptStates() *bitset.BitSet {
	a.ExpandSingleton()
	return a.isAccept
}

// IsAccept Returns true if this state is an accept state.
func (a *Automaton) IsAccept(state int) bool {
	a.ExpandSingleton()
	return a.isAccept.Test(uint(state))
}

// AddTransitionLabel Add a new transition with min = max = label.
func (a *Automaton) AddTransitionLabel(source, dest, label int) error {
	return a.AddTransition(source, dest, label, label)
}

// AddTransition Add a new transition with the specified source, dest, min, max.
func (a *Automaton) AddTransition(source, dest, min, max int) error {
	a.ExpandSingleton()
	numStates := a.GetNumStates()
	if source < 0 || source >= numStates {
		return fmt.Errorf("%w: source=%d is out of bounds (maxState is %d)", ErrIllegalArgument, source, numStates-1)
	}
	if dest < 0 || dest >= numStates {
		return fmt.Errorf("%w: dest=%d is out of bounds (maxState is %d)", ErrIllegalArgument, dest, numStates-1)
	}
	if min > max {
		return fmt.Errorf("%w: min=%d is greater than max=%d", ErrIllegalArgument, min, max)
	}
	if a.curState != source && a.states[2*source] != -1 {
		return fmt.Errorf("%w: from state (%d) already had transitions added", ErrIllegalArgument, source)
	}
	a.addTransition(source, dest, min, max)
	return nil
}

// addTransition is AddTransition without argument checks, for callers that build states in order.
func (a *Automaton) addTransition(source, dest, min, max int) {
	a.touch()
	if a.curState != source {
		if a.curState != -1 {
			a.finishCurrentState()
		}

		// Move to next source:
		a.curState = source
		if a.states[2*a.curState] != -1 {
			panic(fmt.Sprintf("automaton: from state (%d) already had transitions added", source))
		}
		a.states[2*a.curState] = len(a.transitions)
	}

	a.transitions = append(a.transitions, dest, min, max)

	// Increment transition count for this state
	a.states[2*a.curState+1]++
}

// AddEpsilon Add a [virtual] epsilon transition between source and dest. Dest state must already have all
// transitions added because this method simply copies those same transitions over to source.
func (a *Automaton) AddEpsilon(source, dest int) {
	a.ExpandSingleton()
	t := Transition{}
	count := a.InitTransition(dest, &t)

	for i := 0; i < count; i++ {
		a.GetNextTransition(&t)
		a.addTransition(source, t.Dest, t.Min, t.Max)
	}

	if a.IsAccept(dest) {
		a.SetAccept(source, true)
	}
}

// Copy Copies over all states/transitions from other. The states numbers are sequentially assigned (appended).
// Pending states of both automata are finished first.
func (a *Automaton) Copy(other *Automaton) {
	a.ExpandSingleton()
	other.ExpandSingleton()
	a.FinishState()
	other.FinishState()
	a.touch()

	// Bulk copy and then fixup the state pointers:
	stateOffset := a.GetNumStates()
	nextTransition := len(a.transitions)
	nextState := len(a.states)

	a.states = append(a.states, other.states...)
	for i := nextState; i < len(a.states); i += 2 {
		if a.states[i] != -1 {
			a.states[i] += nextTransition
		}
	}

	otherNumStates := uint(other.GetNumStates())
	for s, ok := other.isAccept.NextSet(0); ok && s < otherNumStates; s, ok = other.isAccept.NextSet(s + 1) {
		a.isAccept.Set(uint(stateOffset) + s)
	}

	// Bulk copy and then fixup dest for each transition:
	a.transitions = append(a.transitions, other.transitions...)
	for i := nextTransition; i < len(a.transitions); i += 3 {
		a.transitions[i] += stateOffset
	}

	if !other.deterministic {
		a.deterministic = false
	}
}

// Freezes the last state, sorting and reducing the transitions.
func (a *Automaton) finishCurrentState() {
	numTransitions := a.states[2*a.curState+1]
	offset := a.states[2*a.curState]
	current := a.transitions[offset : offset+3*numTransitions]

	sort.Sort(&destMinMaxSorter{transitions: current})

	// Reduce any "adjacent" transitions:
	upto := 0
	minValue := -1
	maxValue := -1
	dest := -1

	for i := 0; i < numTransitions; i++ {
		tDest := current[3*i]
		tMin := current[3*i+1]
		tMax := current[3*i+2]

		if dest == tDest {
			if tMin <= maxValue+1 {
				if tMax > maxValue {
					maxValue = tMax
				}
			} else {
				if dest != -1 {
					current[3*upto] = dest
					current[3*upto+1] = minValue
					current[3*upto+2] = maxValue
					upto++
				}
				minValue = tMin
				maxValue = tMax
			}
		} else {
			if dest != -1 {
				current[3*upto] = dest
				current[3*upto+1] = minValue
				current[3*upto+2] = maxValue
				upto++
			}
			dest = tDest
			minValue = tMin
			maxValue = tMax
		}
	}

	if dest != -1 {
		// Last transition
		current[3*upto] = dest
		current[3*upto+1] = minValue
		current[3*upto+2] = maxValue
		upto++
	}

	a.transitions = a.transitions[:offset+3*upto]
	a.states[2*a.curState+1] = upto

	// Sort transitions by minValue/maxValue/dest:
	sort.Sort(&minMaxDestSorter{transitions: a.transitions[offset:]})

	if a.deterministic && upto > 1 {
		lastMax := a.transitions[offset+2]
		for i := 1; i < upto; i++ {
			minValue = a.transitions[offset+3*i+1]
			if minValue <= lastMax {
				a.deterministic = false
				break
			}
			lastMax = a.transitions[offset+3*i+2]
		}
	}
}

// IsDeterministic Returns true if this automaton is deterministic (for ever state there is only one
// transition for each label).
func (a *Automaton) IsDeterministic() bool {
	return a.isSingleton || a.deterministic
}

// FinishState
// Finishes the current state; call this once you are done adding transitions for a state.
// This is automatically called if you start adding transitions to a new source state,
// but for the last state you add you need to this method yourself.
func (a *Automaton) FinishState() {
	if a.curState != -1 {
		a.touch()
		a.finishCurrentState()
		a.curState = -1
	}
}

// GetNumStates How many states this automaton has.
func (a *Automaton) GetNumStates() int {
	a.ExpandSingleton()
	return len(a.states) / 2
}

// GetNumTransitions How many transitions this automaton has.
func (a *Automaton) GetNumTransitions() int {
	a.ExpandSingleton()
	return len(a.transitions) / 3
}

// GetNumTransitionsWithState How many transitions this state has.
func (a *Automaton) GetNumTransitionsWithState(state int) int {
	a.ExpandSingleton()
	count := a.states[2*state+1]
	if count == -1 {
		return 0
	}
	return count
}

// GetNumberedStates returns every state reachable from the initial state, in breadth first order.
// The result is cached until the next mutation and must not be modified.
func (a *Automaton) GetNumberedStates() []int {
	a.ExpandSingleton()
	if a.numbered != nil {
		return a.numbered
	}
	numStates := a.GetNumStates()
	numbered := make([]int, 0, numStates)
	if numStates > 0 {
		seen := bitset.New(uint(numStates))
		seen.Set(0)
		numbered = append(numbered, 0)
		t := Transition{}
		for i := 0; i < len(numbered); i++ {
			count := a.InitTransition(numbered[i], &t)
			for j := 0; j < count; j++ {
				a.GetNextTransition(&t)
				if !seen.Test(uint(t.Dest)) {
					seen.Set(uint(t.Dest))
					numbered = append(numbered, t.Dest)
				}
			}
		}
	}
	a.numbered = numbered
	return numbered
}

// Clone returns a deep copy. A singleton clone stays a singleton.
func (a *Automaton) Clone() *Automaton {
	if a.isSingleton {
		return newSingleton(a.singleton)
	}
	a.FinishState()
	return &Automaton{
		curState:      -1,
		states:        slices.Clone(a.states),
		isAccept:      a.isAccept.Clone(),
		transitions:   slices.Clone(a.transitions),
		deterministic: a.deterministic,
	}
}

// RemoveDeadTransitions prunes every state that cannot reach an accept state or cannot be reached from the
// initial state, renumbering the remaining ones. It replaces the receiver's graph in place.
func (a *Automaton) RemoveDeadTransitions() {
	if a.isSingleton {
		return
	}
	*a = *RemoveDeadStates(a)
}

// Sorts transitions by dest, ascending, then min label ascending, then max label ascending
type destMinMaxSorter struct {
	transitions []int
}

func (r *destMinMaxSorter) Len() int {
	return len(r.transitions) / 3
}

func (r *destMinMaxSorter) Less(i, j int) bool {
	iStart := 3 * i
	jStart := 3 * j

	iDest := r.transitions[iStart]
	jDest := r.transitions[jStart]

	// First dest:
	if iDest != jDest {
		return iDest < jDest
	}

	// Then min:
	iMin := r.transitions[iStart+1]
	jMin := r.transitions[jStart+1]
	if iMin != jMin {
		return iMin < jMin
	}

	// Then max:
	return r.transitions[iStart+2] < r.transitions[jStart+2]
}

func (r *destMinMaxSorter) Swap(i, j int) {
	swapTriple(r.transitions, i, j)
}

// Sorts transitions by min label, ascending, then max label ascending, then dest ascending
type minMaxDestSorter struct {
	transitions []int
}

func (r *minMaxDestSorter) Len() int {
	return len(r.transitions) / 3
}

func (r *minMaxDestSorter) Less(i, j int) bool {
	iStart := 3 * i
	jStart := 3 * j

	// First min:
	iMin := r.transitions[iStart+1]
	jMin := r.transitions[jStart+1]
	if iMin != jMin {
		return iMin < jMin
	}

	// Then max:
	iMax := r.transitions[iStart+2]
	jMax := r.transitions[jStart+2]
	if iMax != jMax {
		return iMax < jMax
	}

	// Then dest:
	return r.transitions[iStart] < r.transitions[jStart]
}

func (r *minMaxDestSorter) Swap(i, j int) {
	swapTriple(r.transitions, i, j)
}

func swapTriple(values []int, i, j int) {
	iStart, jStart := 3*i, 3*j
	values[iStart], values[jStart] = values[jStart], values[iStart]
	values[iStart+1], values[jStart+1] = values[jStart+1], values[iStart+1]
	values[iStart+2], values[jStart+2] = values[jStart+2], values[iStart+2]
}

// InitTransition Initialize the provided Transition to iterate through all transitions leaving the specified
// state. You must call GetNextTransition to get each transition. Returns the number of transitions leaving
// this state.
func (a *Automaton) InitTransition(state int, t *Transition) int {
	a.ExpandSingleton()
	t.Source = state
	t.TransitionUpto = a.states[2*state]
	return a.GetNumTransitionsWithState(state)
}

// GetNextTransition Iterate to the next transition after the provided one
func (a *Automaton) GetNextTransition(t *Transition) {
	t.Dest = a.transitions[t.TransitionUpto]
	t.Min = a.transitions[t.TransitionUpto+1]
	t.Max = a.transitions[t.TransitionUpto+2]
	t.TransitionUpto += 3
}

// GetTransition Fill the provided Transition with the index'th transition leaving the specified state.
func (a *Automaton) GetTransition(state, index int, t *Transition) {
	a.ExpandSingleton()
	i := a.states[2*state] + 3*index
	t.Source = state
	t.Dest = a.transitions[i]
	t.Min = a.transitions[i+1]
	t.Max = a.transitions[i+2]
}

// GetStartPoints Returns sorted array of all interval start points.
func (a *Automaton) GetStartPoints() []int {
	a.ExpandSingleton()
	points := []int{0}
	for s := 0; s < len(a.states); s += 2 {
		trans := a.states[s]
		limit := trans + 3*a.states[s+1]
		for trans < limit {
			points = append(points, a.transitions[trans+1])
			if maxTrans := a.transitions[trans+2]; maxTrans < unicode.MaxRune {
				points = append(points, maxTrans+1)
			}
			trans += 3
		}
	}
	slices.Sort(points)
	return slices.Compact(points)
}

// Step Performs lookup in transitions, assuming determinism.
// Params: 	state – starting state
//
//	label – codepoint to look up
//
// Returns: destination state, -1 if no matching outgoing transition
func (a *Automaton) Step(state, label int) int {
	a.ExpandSingleton()
	return a.next(state, 0, label, nil)
}

// Next
// Looks for the next transition that matches the provided label, assuming determinism.
// This method is similar to Step but is used more efficiently when iterating over multiple
// transitions from the same source state. It keeps the latest reached transition index in
// transition.TransitionUpto so the next call to this method can continue from there instead of restarting
// from the first transition.
//
// transition: The transition to start the lookup from (inclusive, using its Transition.Source
// and Transition.TransitionUpto). It is updated with the matched transition; or with
// Transition.Dest = -1 if no match.
//
// label: The codepoint to look up.
//
// Returns: The destination state; or -1 if no matching outgoing transition.
func (a *Automaton) Next(transition *Transition, label int) int {
	a.ExpandSingleton()
	return a.next(transition.Source, transition.TransitionUpto, label, transition)
}

// Looks for the next transition that matches the provided label, assuming determinism.
// state: The source state.
// fromTransitionIndex: The transition index to start the lookup from (inclusive); negative interpreted as 0.
// label: The codepoint to look up.
// transition: The output transition to update with the matching transition; or nil for no update.
//
// Returns: The destination state; or -1 if no matching outgoing transition.
func (a *Automaton) next(state, fromTransitionIndex, label int, transition *Transition) int {
	stateIndex := 2 * state
	firstTransitionIndex := a.states[stateIndex]
	numTransitions := a.states[stateIndex+1]

	// Since transitions are sorted,
	// binary search the transition for which label is within [minLabel, maxLabel].
	low := max(fromTransitionIndex, 0)
	high := numTransitions - 1

	for low <= high {
		mid := (low + high) >> 1
		transitionIndex := firstTransitionIndex + 3*mid
		minLabel := a.transitions[transitionIndex+1]
		if minLabel > label {
			high = mid - 1
		} else {
			maxLabel := a.transitions[transitionIndex+2]
			if maxLabel < label {
				low = mid + 1
			} else {
				destState := a.transitions[transitionIndex]
				if transition != nil {
					transition.Dest = destState
					transition.Min = minLabel
					transition.Max = maxLabel
					transition.TransitionUpto = mid
				}
				return destState
			}
		}
	}

	destState := -1
	if transition != nil {
		transition.Dest = destState
		transition.TransitionUpto = low
	}
	return destState
}

func (a *Automaton) String() string {
	if a.isSingleton {
		return fmt.Sprintf("singleton: %q", labelsToString(a.singleton))
	}
	return fmt.Sprintf("states=%d transitions=%d deterministic=%t",
		a.GetNumStates(), a.GetNumTransitions(), a.deterministic)
}

// ToDot Returns the graphviz (dot) representation of this automaton.
func (a *Automaton) ToDot() string {
	b := new(strings.Builder)
	b.WriteString("digraph Automaton {\n")
	b.WriteString("  rankdir = LR\n")
	b.WriteString("  node [width=0.2, height=0.2, fontsize=8]\n")
	numStates := a.GetNumStates()
	if numStates > 0 {
		b.WriteString("  initial [shape=plaintext,label=\"\"]\n")
		b.WriteString("  initial -> 0\n")
	}

	t := Transition{}
	for state := 0; state < numStates; state++ {
		shape := "circle"
		if a.IsAccept(state) {
			shape = "doublecircle"
		}
		fmt.Fprintf(b, "  %d [shape=%s,label=\"%d\"]\n", state, shape, state)
		count := a.InitTransition(state, &t)
		for i := 0; i < count; i++ {
			a.GetNextTransition(&t)
			fmt.Fprintf(b, "  %d -> %d [label=\"%s\"]\n", state, t.Dest, formatLabelRange(t.Min, t.Max))
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func labelsToString(labels []int) string {
	runes := make([]rune, len(labels))
	for i, label := range labels {
		runes[i] = rune(label)
	}
	return string(runes)
}
