package automaton

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// Builder Records new states and transitions and then Finish creates the Automaton. Use this when you
// cannot create the automaton directly because it's too restrictive to have to add all transitions
// leaving each state at once.
type Builder struct {
	nextState int
	isAccept  *bitset.BitSet

	// Holds source, dest, min, max for each transition.
	transitions []int
}

func NewBuilder() *Builder {
	return NewBuilderV1(16, 16)
}

// NewBuilderV1 creates a builder with room for numStates states and numTransitions transitions.
func NewBuilderV1(numStates, numTransitions int) *Builder {
	return &Builder{
		isAccept:    bitset.New(uint(numStates)),
		transitions: make([]int, 0, numTransitions*4),
	}
}

// AddTransition Add a new transition with the specified source, dest, min, max.
func (r *Builder) AddTransition(source, dest, min, max int) {
	r.transitions = append(r.transitions, source, dest, min, max)
}

// AddTransitionLabel Add a new transition with min = max = label.
func (r *Builder) AddTransitionLabel(source, dest, label int) {
	r.AddTransition(source, dest, label, label)
}

// AddEpsilon Add a [virtual] epsilon transition between source and dest. Dest state must already have all
// transitions added because this method simply copies those same transitions over to source.
func (r *Builder) AddEpsilon(source, dest int) {
	end := len(r.transitions)
	for upto := 0; upto < end; upto += 4 {
		if r.transitions[upto] == dest {
			r.AddTransition(source, r.transitions[upto+1], r.transitions[upto+2], r.transitions[upto+3])
		}
	}
	if r.IsAccept(dest) {
		r.SetAccept(source, true)
	}
}

// Finish Compiles all added states and transitions into a new Automaton and returns it.
func (r *Builder) Finish() *Automaton {
	// Create automaton with the correct size.
	numStates := r.nextState
	numTransitions := len(r.transitions) / 4
	a := NewAutomatonV1(numStates, numTransitions)

	// Create all states.
	for state := 0; state < numStates; state++ {
		a.CreateState()
		a.SetAccept(state, r.IsAccept(state))
	}

	// Create all transitions
	sort.Sort(&builderSorter{values: r.transitions})
	for upto := 0; upto < len(r.transitions); upto += 4 {
		a.addTransition(
			r.transitions[upto],
			r.transitions[upto+1],
			r.transitions[upto+2],
			r.transitions[upto+3],
		)
	}

	a.FinishState()
	return a
}

// CreateState Create a new state.
func (r *Builder) CreateState() int {
	state := r.nextState
	r.nextState++
	return state
}

// SetAccept Set or clear this state as an accept state.
func (r *Builder) SetAccept(state int, accept bool) {
	r.isAccept.SetTo(uint(state), accept)
}

// IsAccept Returns true if this state is an accept state.
func (r *Builder) IsAccept(state int) bool {
	return r.isAccept.Test(uint(state))
}

// GetNumStates How many states this automaton has.
func (r *Builder) GetNumStates() int {
	return r.nextState
}

// Copy Copies over all states/transitions from other.
func (r *Builder) Copy(other *Automaton) {
	offset := r.GetNumStates()
	otherNumStates := other.GetNumStates()

	// Copy all states
	r.CopyStates(other)

	// Copy all transitions
	t := Transition{}
	for s := 0; s < otherNumStates; s++ {
		count := other.InitTransition(s, &t)
		for i := 0; i < count; i++ {
			other.GetNextTransition(&t)
			r.AddTransition(offset+s, offset+t.Dest, t.Min, t.Max)
		}
	}
}

// CopyStates Copies over all states from other.
func (r *Builder) CopyStates(other *Automaton) {
	otherNumStates := other.GetNumStates()
	for s := 0; s < otherNumStates; s++ {
		newState := r.CreateState()
		r.SetAccept(newState, other.IsAccept(s))
	}
}

var _ sort.Interface = &builderSorter{}

// Sorts quads by source, then dest, then min, then max.
type builderSorter struct {
	values []int
}

func (b *builderSorter) Len() int {
	return len(b.values) / 4
}

func (b *builderSorter) Less(i, j int) bool {
	i *= 4
	j *= 4

	for k := 0; k < 4; k++ {
		if b.values[i+k] != b.values[j+k] {
			return b.values[i+k] < b.values[j+k]
		}
	}
	return false
}

func (b *builderSorter) Swap(i, j int) {
	i *= 4
	j *= 4

	b.values[i], b.values[j] = b.values[j], b.values[i]
	b.values[i+1], b.values[j+1] = b.values[j+1], b.values[i+1]
	b.values[i+2], b.values[j+2] = b.values[j+2], b.values[i+2]
	b.values[i+3], b.values[j+3] = b.values[j+3], b.values[i+3]
}
