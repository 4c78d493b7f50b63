package automaton

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// RunAutomaton Finite-state automaton with fast run operation. The initial state is always 0.
//
// The transition function is a flat state x class matrix: points holds the sorted interval start
// points of the determinized automaton, and a symbol's class is the index of the greatest point
// <= the symbol.
type RunAutomaton struct {
	automaton    *Automaton
	alphabetSize int
	size         int
	accept       *bitset.BitSet
	transitions  []int // delta(state,c) = transitions[state*len(points)+CharClass(c)]
	points       []int // char interval start points
	classmap     []int // map from char number to class
}

// NewRunAutomaton Constructs a new RunAutomaton from a deterministic or nondeterministic Automaton;
// non-deterministic input is determinized first, within workLimit. Symbols range over
// [0, alphabetSize). With tableize every symbol gets a direct class lookup; otherwise only the
// first 256 do and the rest are binary searched.
func NewRunAutomaton(a *Automaton, alphabetSize int, tableize bool, workLimit int) (*RunAutomaton, error) {
	a, err := Determinize(a, workLimit)
	if err != nil {
		return nil, err
	}
	if a.IsSingleton() {
		a = a.Clone()
		a.ExpandSingleton()
	}

	points := a.GetStartPoints()
	numStates := a.GetNumStates()
	size := max(1, numStates)

	r := &RunAutomaton{
		automaton:    a,
		alphabetSize: alphabetSize,
		size:         size,
		accept:       bitset.New(uint(size)),
		transitions:  make([]int, size*len(points)),
		points:       points,
	}
	for i := range r.transitions {
		r.transitions[i] = -1
	}

	transition := NewTransition()
	for n := 0; n < numStates; n++ {
		if a.IsAccept(n) {
			r.accept.Set(uint(n))
		}
		transition.Source = n
		transition.TransitionUpto = -1
		for c, point := range points {
			// points are increasing, so the lookup resumes where the last one stopped
			r.transitions[n*len(points)+c] = a.Next(transition, point)
		}
	}

	// Set alphabet table for optimal run performance.
	classmapSize := min(256, alphabetSize)
	if tableize {
		classmapSize = alphabetSize
	}
	r.classmap = make([]int, classmapSize)
	i := 0
	for j := range r.classmap {
		if i+1 < len(points) && j == points[i+1] {
			i++
		}
		r.classmap[j] = i
	}
	return r, nil
}

// GetCharClass Gets character class of given codepoint
func (r *RunAutomaton) GetCharClass(c int) int {
	// binary search
	a, b := 0, len(r.points)
	for b-a > 1 {
		d := (a + b) >> 1
		if r.points[d] > c {
			b = d
		} else if r.points[d] < c {
			a = d
		} else {
			return d
		}
	}
	return a
}

// Step Returns the state obtained by reading the given char from the given state. Returns -1 if not
// obtaining any such state. (If the original Automaton had no dead states, -1 is returned here if
// and only if a dead state is entered in an equivalent automaton with a total transition function.)
func (r *RunAutomaton) Step(state, c int) int {
	if c >= len(r.classmap) {
		return r.transitions[state*len(r.points)+r.GetCharClass(c)]
	}
	return r.transitions[state*len(r.points)+r.classmap[c]]
}

// IsAccept Returns acceptance status for given state.
func (r *RunAutomaton) IsAccept(state int) bool {
	return r.accept.Test(uint(state))
}

// GetSize Returns number of states in automaton.
func (r *RunAutomaton) GetSize() int {
	return r.size
}

// GetCharIntervals Returns array of codepoint class interval start points. The array should not be
// modified by the caller.
func (r *RunAutomaton) GetCharIntervals() []int {
	return r.points
}

// GetAutomaton Returns the determinized automaton the tables were built from.
func (r *RunAutomaton) GetAutomaton() *Automaton {
	return r.automaton
}

// GetAlphabetSize Returns the number of symbols the automaton runs over.
func (r *RunAutomaton) GetAlphabetSize() int {
	return r.alphabetSize
}

func (r *RunAutomaton) String() string {
	b := new(strings.Builder)
	b.WriteString("initial state: 0\n")
	for i := 0; i < r.size; i++ {
		fmt.Fprintf(b, "state %d", i)
		if r.IsAccept(i) {
			b.WriteString(" [accept]:\n")
		} else {
			b.WriteString(" [reject]:\n")
		}
		for j, min := range r.points {
			k := r.transitions[i*len(r.points)+j]
			if k == -1 {
				continue
			}
			max := r.alphabetSize - 1
			if j+1 < len(r.points) {
				max = r.points[j+1] - 1
			}
			fmt.Fprintf(b, " %s -> %d\n", formatLabelRange(min, max), k)
		}
	}
	return b.String()
}
