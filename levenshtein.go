package automaton

import (
	"fmt"
	"slices"
	"unicode"
)

// MAXIMUM_SUPPORTED_DISTANCE Maximum edit distance this class can generate an automaton for.
const MAXIMUM_SUPPORTED_DISTANCE = 2

// LevenshteinAutomata Class to construct DFAs that match a word within some edit distance.
//
// Implements the algorithm described in: Schulz and Mihov: Fast String Correction with
// Levenshtein Automata.
type LevenshteinAutomata struct {
	// the input word
	word []int
	// the automata alphabet.
	alphabet []int
	// the maximum symbol in the alphabet (e.g. 255 for UTF-8 or 10FFFF for UTF-32)
	alphaMax int

	// the ranges outside of alphabet
	rangeLower []int
	rangeUpper []int

	transpositions bool
}

// NewLevenshteinAutomata Create a new LevenshteinAutomata for some input String. Optionally count
// transpositions as a primitive edit.
func NewLevenshteinAutomata(input string, withTranspositions bool) *LevenshteinAutomata {
	word := make([]int, 0, len(input))
	for _, c := range input {
		word = append(word, int(c))
	}
	// code points never exceed MaxRune
	l, _ := NewLevenshteinAutomataAlpha(word, unicode.MaxRune, withTranspositions)
	return l
}

// NewLevenshteinAutomataAlpha Expert: specify a custom maximum possible symbol (alphaMax); default
// is unicode.MaxRune.
func NewLevenshteinAutomataAlpha(word []int, alphaMax int, withTranspositions bool) (*LevenshteinAutomata, error) {
	for _, v := range word {
		if v > alphaMax {
			return nil, fmt.Errorf("%w: alphaMax %d exceeded by symbol %d in word", ErrIllegalArgument, alphaMax, v)
		}
	}

	// calculate the alphabet
	alphabet := slices.Clone(word)
	slices.Sort(alphabet)
	alphabet = slices.Compact(alphabet)

	// calculate the unicode range intervals that exclude the alphabet
	// these are the ranges for all unicode characters not in the alphabet
	rangeLower := make([]int, 0, len(alphabet)+1)
	rangeUpper := make([]int, 0, len(alphabet)+1)
	lower := 0
	for _, higher := range alphabet {
		if higher > lower {
			rangeLower = append(rangeLower, lower)
			rangeUpper = append(rangeUpper, higher-1)
		}
		lower = higher + 1
	}
	// add the final endpoint
	if lower <= alphaMax {
		rangeLower = append(rangeLower, lower)
		rangeUpper = append(rangeUpper, alphaMax)
	}

	return &LevenshteinAutomata{
		word:           slices.Clone(word),
		alphabet:       alphabet,
		alphaMax:       alphaMax,
		rangeLower:     rangeLower,
		rangeUpper:     rangeUpper,
		transpositions: withTranspositions,
	}, nil
}

// ToAutomaton Compute a DFA that accepts all strings within an edit distance of n.
//
// All automata have the following properties:
//   - They are deterministic (DFA).
//   - They are not minimal (some transitions could be combined), and states that can no longer
//     reach an accept state are kept.
func (l *LevenshteinAutomata) ToAutomaton(n int) (*Automaton, error) {
	return l.ToAutomatonWithPrefix(n, "")
}

// ToAutomatonWithPrefix Compute a DFA that accepts all strings within an edit distance of n,
// matching the specified exact prefix.
func (l *LevenshteinAutomata) ToAutomatonWithPrefix(n int, prefix string) (*Automaton, error) {
	if n < 0 || n > MAXIMUM_SUPPORTED_DISTANCE {
		return nil, fmt.Errorf("%w: edit distance %d not in [0, %d]", ErrIllegalArgument, n, MAXIMUM_SUPPORTED_DISTANCE)
	}

	prefixLabels := make([]int, 0, len(prefix))
	for _, c := range prefix {
		prefixLabels = append(prefixLabels, int(c))
	}

	if n == 0 {
		return newSingleton(append(prefixLabels, l.word...)), nil
	}

	rng := 2*n + 1
	description := newParametricDescription(len(l.word), n, getParametricTables(n, l.transpositions))

	// the number of states is based on the length of the word and n
	numStates := description.Size()
	numTransitions := numStates * min(1+2*n, len(l.alphabet))

	a := NewAutomatonV1(numStates+len(prefixLabels), numTransitions)

	// Insert prefix
	lastState := a.CreateState()
	for _, cp := range prefixLabels {
		state := a.CreateState()
		a.addTransition(lastState, state, cp, cp)
		lastState = state
	}

	stateOffset := lastState
	a.SetAccept(lastState, description.IsAccept(0))

	// create all states, and mark as accept states if appropriate
	for i := 1; i < numStates; i++ {
		state := a.CreateState()
		a.SetAccept(state, description.IsAccept(i))
	}

	// states that cannot be reached from the initial state still get their transitions; they are
	// harmless and dropped by the next RemoveDeadStates or Minimize.
	for k := 0; k < numStates; k++ {
		xpos := description.GetPosition(k)
		end := xpos + min(len(l.word)-xpos, rng)

		for _, ch := range l.alphabet {
			// get the characteristic vector at this position wrt ch
			cvec := l.getVector(ch, xpos, end)
			dest := description.Transition(k, xpos, cvec)
			if dest >= 0 {
				a.addTransition(stateOffset+k, stateOffset+dest, ch, ch)
			}
		}

		// add transitions for all other chars in unicode
		// by definition, their characteristic vectors are always 0,
		// because they do not exist in the input string.
		dest := description.Transition(k, xpos, 0)
		if dest >= 0 {
			for r := range l.rangeLower {
				a.addTransition(stateOffset+k, stateOffset+dest, l.rangeLower[r], l.rangeUpper[r])
			}
		}
	}

	a.FinishState()
	return a, nil
}

// getVector Get the characteristic vector X(x, V) where V is substring(pos, end); the symbol at pos
// ends up in the most significant bit.
func (l *LevenshteinAutomata) getVector(x, pos, end int) int {
	vector := 0
	for i := pos; i < end; i++ {
		vector <<= 1
		if l.word[i] == x {
			vector |= 1
		}
	}
	return vector
}
