package automaton

const (
	// WILDCARD_STRING String equality with support for wildcards
	WILDCARD_STRING = '*'
	// WILDCARD_CHAR Char equality with support for wildcards
	WILDCARD_CHAR = '?'
	// WILDCARD_ESCAPE Escape character
	WILDCARD_ESCAPE = '\\'
)

// MakeWildcard Convert a wildcard pattern to a DFA-ready automaton. '*' matches any string, '?'
// any single code point and '\' escapes the next code point; a trailing '\' matches itself.
func MakeWildcard(pattern string) *Automaton {
	automata := make([]*Automaton, 0)
	literal := make([]int, 0)
	flush := func() {
		if len(literal) > 0 {
			automata = append(automata, defaultAutomata.MakeStringFromCodePoints(literal))
			literal = literal[:0]
		}
	}

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case WILDCARD_STRING:
			flush()
			automata = append(automata, defaultAutomata.MakeAnyString())
		case WILDCARD_CHAR:
			flush()
			automata = append(automata, defaultAutomata.MakeAnyChar())
		case WILDCARD_ESCAPE:
			// add the next codepoint instead, if it exists
			if i+1 < len(runes) {
				i++
				literal = append(literal, int(runes[i]))
			} else {
				// lenient parsing with a trailing \
				literal = append(literal, int(c))
			}
		default:
			literal = append(literal, int(c))
		}
	}
	flush()
	return Concatenate(automata...)
}

// MakePrefix Returns an automaton accepting every string that starts with prefix.
func MakePrefix(prefix string) *Automaton {
	return Concatenate(defaultAutomata.MakeString(prefix), defaultAutomata.MakeAnyString())
}

// MakeBinaryPrefix Build an automaton accepting all terms with the specified binary prefix.
func MakeBinaryPrefix(prefix []byte) *Automaton {
	numStatesAndTransitions := len(prefix) + 1
	a := NewAutomatonV1(numStatesAndTransitions, numStatesAndTransitions)
	lastState := a.CreateState()
	for _, b := range prefix {
		state := a.CreateState()
		a.addTransition(lastState, state, int(b), int(b))
		lastState = state
	}
	a.SetAccept(lastState, true)
	a.addTransition(lastState, lastState, 0, 255)
	a.FinishState()
	return a
}
