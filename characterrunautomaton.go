package automaton

import "unicode"

// CharacterRunAutomaton Automaton representation for matching code points.
type CharacterRunAutomaton struct {
	*RunAutomaton
}

// NewCharacterRunAutomaton Construct specifying determinizeWorkLimit. Only the first 256 code
// points get a direct class lookup.
func NewCharacterRunAutomaton(a *Automaton, determinizeWorkLimit int) (*CharacterRunAutomaton, error) {
	r, err := NewRunAutomaton(a, unicode.MaxRune+1, false, determinizeWorkLimit)
	if err != nil {
		return nil, err
	}
	return &CharacterRunAutomaton{RunAutomaton: r}, nil
}

// Run Returns true if the given string is accepted by this automaton.
func (r *CharacterRunAutomaton) Run(s string) bool {
	p := 0
	for _, c := range s {
		p = r.Step(p, int(c))
		if p == -1 {
			return false
		}
	}
	return r.IsAccept(p)
}

// RunLabels Returns true if the given code points are accepted by this automaton.
func (r *CharacterRunAutomaton) RunLabels(labels []int) bool {
	p := 0
	for _, c := range labels {
		p = r.Step(p, c)
		if p == -1 {
			return false
		}
	}
	return r.IsAccept(p)
}
