package automaton

// ByteRunAutomaton Automaton representation for matching UTF-8 byte[].
type ByteRunAutomaton struct {
	*RunAutomaton
}

// NewByteRunAutomaton Expert: if isBinary is true, the input is already byte-based; otherwise the
// code point automaton is converted to UTF-8 first.
func NewByteRunAutomaton(a *Automaton, isBinary bool, determinizeWorkLimit int) (*ByteRunAutomaton, error) {
	if !isBinary {
		a = NewUTF32ToUTF8().Convert(a)
	}
	r, err := NewRunAutomaton(a, 256, true, determinizeWorkLimit)
	if err != nil {
		return nil, err
	}
	return &ByteRunAutomaton{RunAutomaton: r}, nil
}

// Run Returns true if the given byte array is accepted by this automaton
func (r *ByteRunAutomaton) Run(s []byte) bool {
	p := 0
	for _, b := range s {
		p = r.Step(p, int(b))
		if p == -1 {
			return false
		}
	}
	return r.IsAccept(p)
}
