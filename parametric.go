package automaton

// MASKS[i] keeps the low i+1 bits of a word.
var MASKS = func() []uint64 {
	masks := make([]uint64, 64)
	for i := range masks {
		masks[i] = (uint64(1) << (i + 1)) - 1
	}
	masks[63] = ^uint64(0)
	return masks
}()

// ParametricDescription A ParametricDescription describes the structure of a Levenshtein DFA for some
// degree n.
//
// There are four components of a parametric description, all parameterized on the length of the
// word w:
//  1. minErrors: the minimum errors for each parametric state, used to decide acceptance.
//  2. toStates: the parametric state a state moves to on a characteristic vector.
//  3. offsetIncrs: how far the matching window advances on that move.
//  4. The tables are selected by the length of the window left in the word, min(w-position, 2n+1).
//
// Absolute states encode a parametric state and an offset in the word as state*(w+1)+offset.
type ParametricDescription struct {
	w      int
	n      int
	tables *parametricTables
}

func newParametricDescription(w, n int, tables *parametricTables) *ParametricDescription {
	return &ParametricDescription{w: w, n: n, tables: tables}
}

// Size Return the number of states needed to compute a Levenshtein DFA
func (p *ParametricDescription) Size() int {
	return len(p.tables.minErrors) * (p.w + 1)
}

// IsAccept Returns true if the state in any Levenshtein DFA is an accept state (final state).
func (p *ParametricDescription) IsAccept(absState int) bool {
	// decode absState -> state, offset
	state := absState / (p.w + 1)
	offset := absState % (p.w + 1)
	return p.w-offset+p.tables.minErrors[state] <= p.n
}

// GetPosition Returns the position in the input word for a given state. This is the minimal
// boundary for the state.
func (p *ParametricDescription) GetPosition(absState int) int {
	return absState % (p.w + 1)
}

// Transition Returns the state number for a transition from the given state, assuming position and
// characteristic vector vector, or -1 if there is none.
func (p *ParametricDescription) Transition(absState, position, vector int) int {
	// null absState should never be passed in
	state := absState / (p.w + 1)
	offset := absState % (p.w + 1)

	window := min(p.w-position, 2*p.n+1)
	t := &p.tables.windows[window]
	loc := vector*p.tables.numStates + state
	toState := unpack(t.toStates, loc, t.toStatesBits) - 1
	if toState == -1 {
		return -1
	}
	offset += unpack(t.offsetIncrs, loc, t.offsetIncrsBits)
	return toState*(p.w+1) + offset
}

// unpack reads the index'th value of bitsPerValue bits; values may straddle two words.
func unpack(data []uint64, index, bitsPerValue int) int {
	bitLoc := bitsPerValue * index
	dataLoc := bitLoc >> 6
	bitStart := bitLoc & 63
	if bitStart+bitsPerValue <= 64 {
		// not split
		return int((data[dataLoc] >> bitStart) & MASKS[bitsPerValue-1])
	}

	// split
	part := 64 - bitStart
	return int(((data[dataLoc] >> bitStart) & MASKS[part-1]) +
		((data[1+dataLoc] & MASKS[bitsPerValue-part-1]) << part))
}

// pack is the inverse of unpack.
func pack(values []int, bitsPerValue int) []uint64 {
	data := make([]uint64, (len(values)*bitsPerValue+63)>>6)
	for index, v := range values {
		bitLoc := bitsPerValue * index
		dataLoc := bitLoc >> 6
		bitStart := bitLoc & 63
		data[dataLoc] |= uint64(v) << bitStart
		if bitStart+bitsPerValue > 64 {
			data[dataLoc+1] |= uint64(v) >> (64 - bitStart)
		}
	}
	return data
}

// bitsRequired returns how many bits hold every value in [0, maxValue], at least one.
func bitsRequired(maxValue int) int {
	bits := 1
	for maxValue >= 1<<bits {
		bits++
	}
	return bits
}
