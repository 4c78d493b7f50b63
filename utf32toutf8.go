package automaton

// Converts UTF-32 automata to the equivalent UTF-8 representation.
//
// Every code point range on a transition is split into byte-level sub-automata: a range whose
// endpoints encode with a different number of bytes is first split at the encoding boundaries, and
// each same-length piece is split into a start edge, an optional middle of "any continuation byte"
// runs, and an end edge.

var (
	utf8StartCodes = [4]int{0, 128, 2048, 65536}
	utf8EndCodes   = [4]int{127, 2047, 65535, 1114111}
)

// utf8Masks[i] keeps the low i+1 bits.
var utf8Masks = func() [32]int {
	var masks [32]int
	v := 2
	for i := range masks {
		masks[i] = v - 1
		v *= 2
	}
	return masks
}()

// Represents one of the N utf8 bytes that (in sequence) define a code point. value is the byte
// value; bits is how many bits are "used" by utf8 at that byte
type utf8Byte struct {
	value int
	bits  int
}

// Holds a single code point, as a sequence of 1-4 utf8 bytes
type utf8Sequence struct {
	bytes [4]utf8Byte
	len   int
}

func (s *utf8Sequence) byteAt(idx int) int {
	return s.bytes[idx].value
}

func (s *utf8Sequence) numBits(idx int) int {
	return s.bytes[idx].bits
}

func (s *utf8Sequence) set(code int) {
	switch {
	case code < 128:
		// 0xxxxxxx
		s.bytes[0] = utf8Byte{value: code, bits: 7}
		s.len = 1
	case code < 2048:
		// 110yyyxx 10xxxxxx
		s.bytes[0] = utf8Byte{value: (6 << 5) | (code >> 6), bits: 5}
		s.setRest(code, 1)
		s.len = 2
	case code < 65536:
		// 1110yyyy 10yyyyxx 10xxxxxx
		s.bytes[0] = utf8Byte{value: (14 << 4) | (code >> 12), bits: 4}
		s.setRest(code, 2)
		s.len = 3
	default:
		// 11110zzz 10zzyyyy 10yyyyxx 10xxxxxx
		s.bytes[0] = utf8Byte{value: (30 << 3) | (code >> 18), bits: 3}
		s.setRest(code, 3)
		s.len = 4
	}
}

func (s *utf8Sequence) setRest(code, numBytes int) {
	for i := 0; i < numBytes; i++ {
		s.bytes[numBytes-i] = utf8Byte{value: 128 | (code & utf8Masks[5]), bits: 6}
		code >>= 6
	}
}

// UTF32ToUTF8 converts code point automata into byte automata. A converter holds scratch state
// and must not be shared between goroutines.
type UTF32ToUTF8 struct {
	startUTF8 utf8Sequence
	endUTF8   utf8Sequence
	tmpUTF8a  utf8Sequence
	tmpUTF8b  utf8Sequence

	utf8 *Builder
}

func NewUTF32ToUTF8() *UTF32ToUTF8 {
	return &UTF32ToUTF8{}
}

// Convert Converts an incoming utf32 automaton to an equivalent utf8 one. The incoming automaton
// need not be deterministic. Note that the returned automaton will not in general be deterministic,
// so you must determinize it if that's needed.
func (c *UTF32ToUTF8) Convert(utf32 *Automaton) *Automaton {
	if utf32.IsSingleton() {
		encoded := codePointsToUTF8(utf32.Singleton())
		labels := make([]int, len(encoded))
		for i, b := range encoded {
			labels[i] = int(b)
		}
		return newSingleton(labels)
	}
	if utf32.GetNumStates() == 0 {
		return utf32
	}

	stateMap := make([]int, utf32.GetNumStates())
	for i := range stateMap {
		stateMap[i] = -1
	}

	pending := make([]int, 0)
	utf32State := 0
	pending = append(pending, utf32State)
	c.utf8 = NewBuilder()

	utf8State := c.utf8.CreateState()
	c.utf8.SetAccept(utf8State, utf32.IsAccept(utf32State))
	stateMap[utf32State] = utf8State

	scratch := NewTransition()
	for len(pending) != 0 {
		utf32State = pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		utf8State = stateMap[utf32State]

		numTransitions := utf32.InitTransition(utf32State, scratch)
		for i := 0; i < numTransitions; i++ {
			utf32.GetNextTransition(scratch)
			destUTF32 := scratch.Dest
			destUTF8 := stateMap[destUTF32]
			if destUTF8 == -1 {
				destUTF8 = c.utf8.CreateState()
				c.utf8.SetAccept(destUTF8, utf32.IsAccept(destUTF32))
				stateMap[destUTF32] = destUTF8
				pending = append(pending, destUTF32)
			}
			c.convertOneEdge(utf8State, destUTF8, scratch.Min, scratch.Max)
		}
	}

	result := c.utf8.Finish()
	c.utf8 = nil
	return result
}

// Builds necessary utf8 edges between start & end
func (c *UTF32ToUTF8) convertOneEdge(start, end, startCodePoint, endCodePoint int) {
	c.startUTF8.set(startCodePoint)
	c.endUTF8.set(endCodePoint)
	c.build(start, end, &c.startUTF8, &c.endUTF8, 0)
}

func (c *UTF32ToUTF8) build(start, end int, startUTF8, endUTF8 *utf8Sequence, upto int) {
	// Break into start, middle, end:
	if startUTF8.byteAt(upto) == endUTF8.byteAt(upto) {
		// Degen case: lead with the same byte:
		if upto == startUTF8.len-1 && upto == endUTF8.len-1 {
			// Super degen: just single edge, one UTF8 byte:
			c.utf8.AddTransition(start, end, startUTF8.byteAt(upto), endUTF8.byteAt(upto))
			return
		}
		n := c.utf8.CreateState()
		// Single value leading edge
		c.utf8.AddTransitionLabel(start, n, startUTF8.byteAt(upto))
		// Recurse for the rest
		c.build(n, end, startUTF8, endUTF8, 1+upto)
		return
	}

	if startUTF8.len == endUTF8.len {
		if upto == startUTF8.len-1 {
			// Super degen: just single edge, one UTF8 byte:
			c.utf8.AddTransition(start, end, startUTF8.byteAt(upto), endUTF8.byteAt(upto))
			return
		}
		c.start(start, end, startUTF8, upto, false)
		if endUTF8.byteAt(upto)-startUTF8.byteAt(upto) > 1 {
			// There is a middle
			c.all(start, end, startUTF8.byteAt(upto)+1, endUTF8.byteAt(upto)-1, startUTF8.len-upto-1)
		}
		c.end(start, end, endUTF8, upto, false)
		return
	}

	// start
	c.start(start, end, startUTF8, upto, true)

	// possibly middle, spanning multiple num bytes
	byteCount := 1 + startUTF8.len - upto
	limit := endUTF8.len - upto
	for byteCount < limit {
		// only the lead byte differs between the two bounds
		c.tmpUTF8a.set(utf8StartCodes[byteCount-1])
		c.tmpUTF8b.set(utf8EndCodes[byteCount-1])
		c.all(start, end, c.tmpUTF8a.byteAt(0), c.tmpUTF8b.byteAt(0), c.tmpUTF8a.len-1)
		byteCount++
	}

	// end
	c.end(start, end, endUTF8, upto, true)
}

func (c *UTF32ToUTF8) start(start, end int, startUTF8 *utf8Sequence, upto int, doAll bool) {
	if upto == startUTF8.len-1 {
		// Done recursing
		c.utf8.AddTransition(start, end, startUTF8.byteAt(upto), startUTF8.byteAt(upto)|utf8Masks[startUTF8.numBits(upto)-1])
		return
	}

	n := c.utf8.CreateState()
	c.utf8.AddTransitionLabel(start, n, startUTF8.byteAt(upto))
	c.start(n, end, startUTF8, 1+upto, true)
	endCode := startUTF8.byteAt(upto) | utf8Masks[startUTF8.numBits(upto)-1]
	if doAll && startUTF8.byteAt(upto) != endCode {
		c.all(start, end, startUTF8.byteAt(upto)+1, endCode, startUTF8.len-upto-1)
	}
}

func (c *UTF32ToUTF8) end(start, end int, endUTF8 *utf8Sequence, upto int, doAll bool) {
	if upto == endUTF8.len-1 {
		// Done recursing
		c.utf8.AddTransition(start, end, endUTF8.byteAt(upto)&^utf8Masks[endUTF8.numBits(upto)-1], endUTF8.byteAt(upto))
		return
	}

	var startCode int
	if endUTF8.numBits(upto) == 5 {
		// 0xC0 and 0xC1 only start overlong encodings
		startCode = 194
	} else {
		startCode = endUTF8.byteAt(upto) &^ utf8Masks[endUTF8.numBits(upto)-1]
	}
	if doAll && endUTF8.byteAt(upto) != startCode {
		c.all(start, end, startCode, endUTF8.byteAt(upto)-1, endUTF8.len-upto-1)
	}
	n := c.utf8.CreateState()
	c.utf8.AddTransitionLabel(start, n, endUTF8.byteAt(upto))
	c.end(n, end, endUTF8, 1+upto, true)
}

func (c *UTF32ToUTF8) all(start, end, startCode, endCode, left int) {
	if left == 0 {
		c.utf8.AddTransition(start, end, startCode, endCode)
		return
	}

	lastN := c.utf8.CreateState()
	c.utf8.AddTransition(start, lastN, startCode, endCode)
	for left > 1 {
		n := c.utf8.CreateState()
		c.utf8.AddTransition(lastN, n, 128, 191)
		left--
		lastN = n
	}
	c.utf8.AddTransition(lastN, end, 128, 191)
}

// codePointsToUTF8 encodes code points the same way Convert encodes transition labels.
func codePointsToUTF8(labels []int) []byte {
	var seq utf8Sequence
	out := make([]byte, 0, len(labels))
	for _, code := range labels {
		seq.set(code)
		for i := 0; i < seq.len; i++ {
			out = append(out, byte(seq.byteAt(i)))
		}
	}
	return out
}
