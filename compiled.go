package automaton

import (
	"bytes"
	"fmt"

	u "github.com/araddon/gou"
	"github.com/bits-and-blooms/bitset"
)

// AutomatonType Automata are compiled into different internal forms for the most efficient
// execution depending upon the language they accept.
type AutomatonType int

const (
	// COMPILED_NONE Automaton that accepts no strings.
	COMPILED_NONE AutomatonType = iota
	// COMPILED_ALL Automaton that accepts all possible strings.
	COMPILED_ALL
	// COMPILED_SINGLE Automaton that accepts only a single fixed string.
	COMPILED_SINGLE
	// COMPILED_PREFIX Automaton that matches every string starting with a fixed prefix.
	COMPILED_PREFIX
	// COMPILED_NORMAL Catch-all for any other automata.
	COMPILED_NORMAL
)

func (t AutomatonType) String() string {
	switch t {
	case COMPILED_NONE:
		return "NONE"
	case COMPILED_ALL:
		return "ALL"
	case COMPILED_SINGLE:
		return "SINGLE"
	case COMPILED_PREFIX:
		return "PREFIX"
	case COMPILED_NORMAL:
		return "NORMAL"
	}
	return fmt.Sprintf("AutomatonType(%d)", int(t))
}

// CompiledAutomaton Immutable class holding compiled details for a given Automaton. The Automaton
// is deterministic, must not have dead states but is not necessarily minimal.
type CompiledAutomaton struct {
	// Type of the compiled form.
	Type AutomatonType

	// For COMPILED_SINGLE this is the singleton term; for COMPILED_PREFIX the prefix. UTF-8 unless
	// the automaton was binary.
	Term []byte

	// Matcher for quickly determining if a byte[] is accepted. Only valid for COMPILED_NORMAL.
	RunAutomaton *ByteRunAutomaton

	// Two dimensional array of transitions, indexed by state number for traversal. The state
	// numbering is consistent with RunAutomaton. Only valid for COMPILED_NORMAL.
	Automaton *Automaton

	// Shared common suffix accepted by the automaton. Only valid for COMPILED_NORMAL, and only when
	// the automaton accepts an infinite language. nil if the common suffix is empty.
	CommonSuffixRef []byte

	// Indicates if the automaton accepts a finite set of strings. Only valid for COMPILED_NORMAL.
	Finite bool
}

type compileOptions struct {
	finite    *bool
	simplify  bool
	binary    bool
	workLimit int
}

type CompileOption func(*compileOptions)

// WithFinite tells the compiler whether the language is finite, saving the check. The value must
// be correct.
func WithFinite(finite bool) CompileOption {
	return func(o *compileOptions) {
		o.finite = &finite
	}
}

// WithSimplify controls detection of the NONE, ALL, SINGLE and PREFIX forms; without it every
// automaton compiles to COMPILED_NORMAL.
func WithSimplify(simplify bool) CompileOption {
	return func(o *compileOptions) {
		o.simplify = simplify
	}
}

// WithBinary declares that the automaton already runs over bytes rather than code points.
func WithBinary(binary bool) CompileOption {
	return func(o *compileOptions) {
		o.binary = binary
	}
}

// WithCompileWorkLimit bounds the determinization effort.
func WithCompileWorkLimit(workLimit int) CompileOption {
	return func(o *compileOptions) {
		o.workLimit = workLimit
	}
}

// NewCompiledAutomaton Create this. The automaton is not modified. By default the language's shape
// is detected (simplify) and the automaton runs over code points, matched as UTF-8.
func NewCompiledAutomaton(automaton *Automaton, opts ...CompileOption) (*CompiledAutomaton, error) {
	o := &compileOptions{
		simplify:  true,
		workLimit: DEFAULT_DETERMINIZE_WORK_LIMIT,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.simplify {
		c, err := simplify(automaton, o)
		if err != nil {
			return nil, err
		}
		if c != nil {
			u.Debugf("compiled automaton: type=%s term=%q", c.Type, c.Term)
			return c, nil
		}
	}

	c := &CompiledAutomaton{Type: COMPILED_NORMAL}
	if o.finite == nil {
		c.Finite = IsFinite(automaton)
	} else {
		c.Finite = *o.finite
	}

	binary := automaton
	if !o.binary {
		// Incoming automaton is unicode, and we must convert to UTF8 to match what's in the index
		binary = NewUTF32ToUTF8().Convert(automaton)
	}

	if !c.Finite {
		suffix, err := GetCommonSuffixBytesRef(binary)
		if err != nil {
			return nil, err
		}
		if len(suffix) > 0 {
			c.CommonSuffixRef = suffix
		}
	}

	det, err := Determinize(binary, o.workLimit)
	if err != nil {
		return nil, err
	}
	// enumeration and floor walk the graph assuming every state can reach an accept state
	det = RemoveDeadStates(det)
	if det.GetNumStates() == 0 {
		det = NewAutomaton()
		det.CreateState()
		det.FinishState()
	}

	c.RunAutomaton, err = NewByteRunAutomaton(det, true, o.workLimit)
	if err != nil {
		return nil, err
	}
	c.Automaton = c.RunAutomaton.GetAutomaton()

	u.Debugf("compiled automaton: type=%s states=%d finite=%t suffix=%q",
		c.Type, c.RunAutomaton.GetSize(), c.Finite, c.CommonSuffixRef)
	return c, nil
}

// simplify returns the compiled form of a NONE, ALL, SINGLE or PREFIX language, or nil.
func simplify(automaton *Automaton, o *compileOptions) (*CompiledAutomaton, error) {
	if IsEmpty(automaton) {
		// matches nothing
		return &CompiledAutomaton{Type: COMPILED_NONE}, nil
	}

	var isTotal bool
	// NOTE: only approximate, because automaton may not be minimal
	if o.binary {
		isTotal = IsTotalRange(automaton, 0, 0xff)
	} else {
		isTotal = IsTotal(automaton)
	}
	if isTotal {
		// matches all possible strings
		return &CompiledAutomaton{Type: COMPILED_ALL}, nil
	}

	det, err := Determinize(automaton, o.workLimit)
	if err != nil {
		return nil, err
	}

	det = RemoveDeadStates(det)

	singleton, err := GetSingleton(det)
	if err != nil {
		return nil, err
	}
	if singleton != nil {
		// matches a fixed string
		return &CompiledAutomaton{Type: COMPILED_SINGLE, Term: termBytes(singleton, o.binary)}, nil
	}

	prefix, err := commonPrefix(det)
	if err != nil {
		return nil, err
	}
	if len(prefix) == 0 {
		return nil, nil
	}

	anyString := defaultAutomata.MakeAnyString()
	if o.binary {
		anyString = defaultAutomata.MakeAnyBinary()
	}
	prefixAutomaton, err := Determinize(Concatenate(defaultAutomata.MakeStringFromCodePoints(prefix), anyString), o.workLimit)
	if err != nil {
		return nil, err
	}
	same, err := SameLanguage(det, prefixAutomaton)
	if err != nil {
		return nil, err
	}
	if same {
		// matches a constant prefix
		return &CompiledAutomaton{Type: COMPILED_PREFIX, Term: termBytes(prefix, o.binary)}, nil
	}
	return nil, nil
}

func termBytes(labels []int, binary bool) []byte {
	if !binary {
		return codePointsToUTF8(labels)
	}
	term := make([]byte, len(labels))
	for i, label := range labels {
		term[i] = byte(label)
	}
	return term
}

// Floor Finds largest term accepted by this Automaton, that's <= the provided input term. The
// result is written into output, which is grown as needed, and returned with true; false means no
// accepted term is <= input. Only valid for COMPILED_NORMAL, except that the NONE, ALL and SINGLE
// forms are answered directly.
//
// For an infinite language the greatest term below input may not exist (every term of a+ is below
// "b"); the result is then an accepted term below input that shares the longest possible prefix with
// it.
func (c *CompiledAutomaton) Floor(input, output []byte) ([]byte, bool) {
	switch c.Type {
	case COMPILED_NONE:
		return nil, false
	case COMPILED_ALL:
		return append(output[:0], input...), true
	case COMPILED_SINGLE:
		if bytes.Compare(c.Term, input) <= 0 {
			return append(output[:0], c.Term...), true
		}
		return nil, false
	case COMPILED_PREFIX:
		if bytes.HasPrefix(input, c.Term) {
			return append(output[:0], input...), true
		}
		if bytes.Compare(input, c.Term) < 0 {
			return nil, false
		}
		// every prefixed term is below input, but none is the greatest
		return append(output[:0], c.Term...), true
	}

	runAutomaton := c.RunAutomaton
	if !runAutomaton.IsAccept(0) && c.Automaton.GetNumTransitionsWithState(0) == 0 {
		// empty language
		return nil, false
	}
	// Search for the state for input
	state := 0
	if len(input) == 0 {
		if runAutomaton.IsAccept(state) {
			return output[:0], true
		}
		return nil, false
	}

	term := output[:0]
	stack := make([]int, 0, len(input))
	idx := 0
	for {
		label := int(input[idx])
		nextState := runAutomaton.Step(state, label)

		if idx == len(input)-1 {
			if nextState != -1 && runAutomaton.IsAccept(nextState) {
				// Input string is accepted
				return append(term[:idx], byte(label)), true
			}
			nextState = -1
		}

		if nextState != -1 {
			term = append(term[:idx], byte(label))
			stack = append(stack, state)
			state = nextState
			idx++
			continue
		}

		// Pop back to a prefix that has a lower label transition
		t := NewTransition()
		for {
			numTransitions := c.Automaton.GetNumTransitionsWithState(state)
			if numTransitions == 0 {
				// a state without transitions is live only if it accepts
				return term[:idx], true
			}
			c.Automaton.GetTransition(state, 0, t)
			if label-1 >= t.Min {
				break
			}
			if runAutomaton.IsAccept(state) {
				return term[:idx], true
			}
			// pop
			if len(stack) == 0 {
				return nil, false
			}
			state = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			idx--
			label = int(input[idx])
		}
		return c.addTail(state, term, idx, label), true
	}
}

// addTail appends the greatest suffix below leadLabel at idx, then follows the greatest
// transitions down to an accept state.
func (c *CompiledAutomaton) addTail(state int, term []byte, idx, leadLabel int) []byte {
	t := NewTransition()

	// Find biggest transition that's < label
	maxIndex := -1
	numTransitions := c.Automaton.InitTransition(state, t)
	for i := 0; i < numTransitions; i++ {
		c.Automaton.GetNextTransition(t)
		if t.Min < leadLabel {
			maxIndex = i
		} else {
			break
		}
	}
	c.Automaton.GetTransition(state, maxIndex, t)

	// Append floorLabel
	floorLabel := min(t.Max, leadLabel-1)
	term = append(term[:idx], byte(floorLabel))
	state = t.Dest
	idx++

	// Push down to last accept state; a cycle means the greatest continuation is infinite, so stop
	// at the last accept state passed or take the shortest way out.
	onPath := bitset.New(uint(c.Automaton.GetNumStates()))
	lastAccept := -1
	for {
		if c.RunAutomaton.IsAccept(state) {
			lastAccept = idx
		}
		numTransitions = c.Automaton.GetNumTransitionsWithState(state)
		if numTransitions == 0 {
			return term[:idx]
		}
		if onPath.Test(uint(state)) {
			if lastAccept >= 0 {
				return term[:lastAccept]
			}
			return append(term[:idx], c.shortestAccepted(state)...)
		}
		onPath.Set(uint(state))

		// We are pushing "top" -- so get last label of last transition
		c.Automaton.GetTransition(state, numTransitions-1, t)
		term = append(term[:idx], byte(t.Max))
		state = t.Dest
		idx++
	}
}

// shortestAccepted returns the labels of a shortest path from state to an accept state.
func (c *CompiledAutomaton) shortestAccepted(state int) []byte {
	a := c.Automaton
	type step struct {
		prev  int
		label int
	}
	steps := map[int]step{state: {prev: -1}}
	queue := []int{state}
	t := NewTransition()
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if c.RunAutomaton.IsAccept(s) {
			var path []byte
			for s != state {
				path = append(path, byte(steps[s].label))
				s = steps[s].prev
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		numTransitions := a.InitTransition(s, t)
		for i := 0; i < numTransitions; i++ {
			a.GetNextTransition(t)
			if _, ok := steps[t.Dest]; !ok {
				steps[t.Dest] = step{prev: s, label: t.Max}
				queue = append(queue, t.Dest)
			}
		}
	}
	return nil
}

// GetTermsEnum Return a TermsEnum intersecting the provided enumeration with the terms accepted by
// this automaton.
func (c *CompiledAutomaton) GetTermsEnum(terms TermsEnum) (TermsEnum, error) {
	switch c.Type {
	case COMPILED_NONE:
		return EmptyTermsEnum{}, nil
	case COMPILED_ALL:
		return terms, nil
	case COMPILED_SINGLE:
		return NewSingleTermsEnum(terms, c.Term), nil
	case COMPILED_PREFIX:
		return NewPrefixTermsEnum(terms, c.Term), nil
	case COMPILED_NORMAL:
		te, err := NewAutomatonTermsEnum(terms, c)
		if err != nil {
			return nil, err
		}
		return te, nil
	}
	return nil, fmt.Errorf("%w: unknown automaton type %s", ErrIllegalArgument, c.Type)
}
