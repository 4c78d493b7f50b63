package automaton

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Automata Construction of basic automata. Use the zero value: `var automata Automata`.
type Automata struct {
}

var defaultAutomata = &Automata{}

// MakeEmpty
// Returns a new (deterministic) automaton with the empty language.
func (*Automata) MakeEmpty() *Automaton {
	a := NewAutomaton()
	a.FinishState()
	return a
}

// MakeEmptyString
// Returns a new (deterministic) automaton that accepts only the empty string.
func (*Automata) MakeEmptyString() *Automaton {
	a := NewAutomaton()
	a.CreateState()
	a.SetAccept(0, true)
	return a
}

// MakeAnyString
// Returns a new (deterministic) automaton that accepts all strings.
func (*Automata) MakeAnyString() *Automaton {
	a := NewAutomaton()
	s := a.CreateState()
	a.SetAccept(s, true)
	a.addTransition(s, s, 0, unicode.MaxRune)
	a.FinishState()
	return a
}

// MakeAnyBinary
// Returns a new (deterministic) automaton that accepts all binary terms.
func (*Automata) MakeAnyBinary() *Automaton {
	a := NewAutomaton()
	s := a.CreateState()
	a.SetAccept(s, true)
	a.addTransition(s, s, 0, math.MaxUint8)
	a.FinishState()
	return a
}

// MakeNonEmptyBinary
// Returns a new (deterministic) automaton that accepts all binary terms except the empty string.
func (*Automata) MakeNonEmptyBinary() *Automaton {
	a := NewAutomaton()
	s1 := a.CreateState()
	s2 := a.CreateState()
	a.SetAccept(s2, true)
	a.addTransition(s1, s2, 0, math.MaxUint8)
	a.addTransition(s2, s2, 0, math.MaxUint8)
	a.FinishState()
	return a
}

// MakeAnyChar
// Returns a new (deterministic) automaton that accepts any single codepoint.
func (r *Automata) MakeAnyChar() *Automaton {
	return r.MakeCharRange(0, unicode.MaxRune)
}

// AppendAnyChar adds a transition on any codepoint from state to a new state and returns the new state.
func (*Automata) AppendAnyChar(a *Automaton, state int) int {
	newState := a.CreateState()
	a.addTransition(state, newState, 0, unicode.MaxRune)
	return newState
}

// MakeChar
// Returns a new (deterministic) automaton that accepts a single codepoint of the given value.
func (r *Automata) MakeChar(c int) *Automaton {
	return r.MakeCharRange(c, c)
}

// AppendChar adds a transition on c from state to a new state and returns the new state.
func (*Automata) AppendChar(a *Automaton, state, c int) int {
	newState := a.CreateState()
	a.addTransition(state, newState, c, c)
	return newState
}

// MakeCharRange
// Returns a new (deterministic) automaton that accepts a single codepoint whose value is in the given
// interval (including both end points). The empty language is returned if min > max.
func (r *Automata) MakeCharRange(min, max int) *Automaton {
	if min > max {
		return r.MakeEmpty()
	}
	a := NewAutomaton()
	s1 := a.CreateState()
	s2 := a.CreateState()
	a.SetAccept(s2, true)
	a.addTransition(s1, s2, min, max)
	a.FinishState()
	return a
}

// MakeString
// Returns a new (deterministic) automaton that accepts the single given string. The result is a
// singleton: no states are built until something needs them.
func (*Automata) MakeString(s string) *Automaton {
	labels := make([]int, 0, len(s))
	for _, c := range s {
		labels = append(labels, int(c))
	}
	return newSingleton(labels)
}

// MakeStringFromCodePoints
// Returns a new (deterministic and minimal) automaton that accepts the single given sequence of codepoints.
func (*Automata) MakeStringFromCodePoints(labels []int) *Automaton {
	return newSingleton(labels)
}

// MakeBinary
// Returns a new (deterministic) automaton that accepts the single given binary term.
func (*Automata) MakeBinary(term []byte) *Automaton {
	labels := make([]int, len(term))
	for i, b := range term {
		labels[i] = int(b)
	}
	return newSingleton(labels)
}

// MakeStringUnion
// Returns a new (deterministic and minimal) automaton that accepts the union of the given collection of
// strings. The input strings must be sorted in code point (UTF-8 byte) order; ErrUnsortedInput is
// returned otherwise. Duplicates are ignored.
func (*Automata) MakeStringUnion(terms []string) (*Automaton, error) {
	b := NewStringUnionBuilder()
	for _, term := range terms {
		labels := make([]int, 0, len(term))
		for _, c := range term {
			labels = append(labels, int(c))
		}
		if err := b.Add(labels); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// MakeBinaryStringUnion
// Returns a new (deterministic and minimal) automaton that accepts the union of the given collection of
// binary terms, which must be sorted in unsigned byte order.
func (*Automata) MakeBinaryStringUnion(terms [][]byte) (*Automaton, error) {
	b := NewStringUnionBuilder()
	for _, term := range terms {
		labels := make([]int, len(term))
		for i, c := range term {
			labels[i] = int(c)
		}
		if err := b.Add(labels); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// MakeDecimalInterval
// Returns a new automaton that accepts strings representing decimal (base 10) non-negative integers
// in the given interval.
//
// min – minimal value of interval
// max – maximal value of interval (both end points are included in the interval)
// digits – if > 0, use fixed number of digits (strings must be prefixed by 0's to obtain the right
// length) - otherwise, the number of digits is not fixed (any number of leading 0s is accepted)
func (r *Automata) MakeDecimalInterval(min, max, digits int) (*Automaton, error) {
	x := strconv.Itoa(min)
	y := strconv.Itoa(max)
	if min < 0 || min > max || (digits > 0 && len(y) > digits) {
		return nil, fmt.Errorf("%w: interval %d-%d does not fit %d digits", ErrIllegalArgument, min, max, digits)
	}

	d := len(y)
	if digits > 0 {
		d = digits
	}
	x = strings.Repeat("0", d-len(x)) + x
	y = strings.Repeat("0", d-len(y)) + y

	builder := NewBuilder()
	if digits <= 0 {
		// Reserve the "real" initial state:
		builder.CreateState()
	}

	initials := make([]int, 0)
	between(builder, x, y, 0, &initials, digits <= 0)

	a1 := builder.Finish()
	if digits <= 0 {
		a1.addTransition(0, 0, '0', '0')
		for _, p := range initials {
			a1.AddEpsilon(0, p)
		}
		a1.FinishState()
	}
	return a1, nil
}

// Constructs sub-automaton corresponding to decimal numbers of length x.length - n,
// with all digits between x[n:] and y[n:].
func between(builder *Builder, x, y string, n int, initials *[]int, zeros bool) int {
	s := builder.CreateState()
	if len(x) == n {
		builder.SetAccept(s, true)
		return s
	}

	if zeros {
		*initials = append(*initials, s)
	}
	cx, cy := int(x[n]), int(y[n])
	if cx == cy {
		builder.AddTransitionLabel(s, between(builder, x, y, n+1, initials, zeros && cx == '0'), cx)
	} else { // cx<cy
		builder.AddTransitionLabel(s, atLeast(builder, x, n+1, initials, zeros && cx == '0'), cx)
		builder.AddTransitionLabel(s, atMost(builder, y, n+1), cy)
		if cx+1 < cy {
			builder.AddTransition(s, anyOfRightLength(builder, x, n+1), cx+1, cy-1)
		}
	}
	return s
}

// Constructs sub-automaton corresponding to decimal numbers of value at least x[n:] and
// length x.length - n.
func atLeast(builder *Builder, x string, n int, initials *[]int, zeros bool) int {
	s := builder.CreateState()
	if len(x) == n {
		builder.SetAccept(s, true)
		return s
	}

	if zeros {
		*initials = append(*initials, s)
	}
	c := int(x[n])
	builder.AddTransitionLabel(s, atLeast(builder, x, n+1, initials, zeros && c == '0'), c)
	if c < '9' {
		builder.AddTransition(s, anyOfRightLength(builder, x, n+1), c+1, '9')
	}
	return s
}

// Constructs sub-automaton corresponding to decimal numbers of value at most x[n:] and
// length x.length - n.
func atMost(builder *Builder, x string, n int) int {
	s := builder.CreateState()
	if len(x) == n {
		builder.SetAccept(s, true)
		return s
	}

	c := int(x[n])
	builder.AddTransitionLabel(s, atMost(builder, x, n+1), c)
	if c > '0' {
		builder.AddTransition(s, anyOfRightLength(builder, x, n+1), '0', c-1)
	}
	return s
}

// Constructs sub-automaton corresponding to decimal numbers of length x.length - n.
func anyOfRightLength(builder *Builder, x string, n int) int {
	s := builder.CreateState()
	if len(x) == n {
		builder.SetAccept(s, true)
	} else {
		builder.AddTransition(s, anyOfRightLength(builder, x, n+1), '0', '9')
	}
	return s
}
