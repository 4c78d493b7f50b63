package automaton

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
)

// TermsEnum iterates a sorted term dictionary. Terms are compared as unsigned bytes. A nil term
// means the enumeration is exhausted. Returned slices are only valid until the next call.
type TermsEnum interface {
	// SeekCeil positions the enum at the smallest term >= target and returns it.
	SeekCeil(target []byte) ([]byte, error)
	// Next advances to the next term.
	Next() ([]byte, error)
}

// EmptyTermsEnum has no terms.
type EmptyTermsEnum struct{}

func (EmptyTermsEnum) SeekCeil([]byte) ([]byte, error) { return nil, nil }
func (EmptyTermsEnum) Next() ([]byte, error)           { return nil, nil }

// AcceptStatus Return value, if term should be accepted or the iteration should END.
type AcceptStatus int

const (
	// YES Accept the term.
	YES AcceptStatus = iota
	// YES_AND_SEEK Accept the term and position the enum at the next seek term returned by
	// NextSeekTerm.
	YES_AND_SEEK
	// NO Reject the term.
	NO
	// NO_AND_SEEK Reject the term and position the enum at the next seek term returned by
	// NextSeekTerm.
	NO_AND_SEEK
	// END Reject the term and stop enumerating.
	END
)

func (s AcceptStatus) String() string {
	switch s {
	case YES:
		return "YES"
	case YES_AND_SEEK:
		return "YES_AND_SEEK"
	case NO:
		return "NO"
	case NO_AND_SEEK:
		return "NO_AND_SEEK"
	case END:
		return "END"
	}
	return fmt.Sprintf("AcceptStatus(%d)", int(s))
}

// TermsFilter decides which terms a FilteredTermsEnum returns and where it seeks.
type TermsFilter interface {
	// Accept checks if the term should be accepted, and whether the enumeration should seek or end.
	Accept(term []byte) (AcceptStatus, error)

	// NextSeekTerm returns the next term to seek to, given the current term (nil before the first
	// seek); nil ends the enumeration. Seek terms must increase.
	NextSeekTerm(currentTerm []byte) ([]byte, error)
}

// FilteredTermsEnum Abstract class for enumerating a subset of all terms.
//
// Term enumerations are always ordered by their byte order. Each term in the enumeration is greater
// than all that precede it.
type FilteredTermsEnum struct {
	tenum      TermsEnum
	filter     TermsFilter
	doSeek     bool
	actualTerm []byte
}

// NewFilteredTermsEnum Creates a filtered TermsEnum on a terms enum. With startWithSeek the first
// term comes from a seek to filter.NextSeekTerm(nil); otherwise enumeration starts with Next.
func NewFilteredTermsEnum(tenum TermsEnum, filter TermsFilter, startWithSeek bool) *FilteredTermsEnum {
	return &FilteredTermsEnum{
		tenum:  tenum,
		filter: filter,
		doSeek: startWithSeek,
	}
}

// SeekCeil is not supported on a filtered enumeration.
func (f *FilteredTermsEnum) SeekCeil([]byte) ([]byte, error) {
	return nil, fmt.Errorf("filtered terms enum: %w", errors.ErrUnsupported)
}

func (f *FilteredTermsEnum) Next() ([]byte, error) {
	for {
		// Seek or forward the iterator
		if f.doSeek {
			f.doSeek = false
			t, err := f.filter.NextSeekTerm(f.actualTerm)
			if err != nil {
				return nil, err
			}
			if t == nil {
				// no more terms to seek to
				return nil, nil
			}
			f.actualTerm, err = f.tenum.SeekCeil(t)
			if err != nil {
				return nil, err
			}
			if f.actualTerm == nil {
				// enum exhausted
				return nil, nil
			}
		} else {
			var err error
			f.actualTerm, err = f.tenum.Next()
			if err != nil {
				return nil, err
			}
			if f.actualTerm == nil {
				// enum exhausted
				return nil, nil
			}
		}

		// check if term is accepted
		status, err := f.filter.Accept(f.actualTerm)
		if err != nil {
			return nil, err
		}
		switch status {
		case YES_AND_SEEK:
			f.doSeek = true
			return f.actualTerm, nil
		case YES:
			return f.actualTerm, nil
		case NO_AND_SEEK:
			// invalid term, seek next time
			f.doSeek = true
		case END:
			// we are supposed to end the enum
			return nil, nil
		}
		// NO: we just fall through and iterate again
	}
}

// initialSeek serves a single initial seek term.
type initialSeek struct {
	term []byte
}

func (s *initialSeek) NextSeekTerm([]byte) ([]byte, error) {
	t := s.term
	s.term = nil
	return t, nil
}

type singleTermFilter struct {
	initialSeek
	singleRef []byte
}

func (f *singleTermFilter) Accept(term []byte) (AcceptStatus, error) {
	if bytes.Equal(term, f.singleRef) {
		return YES, nil
	}
	return END, nil
}

// NewSingleTermsEnum Subclass of FilteredTermsEnum for enumerating a single term.
func NewSingleTermsEnum(tenum TermsEnum, termText []byte) *FilteredTermsEnum {
	f := &singleTermFilter{initialSeek: initialSeek{term: termText}, singleRef: termText}
	return NewFilteredTermsEnum(tenum, f, true)
}

type prefixFilter struct {
	initialSeek
	prefixRef []byte
}

func (f *prefixFilter) Accept(term []byte) (AcceptStatus, error) {
	if bytes.HasPrefix(term, f.prefixRef) {
		return YES, nil
	}
	return END, nil
}

// NewPrefixTermsEnum Subclass of FilteredTermsEnum for enumerating all terms that match the
// specified prefix filter term.
func NewPrefixTermsEnum(tenum TermsEnum, prefixText []byte) *FilteredTermsEnum {
	// the empty prefix still needs a non-nil seek term
	seek := append([]byte{}, prefixText...)
	f := &prefixFilter{initialSeek: initialSeek{term: seek}, prefixRef: prefixText}
	return NewFilteredTermsEnum(tenum, f, true)
}

// automatonFilter drives a FilteredTermsEnum over the terms of a COMPILED_NORMAL automaton.
//
// The algorithm is such:
//  1. As long as matches are successful, keep reading sequentially.
//  2. When a match fails, skip to the next string in lexicographic order that does not enter a
//     reject state.
//
// The algorithm does not attempt to actually skip to the next string that is completely accepted.
// This is not possible when the language accepted by the FSM is not finite (i.e. * operator).
type automatonFilter struct {
	// a tableized array-based form of the DFA
	runAutomaton *ByteRunAutomaton
	// common suffix of the automaton
	commonSuffixRef []byte
	// true if the automaton accepts a finite language
	finite bool
	// array of sorted transitions for each state, indexed by state number
	automaton *Automaton
	// Used for visited state tracking: each short records gen when we last visited the state; we
	// use gens to avoid having to clear
	visited []uint16
	curGen  uint16
	// the reference used for seeking forwards through the term dictionary
	seekBytesRef []byte
	// true if we are enumerating an infinite portion of the DFA. in this case it is faster to drive
	// the query based on the terms dictionary. when this is true, linearUpperBound indicate the end
	// of range of terms where we should simply do sequential reads instead.
	linear           bool
	linearUpperBound []byte
	savedStates      []int
	transition       *Transition
}

// NewAutomatonTermsEnum Construct an enumerator based upon an automaton, enumerating the specified
// field, working on a supplied TermsEnum. The compiled automaton must be COMPILED_NORMAL; use
// CompiledAutomaton.GetTermsEnum for the other forms.
func NewAutomatonTermsEnum(tenum TermsEnum, compiled *CompiledAutomaton) (*FilteredTermsEnum, error) {
	if compiled.Type != COMPILED_NORMAL {
		return nil, fmt.Errorf("%w: please use CompiledAutomaton.GetTermsEnum instead", ErrIllegalArgument)
	}
	f := &automatonFilter{
		runAutomaton:    compiled.RunAutomaton,
		commonSuffixRef: compiled.CommonSuffixRef,
		finite:          compiled.Finite,
		automaton:       compiled.Automaton,
		transition:      NewTransition(),
	}
	if !f.finite {
		// No need to track visited states for a finite language without loops.
		f.visited = make([]uint16, f.runAutomaton.GetSize())
	}
	return NewFilteredTermsEnum(tenum, f, true), nil
}

// Accept Returns true if the term matches the automaton. Also stashes away the term to assist with
// smart enumeration.
func (f *automatonFilter) Accept(term []byte) (AcceptStatus, error) {
	if f.commonSuffixRef == nil || bytes.HasSuffix(term, f.commonSuffixRef) {
		if f.runAutomaton.Run(term) {
			if f.linear {
				return YES, nil
			}
			return YES_AND_SEEK, nil
		}
	}
	if f.linear && bytes.Compare(term, f.linearUpperBound) < 0 {
		return NO, nil
	}
	return NO_AND_SEEK, nil
}

func (f *automatonFilter) NextSeekTerm(term []byte) ([]byte, error) {
	if term == nil {
		// return the empty term, as it's valid
		if f.runAutomaton.IsAccept(0) {
			f.seekBytesRef = f.seekBytesRef[:0]
			return []byte{}, nil
		}
	} else {
		f.seekBytesRef = append(f.seekBytesRef[:0], term...)
	}

	// seek to the next possible string;
	if f.nextString() {
		// reposition
		return append([]byte(nil), f.seekBytesRef...), nil
	}
	// no more possible strings can match
	return nil, nil
}

// Sets the enum to operate in linear fashion, as we have found a looping transition at position:
// we set an upper bound and act like a TermRangeQuery for this portion of the term space.
func (f *automatonFilter) setLinear(position int) {
	state := 0
	maxInterval := 0xff
	for i := 0; i < position; i++ {
		state = f.runAutomaton.Step(state, int(f.seekBytesRef[i]))
	}
	c := int(f.seekBytesRef[position])
	numTransitions := f.automaton.InitTransition(state, f.transition)
	for i := 0; i < numTransitions; i++ {
		f.automaton.GetNextTransition(f.transition)
		if f.transition.Min <= c && c <= f.transition.Max {
			maxInterval = f.transition.Max
			break
		}
	}
	// 0xff terms don't get the optimization... not worth the trouble.
	f.linearUpperBound = append(f.linearUpperBound[:0], f.seekBytesRef[:position]...)
	if maxInterval != 0xff {
		f.linearUpperBound = append(f.linearUpperBound, byte(maxInterval+1))
	}
	f.linear = true
}

// Increments the byte buffer to the next String in binary order after s that will not put the
// machine into a reject state. If such a string does not exist, returns false.
//
// The correctness of this method depends upon the automaton being deterministic, and having no
// transitions to dead states.
func (f *automatonFilter) nextString() bool {
	var state int
	pos := 0
	// entries are written before they are read, so stale values need no clearing
	f.savedStates = slices.Grow(f.savedStates[:0], len(f.seekBytesRef)+1)[:len(f.seekBytesRef)+1]
	f.savedStates[0] = 0

	for {
		if !f.finite {
			f.curGen++
			if f.curGen == 0 {
				// Clear the visited states every time curGen wraps
				clear(f.visited)
				f.curGen = 1
			}
		}
		f.linear = false
		// walk the automaton until a character is rejected.
		for state = f.savedStates[pos]; pos < len(f.seekBytesRef); pos++ {
			f.setVisited(state)
			nextState := f.runAutomaton.Step(state, int(f.seekBytesRef[pos]))
			if nextState == -1 {
				break
			}
			f.savedStates[pos+1] = nextState
			// we found a loop, record it for faster enumeration
			if !f.finite && !f.linear && f.isVisited(nextState) {
				f.setLinear(pos)
			}
			state = nextState
		}

		// take the useful portion, and the last non-reject state, and attempt to append characters
		// that will match.
		if f.nextStringFrom(state, pos) {
			return true
		}

		// no more solutions exist from this useful portion, backtrack
		if pos = f.backtrack(pos); pos < 0 {
			// no more solutions at all
			return false
		}
		newState := f.runAutomaton.Step(f.savedStates[pos], int(f.seekBytesRef[pos]))
		if newState >= 0 && f.runAutomaton.IsAccept(newState) {
			// String is good to go as-is
			return true
		}
		// else advance further; the loop detection needs a fresh walk for infinite languages
		if !f.finite {
			pos = 0
		}
	}
}

// Returns the next String in lexicographic order that will not put the machine into a reject
// state.
//
// This method traverses the DFA from the given position in the String, starting at the given state.
//
// If this cannot satisfy the machine, returns false. This method will walk the minimal path, in
// lexicographic order, as long as possible.
//
// If this method returns false, then there might still be more solutions, it is necessary to
// backtrack to find out.
func (f *automatonFilter) nextStringFrom(state, position int) bool {
	// the next lexicographic character must be greater than the existing character, if it exists.
	c := 0
	if position < len(f.seekBytesRef) {
		c = int(f.seekBytesRef[position])
		// if the next byte is 0xff and is not part of the useful portion, then by definition it puts
		// us in a reject state, and therefore this path is dead. there cannot be any higher
		// transitions. backtrack.
		if c == 0xff {
			return false
		}
		c++
	}

	f.seekBytesRef = f.seekBytesRef[:position]
	f.setVisited(state)

	numTransitions := f.automaton.InitTransition(state, f.transition)
	// find the minimal path (lexicographic order) that is >= c
	for i := 0; i < numTransitions; i++ {
		f.automaton.GetNextTransition(f.transition)
		if f.transition.Max < c {
			continue
		}
		nextChar := max(c, f.transition.Min)
		// append either the next sequential char, or the minimum transition
		f.seekBytesRef = append(f.seekBytesRef, byte(nextChar))
		state = f.transition.Dest

		// as long as is possible, continue down the minimal path in lexicographic order. if a loop
		// or accept state is encountered, stop.
		for !f.isVisited(state) && !f.runAutomaton.IsAccept(state) {
			f.setVisited(state)
			// a live, non-accepting state has at least one transition
			f.automaton.InitTransition(state, f.transition)
			f.automaton.GetNextTransition(f.transition)
			state = f.transition.Dest

			// append the minimum transition
			f.seekBytesRef = append(f.seekBytesRef, byte(f.transition.Min))

			// we found a loop, record it for faster enumeration
			if !f.finite && !f.linear && f.isVisited(state) {
				f.setLinear(len(f.seekBytesRef) - 1)
			}
		}
		return true
	}
	return false
}

// Attempts to backtrack thru the string after encountering a dead end at some given position.
// Returns false if no more possible strings can match.
func (f *automatonFilter) backtrack(position int) int {
	for position > 0 {
		position--
		nextChar := f.seekBytesRef[position]
		// if a character is 0xff it's a dead-end too, because there is no higher character in binary
		// sort order.
		if nextChar != 0xff {
			f.seekBytesRef[position] = nextChar + 1
			f.seekBytesRef = f.seekBytesRef[:position+1]
			return position
		}
	}
	// all solutions exhausted
	return -1
}

func (f *automatonFilter) setVisited(state int) {
	if !f.finite {
		f.visited[state] = f.curGen
	}
}

func (f *automatonFilter) isVisited(state int) bool {
	return !f.finite && f.visited[state] == f.curGen
}
