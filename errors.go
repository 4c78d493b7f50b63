package automaton

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalArgument is returned for malformed arguments: out-of-range states,
	// min > max intervals, unsupported edit distances.
	ErrIllegalArgument = errors.New("illegal argument")

	// ErrTooComplexToDeterminize is returned when a subset construction or a
	// regexp repeat would exceed the configured work limit.
	ErrTooComplexToDeterminize = errors.New("automaton too complex to determinize")

	ErrNotDeterministic  = errors.New("input automaton must be deterministic")
	ErrDeadStates        = errors.New("input automaton has dead states")
	ErrNotFinite         = errors.New("automaton accepts an infinite language")
	ErrNotBinary         = errors.New("automaton is not binary")
	ErrUnsortedInput     = errors.New("input must be in sorted order")
	ErrAutomatonNotFound = errors.New("automaton not found")

	// ErrSyntax marks a regexp that could not be parsed.
	ErrSyntax = errors.New("syntax error")

	// ErrIllegalSyntax marks a regexp that uses an operator disabled by its
	// syntax flags, or flags that make no sense.
	ErrIllegalSyntax = errors.New("illegal syntax")
)

// ParseError describes where a regular expression failed to parse.
type ParseError struct {
	Pos  int
	Msg  string
	Kind error // ErrSyntax or ErrIllegalSyntax
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at position %d: %s", e.Kind, e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func syntaxError(pos int, format string, args ...any) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...), Kind: ErrSyntax}
}

func illegalSyntax(pos int, format string, args ...any) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...), Kind: ErrIllegalSyntax}
}

func tooComplex(workLimit int) error {
	return fmt.Errorf("%w: work limit %d exceeded", ErrTooComplexToDeterminize, workLimit)
}
