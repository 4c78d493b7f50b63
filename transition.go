package automaton

import "fmt"

// Transition holds one leaving transition from a state; it is also used as an
// iterator over a state's transitions via Automaton.InitTransition and
// Automaton.GetNextTransition.
type Transition struct {
	// Source state.
	Source int

	// Destination state.
	Dest int

	// Minimum accepted label (inclusive).
	Min int

	// Maximum accepted label (inclusive).
	Max int

	// Remembers where we are in the iteration; init to -1 to provoke exception
	// if nextTransition is called without first initTransition.
	TransitionUpto int
}

func NewTransition() *Transition {
	return &Transition{
		Source:         -1,
		Dest:           -1,
		Min:            -1,
		Max:            -1,
		TransitionUpto: -1,
	}
}

func (t *Transition) String() string {
	return fmt.Sprintf("%d --> %d %s", t.Source, t.Dest, formatLabelRange(t.Min, t.Max))
}

func formatLabelRange(min, max int) string {
	if min == max {
		return formatLabel(min)
	}
	return formatLabel(min) + "-" + formatLabel(max)
}

func formatLabel(label int) string {
	if label >= 0x21 && label <= 0x7e && label != '\\' && label != '"' {
		return string(rune(label))
	}
	return fmt.Sprintf("0x%x", label)
}
