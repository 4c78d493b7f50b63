package automaton

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// StringUnionBuilder builds a minimal, deterministic Automaton that accepts a set of strings. The
// algorithm requires sorted input data, but is very fast (nearly linear with the input size).
//
// See: Jan Daciuk, Stoyan Mihov, Bruce W. Watson, Richard E. Watson: Incremental Construction of
// Minimal Acyclic Finite-State Automata.
type StringUnionBuilder struct {
	// states is the arena; index 0 is the root.
	states []dmState

	// registry maps the structure of every frozen state to its index in states.
	registry map[string]int

	// previous input, to check the sort order.
	previous []int

	completed bool
}

// dmState is one state of the trie under construction. Transitions are kept in label order, and only
// the last one is still mutable.
type dmState struct {
	labels   []int
	children []int
	final    bool
}

func NewStringUnionBuilder() *StringUnionBuilder {
	return &StringUnionBuilder{
		states:   []dmState{{}},
		registry: make(map[string]int),
	}
}

// Add Adds another input string to the automaton; current must sort after every string added before.
// Adding the same string twice has no effect.
func (b *StringUnionBuilder) Add(current []int) error {
	if b.completed {
		return errors.New("automaton already built")
	}
	if b.previous != nil && slices.Compare(b.previous, current) > 0 {
		return fmt.Errorf("%w: %v after %v", ErrUnsortedInput, current, b.previous)
	}
	b.previous = slices.Clone(current)

	// Descend in the automaton (find matching prefix).
	pos, max := 0, len(current)
	state := 0
	for pos < max {
		next := b.lastChild(state, current[pos])
		if next == -1 {
			break
		}
		state = next
		pos++
	}

	if b.hasChildren(state) {
		b.replaceOrRegister(state)
	}

	b.addSuffix(state, current, pos)
	return nil
}

// Complete Finalizes the automaton. No more strings can be added afterwards.
func (b *StringUnionBuilder) Complete() {
	if b.completed {
		return
	}
	if b.hasChildren(0) {
		b.replaceOrRegister(0)
	}
	b.registry = nil
	b.completed = true
}

// Build completes the builder and converts the trie into an Automaton whose initial state is the
// trie root.
func (b *StringUnionBuilder) Build() *Automaton {
	b.Complete()

	builder := NewBuilder()
	visited := make(map[int]int)
	b.convert(builder, 0, visited)
	return builder.Finish()
}

// NumStates returns the number of distinct states built so far.
func (b *StringUnionBuilder) NumStates() int {
	return len(b.states)
}

// Internal recursive traversal for conversion.
func (b *StringUnionBuilder) convert(builder *Builder, s int, visited map[int]int) int {
	if converted, ok := visited[s]; ok {
		return converted
	}

	converted := builder.CreateState()
	builder.SetAccept(converted, b.states[s].final)
	visited[s] = converted

	for i, target := range b.states[s].children {
		builder.AddTransitionLabel(converted, b.convert(builder, target, visited), b.states[s].labels[i])
	}
	return converted
}

// lastChild returns the target of the last transition of state if it is labeled label, else -1.
func (b *StringUnionBuilder) lastChild(state, label int) int {
	s := &b.states[state]
	index := len(s.labels) - 1
	if index >= 0 && s.labels[index] == label {
		return s.children[index]
	}
	return -1
}

func (b *StringUnionBuilder) hasChildren(state int) bool {
	return len(b.states[state].children) > 0
}

// Replace last child of state with an already registered state or register the last child state.
func (b *StringUnionBuilder) replaceOrRegister(state int) {
	last := len(b.states[state].children) - 1
	child := b.states[state].children[last]

	if b.hasChildren(child) {
		b.replaceOrRegister(child)
	}

	key := b.stateKey(child)
	if registered, ok := b.registry[key]; ok {
		b.states[state].children[last] = registered
		if child == len(b.states)-1 {
			// the replaced state is unreachable now; it is always the newest one
			b.states = b.states[:child]
		}
		return
	}
	b.registry[key] = child
}

// Add a suffix of current starting at fromIndex (inclusive) to state.
func (b *StringUnionBuilder) addSuffix(state int, current []int, fromIndex int) {
	for _, label := range current[fromIndex:] {
		next := len(b.states)
		b.states = append(b.states, dmState{})
		b.states[state].labels = append(b.states[state].labels, label)
		b.states[state].children = append(b.states[state].children, next)
		state = next
	}
	b.states[state].final = true
}

// stateKey encodes the structure of a frozen state: two states with equal keys accept the same suffixes.
func (b *StringUnionBuilder) stateKey(state int) string {
	s := &b.states[state]
	var sb strings.Builder
	if s.final {
		sb.WriteByte('F')
	} else {
		sb.WriteByte('N')
	}
	for i, label := range s.labels {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(label))
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(s.children[i]))
	}
	return sb.String()
}
