package automaton

import (
	"slices"
	"unicode"

	"github.com/bits-and-blooms/bitset"
)

// Operations never modify the language or the states of their arguments, with one exception: a
// singleton argument is expanded in place into its state graph the first time an operation reads
// its states (GetNumStates, IsAccept and the transition accessors all call ExpandSingleton). A
// result may be one of the arguments when the operation is the identity on it (Determinize of a
// deterministic automaton, for example), so treat every returned automaton as read-only unless you
// built it yourself.

const (
	// DEFAULT_DETERMINIZE_WORK_LIMIT Default maximum effort that Determinize should spend before giving up.
	DEFAULT_DETERMINIZE_WORK_LIMIT = 10000
)

// Concatenate Returns an automaton that accepts the concatenation of the languages of the given automata.
// Complexity: linear in total number of states.
func Concatenate(automata ...*Automaton) *Automaton {
	if len(automata) == 0 {
		return defaultAutomata.MakeEmptyString()
	}

	allSingletons := true
	for _, a := range automata {
		if !a.IsSingleton() {
			allSingletons = false
			break
		}
	}
	if allSingletons {
		labels := make([]int, 0)
		for _, a := range automata {
			labels = append(labels, a.Singleton()...)
		}
		return newSingleton(labels)
	}

	result := NewAutomaton()

	// First pass: create all states
	for _, a := range automata {
		if a.GetNumStates() == 0 {
			result.FinishState()
			return result
		}
		numStates := a.GetNumStates()
		for s := 0; s < numStates; s++ {
			result.CreateState()
		}
	}

	// Second pass: add transitions, carefully linking accept
	// states of A to init state of next A:
	stateOffset := 0
	t := Transition{}

	for i, a := range automata {
		numStates := a.GetNumStates()

		var nextA *Automaton
		if i < len(automata)-1 {
			nextA = automata[i+1]
		}

		for s := 0; s < numStates; s++ {
			numTransitions := a.InitTransition(s, &t)
			for j := 0; j < numTransitions; j++ {
				a.GetNextTransition(&t)
				result.addTransition(stateOffset+s, stateOffset+t.Dest, t.Min, t.Max)
			}

			if a.IsAccept(s) {
				followA := nextA
				followOffset := stateOffset
				upto := i + 1
				for {
					if followA == nil {
						result.SetAccept(stateOffset+s, true)
						break
					}

					// Adds a "virtual" epsilon transition:
					numTransitions = followA.InitTransition(0, &t)
					for j := 0; j < numTransitions; j++ {
						followA.GetNextTransition(&t)
						result.addTransition(stateOffset+s, followOffset+numStates+t.Dest, t.Min, t.Max)
					}
					if !followA.IsAccept(0) {
						break
					}

					// Keep chaining if followA accepts empty string
					followOffset += followA.GetNumStates()
					upto++
					if upto < len(automata) {
						followA = automata[upto]
					} else {
						followA = nil
					}
				}
			}
		}

		stateOffset += numStates
	}

	result.FinishState()
	return result
}

// Optional Returns an automaton that accepts the union of the empty string and the language of the
// given automaton.
// Complexity: linear in number of states.
func Optional(a *Automaton) *Automaton {
	result := NewAutomaton()
	result.CreateState()
	result.SetAccept(0, true)
	if a.GetNumStates() > 0 {
		result.Copy(a)
		result.AddEpsilon(0, 1)
	}
	result.FinishState()
	return result
}

// Repeat Returns an automaton that accepts the Kleene star (zero or more concatenated repetitions) of
// the language of the given automaton.
// Complexity: linear in number of states.
func Repeat(a *Automaton) *Automaton {
	if a.GetNumStates() == 0 {
		// zero repetitions still match the empty string
		return defaultAutomata.MakeEmptyString()
	}
	builder := NewBuilder()
	builder.CreateState()
	builder.SetAccept(0, true)
	builder.Copy(a)

	t := Transition{}
	count := a.InitTransition(0, &t)
	for i := 0; i < count; i++ {
		a.GetNextTransition(&t)
		builder.AddTransition(0, t.Dest+1, t.Min, t.Max)
	}

	numStates := a.GetNumStates()
	for s := 0; s < numStates; s++ {
		if a.IsAccept(s) {
			count = a.InitTransition(0, &t)
			for i := 0; i < count; i++ {
				a.GetNextTransition(&t)
				builder.AddTransition(s+1, t.Dest+1, t.Min, t.Max)
			}
		}
	}

	return builder.Finish()
}

// RepeatMin Returns an automaton that accepts min or more concatenated repetitions of the language of
// the given automaton.
// Complexity: linear in number of states and in min.
func RepeatMin(a *Automaton, min int) *Automaton {
	if min <= 0 {
		return Repeat(a)
	}
	if !a.IsSingleton() && a.GetNumStates() == 0 {
		return defaultAutomata.MakeEmpty()
	}
	as := make([]*Automaton, 0, min+1)
	for ; min > 0; min-- {
		as = append(as, a)
	}
	as = append(as, Repeat(a))
	return Concatenate(as...)
}

// RepeatRange Returns an automaton that accepts between min and max (including both) concatenated
// repetitions of the language of the given automaton. If max < min, the empty language is returned.
// Complexity: linear in number of states and in min and max.
func RepeatRange(a *Automaton, min, max int) *Automaton {
	if min > max {
		return defaultAutomata.MakeEmpty()
	}
	if min < 0 {
		min = 0
	}
	if !a.IsSingleton() && a.GetNumStates() == 0 {
		if min == 0 {
			return defaultAutomata.MakeEmptyString()
		}
		return defaultAutomata.MakeEmpty()
	}

	if a.IsSingleton() && min == max {
		labels := make([]int, 0, len(a.Singleton())*min)
		for i := 0; i < min; i++ {
			labels = append(labels, a.Singleton()...)
		}
		return newSingleton(labels)
	}

	var b *Automaton
	switch min {
	case 0:
		b = defaultAutomata.MakeEmptyString()
	case 1:
		b = NewAutomaton()
		b.Copy(a)
	default:
		as := make([]*Automaton, 0, min)
		for i := 0; i < min; i++ {
			as = append(as, a)
		}
		b = Concatenate(as...)
	}

	prevAcceptStates := toSet(b, 0)
	builder := NewBuilder()
	builder.Copy(b)
	for i := min; i < max; i++ {
		numStates := builder.GetNumStates()
		builder.Copy(a)
		for _, s := range prevAcceptStates {
			builder.AddEpsilon(s, numStates)
		}
		prevAcceptStates = toSet(a, numStates)
	}

	return builder.Finish()
}

// toSet returns the accept states of a, shifted by offset.
func toSet(a *Automaton, offset int) []int {
	numStates := uint(a.GetNumStates())
	isAccept := a.getAcceptStates()
	result := make([]int, 0)
	for s, ok := isAccept.NextSet(0); ok && s < numStates; s, ok = isAccept.NextSet(s + 1) {
		result = append(result, offset+int(s))
	}
	return result
}

// Complement Returns a (deterministic) automaton that accepts the complement of the language of the
// given automaton.
// Complexity: linear in number of states if already deterministic and exponential otherwise.
func Complement(a *Automaton, determinizeWorkLimit int) (*Automaton, error) {
	d, err := Determinize(a, determinizeWorkLimit)
	if err != nil {
		return nil, err
	}
	result := Totalize(d)
	numStates := result.GetNumStates()
	for p := 0; p < numStates; p++ {
		result.SetAccept(p, !result.IsAccept(p))
	}
	return RemoveDeadStates(result), nil
}

// Minus Returns a (deterministic) automaton that accepts the intersection of the language of a1 and
// the complement of the language of a2.
// Complexity: quadratic in number of states if a2 already deterministic and exponential in number of
// a2's states otherwise.
func Minus(a1, a2 *Automaton, determinizeWorkLimit int) (*Automaton, error) {
	if IsEmpty(a1) || a1 == a2 {
		return defaultAutomata.MakeEmpty(), nil
	}
	if IsEmpty(a2) {
		return a1, nil
	}
	c, err := Complement(a2, determinizeWorkLimit)
	if err != nil {
		return nil, err
	}
	return Intersection(a1, c), nil
}

type statePair struct {
	s1, s2 int
}

// Intersection Returns an automaton that accepts the intersection of the languages of the given
// automata. Never modifies the input automata languages.
// Complexity: quadratic in number of states.
func Intersection(a1, a2 *Automaton) *Automaton {
	if a1 == a2 {
		return a1
	}
	if a1.IsSingleton() {
		if RunLabels(a2, a1.Singleton()) {
			return a1.Clone()
		}
		return defaultAutomata.MakeEmpty()
	}
	if a2.IsSingleton() {
		if RunLabels(a1, a2.Singleton()) {
			return a2.Clone()
		}
		return defaultAutomata.MakeEmpty()
	}
	if a1.GetNumStates() == 0 {
		return a1
	}
	if a2.GetNumStates() == 0 {
		return a2
	}

	transitions1 := a1.getSortedTransitions()
	transitions2 := a2.getSortedTransitions()
	c := NewAutomaton()
	c.CreateState()

	worklist := []statePair{{0, 0}}
	newStates := map[statePair]int{{0, 0}: 0}
	for len(worklist) > 0 {
		p := worklist[0]
		worklist = worklist[1:]
		ps := newStates[p]

		c.SetAccept(ps, a1.IsAccept(p.s1) && a2.IsAccept(p.s2))
		t1 := transitions1[p.s1]
		t2 := transitions2[p.s2]
		for n1, b2 := 0, 0; n1 < len(t1); n1++ {
			for b2 < len(t2) && t2[b2].Max < t1[n1].Min {
				b2++
			}
			for n2 := b2; n2 < len(t2) && t1[n1].Max >= t2[n2].Min; n2++ {
				if t2[n2].Max >= t1[n1].Min {
					q := statePair{t1[n1].Dest, t2[n2].Dest}
					r, ok := newStates[q]
					if !ok {
						r = c.CreateState()
						newStates[q] = r
						worklist = append(worklist, q)
					}
					c.addTransition(ps, r, max(t1[n1].Min, t2[n2].Min), min(t1[n1].Max, t2[n2].Max))
				}
			}
		}
	}
	c.FinishState()

	return RemoveDeadStates(c)
}

// SameLanguage Returns true if these two automata accept exactly the same language. This is a costly
// computation! Both automata must be determinized and have no dead states!
func SameLanguage(a1, a2 *Automaton) (bool, error) {
	if a1 == a2 {
		return true, nil
	}
	ok, err := SubsetOf(a2, a1)
	if err != nil || !ok {
		return false, err
	}
	return SubsetOf(a1, a2)
}

// SubsetOf Returns true if the language of a1 is a subset of the language of a2. Both automata must
// be determinized.
// Complexity: quadratic in number of states.
func SubsetOf(a1, a2 *Automaton) (bool, error) {
	if a1.IsSingleton() {
		return RunLabels(a2, a1.Singleton()), nil
	}
	if !a1.IsDeterministic() || !a2.IsDeterministic() {
		return false, ErrNotDeterministic
	}
	if HasDeadStatesFromInitial(a1) {
		a1 = RemoveDeadStates(a1)
	}

	if a1.GetNumStates() == 0 {
		// Empty language is always a subset of any other language
		return true, nil
	} else if a2.GetNumStates() == 0 {
		return IsEmpty(a1), nil
	}

	transitions1 := a1.getSortedTransitions()
	transitions2 := a2.getSortedTransitions()
	worklist := []statePair{{0, 0}}
	visited := map[statePair]struct{}{{0, 0}: {}}
	for len(worklist) > 0 {
		p := worklist[0]
		worklist = worklist[1:]

		if a1.IsAccept(p.s1) && !a2.IsAccept(p.s2) {
			return false, nil
		}
		t1 := transitions1[p.s1]
		t2 := transitions2[p.s2]
		for n1, b2 := 0, 0; n1 < len(t1); n1++ {
			for b2 < len(t2) && t2[b2].Max < t1[n1].Min {
				b2++
			}
			min1, max1 := t1[n1].Min, t1[n1].Max

			for n2 := b2; n2 < len(t2) && t1[n1].Max >= t2[n2].Min; n2++ {
				if t2[n2].Min > min1 {
					return false, nil
				}
				if t2[n2].Max < unicode.MaxRune {
					min1 = t2[n2].Max + 1
				} else {
					min1 = unicode.MaxRune
					max1 = 0
				}
				q := statePair{t1[n1].Dest, t2[n2].Dest}
				if _, ok := visited[q]; !ok {
					worklist = append(worklist, q)
					visited[q] = struct{}{}
				}
			}
			if min1 <= max1 {
				return false, nil
			}
		}
	}
	return true, nil
}

// Union Returns an automaton that accepts the union of the languages of the given automata.
// Complexity: linear in number of states.
func Union(automata ...*Automaton) *Automaton {
	result := NewAutomaton()

	// Create initial state:
	result.CreateState()

	// Copy over all automata
	for _, a := range automata {
		result.Copy(a)
	}

	// Add epsilon transition from new initial state
	stateOffset := 1
	for _, a := range automata {
		if a.GetNumStates() == 0 {
			continue
		}
		result.AddEpsilon(0, stateOffset)
		stateOffset += a.GetNumStates()
	}

	result.FinishState()

	return RemoveDeadStates(result)
}

// Totalize Returns a new automaton accepting the same language with added transitions to a dead state
// so that from every state and every label there is a transition.
func Totalize(a *Automaton) *Automaton {
	result := NewAutomaton()
	numStates := a.GetNumStates()
	for i := 0; i < numStates; i++ {
		result.CreateState()
		result.SetAccept(i, a.IsAccept(i))
	}

	deadState := result.CreateState()
	result.addTransition(deadState, deadState, 0, unicode.MaxRune)

	t := Transition{}
	for i := 0; i < numStates; i++ {
		maxi := 0
		count := a.InitTransition(i, &t)
		for j := 0; j < count; j++ {
			a.GetNextTransition(&t)
			result.addTransition(i, t.Dest, t.Min, t.Max)
			if t.Min > maxi {
				result.addTransition(i, deadState, maxi, t.Min-1)
			}
			if t.Max+1 > maxi {
				maxi = t.Max + 1
			}
		}

		if maxi <= unicode.MaxRune {
			result.addTransition(i, deadState, maxi, unicode.MaxRune)
		}
	}

	result.FinishState()
	return result
}

// IsEmpty
// Returns true if the given automaton accepts no strings.
func IsEmpty(a *Automaton) bool {
	if a.IsSingleton() {
		return false
	}
	if a.GetNumStates() == 0 {
		// Common case: no states
		return true
	}
	if !a.IsAccept(0) && a.GetNumTransitionsWithState(0) == 0 {
		// Common case: just one initial state
		return true
	}
	if a.IsAccept(0) {
		// Apparently common case: it accepts the damned empty string
		return false
	}

	workList := []int{0}
	seen := bitset.New(uint(a.GetNumStates()))
	seen.Set(0)

	t := Transition{}
	for len(workList) > 0 {
		state := workList[0]
		workList = workList[1:]

		if a.IsAccept(state) {
			return false
		}

		count := a.InitTransition(state, &t)
		for i := 0; i < count; i++ {
			a.GetNextTransition(&t)
			if !seen.Test(uint(t.Dest)) {
				workList = append(workList, t.Dest)
				seen.Set(uint(t.Dest))
			}
		}
	}
	return true
}

// IsTotal
// Returns true if the given automaton accepts all strings. The automaton must be minimized.
func IsTotal(a *Automaton) bool {
	return IsTotalRange(a, 0, unicode.MaxRune)
}

// IsTotalRange
// Returns true if the given automaton accepts all strings for the specified min/max range of the alphabet.
// The automaton must be minimized.
func IsTotalRange(a *Automaton, minAlphabet, maxAlphabet int) bool {
	if a.GetNumStates() == 0 {
		return false
	}
	if a.IsAccept(0) && a.GetNumTransitionsWithState(0) == 1 {
		t := Transition{}
		a.GetTransition(0, 0, &t)
		return t.Dest == 0 && t.Min == minAlphabet && t.Max == maxAlphabet
	}
	return false
}

// GetSingleton If this automaton accepts a single input, return it. Else, return nil. The automaton
// must be deterministic.
func GetSingleton(a *Automaton) ([]int, error) {
	if a.IsSingleton() {
		return slices.Clone(a.Singleton()), nil
	}
	if !a.IsDeterministic() {
		return nil, ErrNotDeterministic
	}
	if a.GetNumStates() == 0 {
		return nil, nil
	}

	ints := make([]int, 0)
	visited := bitset.New(uint(a.GetNumStates()))
	s := 0
	t := Transition{}
	for {
		visited.Set(uint(s))

		if !a.IsAccept(s) {
			if a.GetNumTransitionsWithState(s) == 1 {
				a.GetTransition(s, 0, &t)
				if t.Min == t.Max && !visited.Test(uint(t.Dest)) {
					ints = append(ints, t.Min)
					s = t.Dest
					continue
				}
			}
		} else if a.GetNumTransitionsWithState(s) == 0 {
			return ints, nil
		}

		// Automaton accepts more than one string:
		return nil, nil
	}
}

// RemoveDeadStates Removes transitions to dead states (a state is "dead" if it is not reachable from
// the initial state or no accept state is reachable from it.)
func RemoveDeadStates(a *Automaton) *Automaton {
	if a.IsSingleton() {
		return a.Clone()
	}
	numStates := a.GetNumStates()
	liveSet := getLiveStates(a)

	mp := make([]int, numStates)

	result := NewAutomaton()
	for i := 0; i < numStates; i++ {
		if liveSet.Test(uint(i)) {
			mp[i] = result.CreateState()
			result.SetAccept(mp[i], a.IsAccept(i))
		}
	}

	t := Transition{}
	for i := 0; i < numStates; i++ {
		if liveSet.Test(uint(i)) {
			numTransitions := a.InitTransition(i, &t)
			// filter out transitions to dead states:
			for j := 0; j < numTransitions; j++ {
				a.GetNextTransition(&t)
				if liveSet.Test(uint(t.Dest)) {
					result.addTransition(mp[i], mp[t.Dest], t.Min, t.Max)
				}
			}
		}
	}

	result.FinishState()
	return result
}

// HasDeadStates Returns true if the automaton has any states that cannot be reached from the initial
// state or cannot reach an accept state.
func HasDeadStates(a *Automaton) bool {
	return getLiveStates(a).Count() < uint(a.GetNumStates())
}

// HasDeadStatesFromInitial Returns true if there are dead states reachable from an initial state.
func HasDeadStatesFromInitial(a *Automaton) bool {
	reachableFromInitial := getLiveStatesFromInitial(a)
	reachableFromAccept := getLiveStatesToAccept(a)
	return reachableFromInitial.Difference(reachableFromAccept).Any()
}

// HasDeadStatesToAccept Returns true if there are dead states that reach an accept state.
func HasDeadStatesToAccept(a *Automaton) bool {
	reachableFromInitial := getLiveStatesFromInitial(a)
	reachableFromAccept := getLiveStatesToAccept(a)
	return reachableFromAccept.Difference(reachableFromInitial).Any()
}

// Returns bitset marking states reachable from the initial state and that can reach an accept state.
func getLiveStates(a *Automaton) *bitset.BitSet {
	live := getLiveStatesFromInitial(a)
	live.InPlaceIntersection(getLiveStatesToAccept(a))
	return live
}

// Returns bitset marking states reachable from the initial state.
func getLiveStatesFromInitial(a *Automaton) *bitset.BitSet {
	numStates := a.GetNumStates()
	live := bitset.New(uint(numStates))
	if numStates == 0 {
		return live
	}
	for _, s := range a.GetNumberedStates() {
		live.Set(uint(s))
	}
	return live
}

// Returns bitset marking states that can reach an accept state.
func getLiveStatesToAccept(a *Automaton) *bitset.BitSet {
	numStates := a.GetNumStates()
	live := bitset.New(uint(numStates))

	// reverse adjacency: reverse[dest] lists every source with an edge into dest
	reverse := make([][]int, numStates)
	t := Transition{}
	for s := 0; s < numStates; s++ {
		count := a.InitTransition(s, &t)
		for i := 0; i < count; i++ {
			a.GetNextTransition(&t)
			reverse[t.Dest] = append(reverse[t.Dest], s)
		}
	}

	workList := make([]int, 0)
	acceptBits := a.getAcceptStates()
	for s, ok := acceptBits.NextSet(0); ok && s < uint(numStates); s, ok = acceptBits.NextSet(s + 1) {
		live.Set(s)
		workList = append(workList, int(s))
	}

	for len(workList) > 0 {
		s := workList[0]
		workList = workList[1:]
		for _, src := range reverse[s] {
			if !live.Test(uint(src)) {
				live.Set(uint(src))
				workList = append(workList, src)
			}
		}
	}

	return live
}
