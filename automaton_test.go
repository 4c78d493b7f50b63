package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// allStrings returns every string over alphabet of length <= maxLen.
func allStrings(alphabet string, maxLen int) []string {
	result := []string{""}
	level := []string{""}
	for n := 0; n < maxLen; n++ {
		next := make([]string, 0, len(level)*len(alphabet))
		for _, s := range level {
			for _, c := range alphabet {
				next = append(next, s+string(c))
			}
		}
		result = append(result, next...)
		level = next
	}
	return result
}

// assertSameRuns checks that both automata agree on every short string over alphabet.
func assertSameRuns(t *testing.T, expected, actual *Automaton, alphabet string, maxLen int) {
	t.Helper()
	for _, s := range allStrings(alphabet, maxLen) {
		assert.Equalf(t, Run(expected, s), Run(actual, s), "input %q", s)
	}
}

func Test_getCommonPrefix(t *testing.T) {
	t.Run("testCommonPrefixEmpty", func(t *testing.T) {
		prefix, err := GetCommonPrefix(defaultAutomata.MakeEmpty())
		assert.Nil(t, err)
		assert.Equal(t, "", prefix)
	})

	t.Run("testCommonPrefixEmptyString", func(t *testing.T) {
		prefix, err := GetCommonPrefix(defaultAutomata.MakeEmptyString())
		assert.Nil(t, err)
		assert.Equal(t, "", prefix)
	})

	t.Run("testCommonPrefixAny", func(t *testing.T) {
		prefix, err := GetCommonPrefix(defaultAutomata.MakeAnyString())
		assert.Nil(t, err)
		assert.Equal(t, "", prefix)
	})

	t.Run("testCommonPrefixRange", func(t *testing.T) {
		prefix, err := GetCommonPrefix(defaultAutomata.MakeCharRange('a', 'b'))
		assert.Nil(t, err)
		assert.Equal(t, "", prefix)
	})

	t.Run("testCommonPrefixTrailingKleenStar", func(t *testing.T) {
		a := Concatenate(defaultAutomata.MakeString("foo"), defaultAutomata.MakeAnyString())
		prefix, err := GetCommonPrefix(a)
		assert.Nil(t, err)
		assert.Equal(t, "foo", prefix)
	})

	t.Run("testCommonPrefixNFA", func(t *testing.T) {
		a := NewAutomaton()
		init := a.CreateState()
		medial := a.CreateState()
		fini := a.CreateState()
		a.SetAccept(fini, true)
		err := a.AddTransitionLabel(init, medial, 'm')
		assert.Nil(t, err)
		err = a.AddTransitionLabel(init, fini, 'm')
		assert.Nil(t, err)
		err = a.AddTransitionLabel(medial, fini, 'o')
		assert.Nil(t, err)
		a.FinishState()

		prefix, err := GetCommonPrefix(a)
		assert.Nil(t, err)
		assert.Equal(t, "m", prefix)
	})

	t.Run("testCommonPrefixDeadStates", func(t *testing.T) {
		a := NewAutomaton()
		s0 := a.CreateState()
		s1 := a.CreateState()
		s2 := a.CreateState()
		a.SetAccept(s1, true)
		assert.Nil(t, a.AddTransitionLabel(s0, s1, 'a'))
		assert.Nil(t, a.AddTransitionLabel(s0, s2, 'b'))
		a.FinishState()

		_, err := GetCommonPrefix(a)
		assert.ErrorIs(t, err, ErrDeadStates)
	})
}

func TestAutomaton_Transitions(t *testing.T) {
	t.Run("sortedAndReduced", func(t *testing.T) {
		a := NewAutomaton()
		s0 := a.CreateState()
		s1 := a.CreateState()
		a.SetAccept(s1, true)
		assert.Nil(t, a.AddTransition(s0, s1, 'd', 'f'))
		assert.Nil(t, a.AddTransition(s0, s1, 'a', 'c'))
		assert.Nil(t, a.AddTransition(s0, s1, 'x', 'z'))
		a.FinishState()

		// a-c and d-f are adjacent and share a destination
		assert.Equal(t, 2, a.GetNumTransitionsWithState(s0))
		tr := NewTransition()
		a.GetTransition(s0, 0, tr)
		assert.Equal(t, 'a', rune(tr.Min))
		assert.Equal(t, 'f', rune(tr.Max))
		a.GetTransition(s0, 1, tr)
		assert.Equal(t, 'x', rune(tr.Min))
		assert.True(t, a.IsDeterministic())
	})

	t.Run("overlapIsNondeterministic", func(t *testing.T) {
		a := NewAutomaton()
		s0 := a.CreateState()
		s1 := a.CreateState()
		s2 := a.CreateState()
		assert.Nil(t, a.AddTransition(s0, s1, 'a', 'c'))
		assert.Nil(t, a.AddTransition(s0, s2, 'b', 'd'))
		a.FinishState()
		assert.False(t, a.IsDeterministic())
	})

	t.Run("illegalArguments", func(t *testing.T) {
		a := NewAutomaton()
		s0 := a.CreateState()
		assert.ErrorIs(t, a.AddTransition(s0, 5, 'a', 'a'), ErrIllegalArgument)
		assert.ErrorIs(t, a.AddTransition(s0, s0, 'b', 'a'), ErrIllegalArgument)
	})

	t.Run("step", func(t *testing.T) {
		a := defaultAutomata.MakeCharRange('a', 'c')
		assert.Equal(t, 1, a.Step(0, 'b'))
		assert.Equal(t, -1, a.Step(0, 'd'))
	})

	t.Run("nextResumes", func(t *testing.T) {
		a := NewAutomaton()
		s0 := a.CreateState()
		s1 := a.CreateState()
		s2 := a.CreateState()
		assert.Nil(t, a.AddTransition(s0, s1, 'a', 'a'))
		assert.Nil(t, a.AddTransition(s0, s2, 'c', 'e'))
		a.FinishState()

		tr := NewTransition()
		tr.Source = s0
		assert.Equal(t, s1, a.Next(tr, 'a'))
		assert.Equal(t, -1, a.Next(tr, 'b'))
		assert.Equal(t, s2, a.Next(tr, 'd'))
		assert.Equal(t, 'c', rune(tr.Min))
	})
}

func TestAutomaton_Singleton(t *testing.T) {
	a := defaultAutomata.MakeString("abc")
	assert.True(t, a.IsSingleton())
	assert.Equal(t, []int{'a', 'b', 'c'}, a.Singleton())

	c := a.Clone()
	assert.True(t, c.IsSingleton())

	// any graph accessor expands it, for good
	assert.Equal(t, 4, a.GetNumStates())
	assert.False(t, a.IsSingleton())
	assert.True(t, Run(a, "abc"))
	assert.False(t, Run(a, "ab"))

	// the clone is untouched
	assert.True(t, c.IsSingleton())
	assert.True(t, Run(c, "abc"))
}

func TestAutomaton_NumberedStates(t *testing.T) {
	a := NewAutomaton()
	s0 := a.CreateState()
	s1 := a.CreateState()
	s2 := a.CreateState()
	a.SetAccept(s1, true)
	assert.Nil(t, a.AddTransitionLabel(s0, s1, 'a'))
	a.FinishState()

	// s2 is unreachable
	assert.Equal(t, []int{s0, s1}, a.GetNumberedStates())

	assert.Nil(t, a.AddTransitionLabel(s1, s2, 'b'))
	a.FinishState()
	assert.Equal(t, []int{s0, s1, s2}, a.GetNumberedStates())
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	s0 := b.CreateState()
	s1 := b.CreateState()
	s2 := b.CreateState()
	b.SetAccept(s2, true)
	// out of order on purpose
	b.AddTransitionLabel(s1, s2, 'b')
	b.AddTransitionLabel(s0, s1, 'a')
	b.AddEpsilon(s0, s1)
	a := b.Finish()

	assert.Equal(t, 3, a.GetNumStates())
	assert.True(t, Run(a, "ab"))
	assert.True(t, Run(a, "b"))
	assert.False(t, Run(a, "a"))
}

func TestAutomaton_ToDot(t *testing.T) {
	dot := defaultAutomata.MakeChar('x').ToDot()
	assert.Contains(t, dot, "digraph Automaton")
	assert.Contains(t, dot, "0 -> 1")
}
