package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimize(t *testing.T) {
	tests := []struct {
		re         string
		wantStates int
	}{
		{"(a|b)*abb", 4},
		{"abc|abd|xbc|xbd", 4},
		{"a*", 1},
		{"(ab|ab)(c|c)", 4},
		{"[a-c]+|b+", 2},
	}
	for _, tt := range tests {
		t.Run(tt.re, func(t *testing.T) {
			re, err := NewRegExp(tt.re)
			require.Nil(t, err)
			nfa, err := re.ToAutomaton(WithMinimize(false))
			require.Nil(t, err)

			m, err := Minimize(nfa, DEFAULT_DETERMINIZE_WORK_LIMIT)
			require.Nil(t, err)
			assert.True(t, m.IsDeterministic())
			assert.False(t, HasDeadStates(m))
			assert.Equal(t, tt.wantStates, m.GetNumStates())
			assertSameRuns(t, nfa, m, "abcdx", 5)

			same, err := SameLanguage(m, RemoveDeadStates(mustDeterminize(t, nfa)))
			require.Nil(t, err)
			assert.True(t, same)

			// minimal already
			again, err := Minimize(m, DEFAULT_DETERMINIZE_WORK_LIMIT)
			require.Nil(t, err)
			assert.Equal(t, m.GetNumStates(), again.GetNumStates())
		})
	}
}

func TestMinimize_Degenerate(t *testing.T) {
	m, err := Minimize(defaultAutomata.MakeEmpty(), DEFAULT_DETERMINIZE_WORK_LIMIT)
	require.Nil(t, err)
	assert.Equal(t, 0, m.GetNumStates())

	m, err = Minimize(defaultAutomata.MakeAnyString(), DEFAULT_DETERMINIZE_WORK_LIMIT)
	require.Nil(t, err)
	assert.Equal(t, 1, m.GetNumStates())
	assert.True(t, IsTotal(m))

	m, err = Minimize(defaultAutomata.MakeEmptyString(), DEFAULT_DETERMINIZE_WORK_LIMIT)
	require.Nil(t, err)
	assert.True(t, Run(m, ""))
	assert.False(t, Run(m, "a"))
}

func mustDeterminize(t *testing.T, a *Automaton) *Automaton {
	t.Helper()
	d, err := Determinize(a, DEFAULT_DETERMINIZE_WORK_LIMIT)
	require.Nil(t, err)
	return d
}
