package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterRunAutomaton(t *testing.T) {
	nfa := Union(
		compileRegExp(t, "[a-f]+x"),
		compileRegExp(t, "ab.*"),
		defaultAutomata.MakeString("☃"),
	)
	r, err := NewCharacterRunAutomaton(nfa, DEFAULT_DETERMINIZE_WORK_LIMIT)
	require.Nil(t, err)

	assert.True(t, r.GetAutomaton().IsDeterministic())
	assert.Equal(t, r.GetAutomaton().GetNumStates(), r.GetSize())
	assert.Equal(t, 0x110000, r.GetAlphabetSize())

	for _, s := range allStrings("abfx☃", 4) {
		assert.Equalf(t, Run(nfa, s), r.Run(s), "%q", s)
	}
	assert.True(t, r.Run("ab\U0010FFFF"))
	assert.True(t, r.RunLabels([]int{'a', 'b', 0x1F600}))
	assert.False(t, r.RunLabels([]int{0x1F600}))

	points := r.GetCharIntervals()
	assert.Equal(t, 0, points[0])
	assert.IsIncreasing(t, points)

	t.Run("charClass", func(t *testing.T) {
		for _, c := range []int{0, 'a', 'f', 'g', 'x', 0x2603, 0x10FFFF} {
			class := r.GetCharClass(c)
			assert.LessOrEqual(t, points[class], c)
			if class+1 < len(points) {
				assert.Greater(t, points[class+1], c)
			}
		}
	})
}

func TestRunAutomaton_Empty(t *testing.T) {
	r, err := NewCharacterRunAutomaton(defaultAutomata.MakeEmpty(), DEFAULT_DETERMINIZE_WORK_LIMIT)
	require.Nil(t, err)
	assert.Equal(t, 1, r.GetSize())
	assert.False(t, r.Run(""))
	assert.False(t, r.Run("a"))

	r, err = NewCharacterRunAutomaton(defaultAutomata.MakeEmptyString(), DEFAULT_DETERMINIZE_WORK_LIMIT)
	require.Nil(t, err)
	assert.True(t, r.Run(""))
	assert.False(t, r.Run("a"))
}

func TestRunAutomaton_SingletonUntouched(t *testing.T) {
	a := defaultAutomata.MakeString("abc")
	r, err := NewCharacterRunAutomaton(a, DEFAULT_DETERMINIZE_WORK_LIMIT)
	require.Nil(t, err)
	assert.True(t, a.IsSingleton())
	assert.True(t, r.Run("abc"))
	assert.False(t, r.Run("abcd"))
	assert.Contains(t, r.String(), "[accept]")
}

func TestRunAutomaton_TooComplex(t *testing.T) {
	re, err := NewRegExp("[ab]*a[ab]{14}")
	require.Nil(t, err)
	nfa, err := re.ToAutomaton(WithMinimize(false))
	require.Nil(t, err)
	_, err = NewCharacterRunAutomaton(nfa, 100)
	assert.ErrorIs(t, err, ErrTooComplexToDeterminize)
}

func TestByteRunAutomaton(t *testing.T) {
	a := compileRegExp(t, "h[é☃😀]llo|[^a]")
	r, err := NewByteRunAutomaton(a, false, DEFAULT_DETERMINIZE_WORK_LIMIT)
	require.Nil(t, err)
	assert.Equal(t, 256, r.GetAlphabetSize())

	for _, s := range []string{"héllo", "h☃llo", "h😀llo", "b", "é", "\U0010FFFF"} {
		assert.Truef(t, r.Run([]byte(s)), "%q", s)
	}
	for _, s := range []string{"hello", "a", "", "bb"} {
		assert.Falsef(t, r.Run([]byte(s)), "%q", s)
	}
	// a lone lead byte is not a code point
	assert.False(t, r.Run([]byte{0xc3}))
	assert.False(t, r.Run([]byte{0xff}))

	t.Run("binary", func(t *testing.T) {
		b, err := NewByteRunAutomaton(defaultAutomata.MakeBinary([]byte{0xff, 0x00}), true, DEFAULT_DETERMINIZE_WORK_LIMIT)
		require.Nil(t, err)
		assert.True(t, b.Run([]byte{0xff, 0x00}))
		assert.False(t, b.Run([]byte{0xff}))
	})
}
