package automaton

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bytesToLabels(b []byte) []int {
	labels := make([]int, len(b))
	for i, c := range b {
		labels[i] = int(c)
	}
	return labels
}

func isContinuation(b byte) bool {
	return b&0xC0 == 0x80
}

// decodesInRange reports whether b is exactly one well formed UTF-8 code point within [min, max].
func decodesInRange(b []byte, min, max int) bool {
	r, size := utf8.DecodeRune(b)
	if size != len(b) || (r == utf8.RuneError && size == 1) {
		return false
	}
	return int(r) >= min && int(r) <= max
}

func TestUTF32ToUTF8_Ranges(t *testing.T) {
	ranges := [][2]int{
		{'a', 'z'},
		{0, 0x7F},
		{0x7F, 0x81},
		{0x80, 0x7FF},
		{0x700, 0x900},
		{0x20, 0x3000},
		{0xE000, 0x10FFFF},
		{0x10000, 0x10000},
		{0x1F600, 0x1F64F},
		{0, 0x10FFFF},
	}
	points := []int{0, 1, 0x41, 0x7E, 0x7F, 0x80, 0x81, 0x7FF, 0x800, 0x8FF, 0x900, 0x901, 0x2FFF, 0x3000,
		0x3001, 0xD7FF, 0xE000, 0xFFFF, 0x10000, 0x10001, 0x1F5FF, 0x1F600, 0x1F64F, 0x1F650, 0x10FFFF}

	converter := NewUTF32ToUTF8()
	for _, rng := range ranges {
		utf8a := converter.Convert(defaultAutomata.MakeCharRange(rng[0], rng[1]))
		dfa, err := Determinize(utf8a, DEFAULT_DETERMINIZE_WORK_LIMIT)
		require.Nil(t, err)

		for _, c := range points {
			want := c >= rng[0] && c <= rng[1]
			encoded := utf8.AppendRune(nil, rune(c))
			assert.Equalf(t, want, RunLabels(dfa, bytesToLabels(encoded)), "range %x-%x point %x", rng[0], rng[1], c)
		}

		// every one and two byte sequence, including overlong and truncated forms
		for b0 := 0; b0 < 256; b0++ {
			one := []byte{byte(b0)}
			assert.Equalf(t, decodesInRange(one, rng[0], rng[1]), RunLabels(dfa, bytesToLabels(one)), "%x", one)
			for b1 := 0; b1 < 256; b1++ {
				two := []byte{byte(b0), byte(b1)}
				if decodesInRange(two, rng[0], rng[1]) != RunLabels(dfa, bytesToLabels(two)) {
					t.Fatalf("range %x-%x: bytes %x", rng[0], rng[1], two)
				}
			}
		}

		// three byte sequences; overlong and surrogate forms built from continuation bytes are
		// not checked, only well formed input has a defined answer
		for b0 := 0xE0; b0 <= 0xEF; b0++ {
			for b1 := 0x7F; b1 <= 0xC0; b1++ {
				for _, b2 := range []byte{0x7F, 0x80, 0x9A, 0xBF, 0xC0} {
					three := []byte{byte(b0), byte(b1), b2}
					if !utf8.Valid(three) && isContinuation(byte(b1)) && isContinuation(b2) {
						continue
					}
					if decodesInRange(three, rng[0], rng[1]) != RunLabels(dfa, bytesToLabels(three)) {
						t.Fatalf("range %x-%x: bytes %x", rng[0], rng[1], three)
					}
				}
			}
		}
	}
}

func TestUTF32ToUTF8_Language(t *testing.T) {
	a := compileRegExp(t, "(ab|é+)[☃😀]?|[^a-z]{2}")
	converter := NewUTF32ToUTF8()
	utf8a := converter.Convert(a)

	for _, s := range allStrings("abé☃😀Z", 3) {
		assert.Equalf(t, Run(a, s), RunLabels(utf8a, bytesToLabels([]byte(s))), "%q", s)
	}

	t.Run("singleton", func(t *testing.T) {
		s := converter.Convert(defaultAutomata.MakeString("h☃"))
		assert.True(t, s.IsSingleton())
		assert.Equal(t, bytesToLabels([]byte("h☃")), s.Singleton())
	})

	t.Run("empty", func(t *testing.T) {
		e := converter.Convert(defaultAutomata.MakeEmpty())
		assert.Equal(t, 0, e.GetNumStates())
	})

	t.Run("encodingMatchesStdlib", func(t *testing.T) {
		labels := []int{0, 0x7F, 0x80, 0x7FF, 0x800, 0xFFFF, 0x10000, 0x10FFFF}
		want := make([]byte, 0)
		for _, c := range labels {
			want = utf8.AppendRune(want, rune(c))
		}
		assert.Equal(t, want, codePointsToUTF8(labels))
	})
}
