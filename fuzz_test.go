package automaton

import (
	"testing"
	"unicode/utf8"
)

func FuzzRegExp(f *testing.F) {
	f.Add("ab+c?", "abbc")
	f.Add("[a-c]*&~(abc)", "acb")
	f.Add("(x|y){2,3}", "xyx")
	f.Add("<1-20>", "07")
	f.Add(`"a.b"\*`, "a.b*")
	f.Add("ab(c", "abc")

	f.Fuzz(func(t *testing.T, pattern, input string) {
		if len(pattern) > 64 || !utf8.ValidString(pattern) || !utf8.ValidString(input) {
			return
		}
		re, err := NewRegExp(pattern)
		if err != nil {
			return // Invalid pattern is acceptable.
		}
		nfa, err := re.ToAutomaton(WithMinimize(false), WithDeterminizeWorkLimit(1000))
		if err != nil {
			return
		}
		r, err := NewCharacterRunAutomaton(nfa, 1000)
		if err != nil {
			return
		}
		if Run(nfa, input) != r.Run(input) {
			t.Fatalf("%q on %q: nfa and run automaton disagree", pattern, input)
		}
	})
}

func FuzzWildcard(f *testing.F) {
	f.Add("hel*", "hello")
	f.Add("*orld", "world")
	f.Add("h?llo", "hallo")
	f.Add(`\*\?`, "*?")
	f.Add("", "")

	f.Fuzz(func(t *testing.T, pattern, input string) {
		if len(pattern) > 32 || !utf8.ValidString(pattern) || !utf8.ValidString(input) {
			return
		}
		a := MakeWildcard(pattern)
		r, err := NewByteRunAutomaton(a, false, DEFAULT_DETERMINIZE_WORK_LIMIT)
		if err != nil {
			return
		}
		if Run(a, input) != r.Run([]byte(input)) {
			t.Fatalf("%q on %q: code point and byte matching disagree", pattern, input)
		}
	})
}

func FuzzLevenshtein(f *testing.F) {
	f.Add("hello", 1, "hallo", false)
	f.Add("cat", 0, "cat", false)
	f.Add("test", 2, "tset", true)
	f.Add("", 1, "a", true)

	f.Fuzz(func(t *testing.T, word string, n int, input string, transpositions bool) {
		if n < 0 || n > MAXIMUM_SUPPORTED_DISTANCE || len(word) > 16 || len(input) > 24 {
			return
		}
		if !utf8.ValidString(word) || !utf8.ValidString(input) {
			return
		}
		a, err := NewLevenshteinAutomata(word, transpositions).ToAutomaton(n)
		if err != nil {
			t.Fatal(err)
		}
		want := editDistance([]rune(word), []rune(input), transpositions) <= n
		if Run(a, input) != want {
			t.Fatalf("word=%q n=%d transpositions=%v input=%q: want %v", word, n, transpositions, input, want)
		}
	})
}
