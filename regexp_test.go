package automaton

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileRegExp(t *testing.T, s string, options ...RegExpOption) *Automaton {
	t.Helper()
	re, err := NewRegExp(s, options...)
	require.Nil(t, err)
	a, err := re.ToAutomaton()
	require.Nil(t, err)
	return a
}

func TestNewRegExp(t *testing.T) {
	regExp, err := NewRegExp("+-*(A|.....|BC)*]", WithSyntaxFlags(NONE))
	assert.Nil(t, err)

	a, err := regExp.ToAutomaton(WithDeterminizeWorkLimit(1000000))
	assert.Nil(t, err)
	assert.True(t, Run(a, "+]"))
	assert.True(t, Run(a, "+---ABCxxxxx]"))
	assert.False(t, Run(a, "+-AB]"))

	e2, err := NewRegExp("")
	assert.Nil(t, err)
	assert.Equal(t, REGEXP_STRING, e2.Kind())
	a, err = e2.ToAutomaton()
	assert.Nil(t, err)
	assert.True(t, Run(a, ""))
	assert.False(t, Run(a, "a"))
}

func TestRegExp_Matches(t *testing.T) {
	tests := []struct {
		re     string
		accept []string
		reject []string
	}{
		{`ab+c?`, []string{"ab", "abbb", "abc"}, []string{"a", "ac", "abcc"}},
		{`a|b|cd`, []string{"a", "b", "cd"}, []string{"", "c", "ab"}},
		{`[a-c]{2,3}`, []string{"ab", "ccc"}, []string{"a", "abca", "ad"}},
		{`x{2,}`, []string{"xx", "xxxxxx"}, []string{"x"}},
		{`[^a-y]`, []string{"z", "A", "é"}, []string{"a", "m", "zz"}},
		{`"a.b"`, []string{"a.b"}, []string{"axb"}},
		{`\.\*`, []string{".*"}, []string{"a*"}},
		{`()`, []string{""}, []string{"a"}},
		{`a.*`, []string{"a", "abc"}, []string{"b", ""}},
		{`@`, []string{"", "anything"}, nil},
		{`#|a`, []string{"a"}, []string{""}},
		{`[a-z]+&~(foo)`, []string{"fo", "fooo", "bar"}, []string{"foo", ""}},
		{`<1-10>`, []string{"1", "7", "10", "0010"}, []string{"0", "11", ""}},
		{`<07-10>`, []string{"07", "09", "10"}, []string{"7", "11", "06"}},
	}
	for _, tt := range tests {
		t.Run(tt.re, func(t *testing.T) {
			a := compileRegExp(t, tt.re)
			for _, s := range tt.accept {
				assert.Truef(t, Run(a, s), "should accept %q", s)
			}
			for _, s := range tt.reject {
				assert.Falsef(t, Run(a, s), "should reject %q", s)
			}
		})
	}
}

func TestRegExp_Minimize(t *testing.T) {
	re, err := NewRegExp("(a|ab)(c|bcd)(d*)")
	require.Nil(t, err)

	minimal, err := re.ToAutomaton()
	require.Nil(t, err)
	assert.True(t, minimal.IsDeterministic())

	raw, err := re.ToAutomaton(WithMinimize(false))
	require.Nil(t, err)
	assertSameRuns(t, minimal, raw, "abcd", 6)
	assert.LessOrEqual(t, minimal.GetNumStates(), raw.GetNumStates())
}

func TestRegExp_Errors(t *testing.T) {
	tests := []struct {
		re      string
		flags   int
		wantErr error
	}{
		{`(ab`, ALL, ErrSyntax},
		{`[ab`, ALL, ErrSyntax},
		{`a{2`, ALL, ErrSyntax},
		{`a{,3}`, ALL, ErrSyntax},
		{`[z-a]`, ALL, ErrSyntax},
		{`ab)`, ALL, ErrSyntax},
		{`"abc`, ALL, ErrSyntax},
		{`\`, ALL, ErrSyntax},
		{`<1-2-3>`, ALL, ErrIllegalSyntax},
		{`<1->`, ALL, ErrIllegalSyntax},
		{`<name>`, INTERVAL, ErrIllegalSyntax},
		{`<1-5>`, AUTOMATON, ErrIllegalSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.re, func(t *testing.T) {
			_, err := NewRegExp(tt.re, WithSyntaxFlags(tt.flags))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}

	t.Run("flags", func(t *testing.T) {
		_, err := NewRegExp("a", WithSyntaxFlags(0x1ff))
		assert.ErrorIs(t, err, ErrIllegalSyntax)
		_, err = NewRegExp("a", WithMatchFlags(INTERSECTION))
		assert.ErrorIs(t, err, ErrIllegalSyntax)
	})

	t.Run("disabledOperatorsAreLiterals", func(t *testing.T) {
		a := compileRegExp(t, "a&b~#@", WithSyntaxFlags(NONE))
		assert.True(t, Run(a, "a&b~#@"))
	})

	t.Run("position", func(t *testing.T) {
		_, err := NewRegExp("ab(c")
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 4, pe.Pos)
	})
}

func TestRegExp_NamedAutomata(t *testing.T) {
	re, err := NewRegExp("<digits>x<word>|<digits>")
	require.Nil(t, err)
	assert.Equal(t, []string{"digits", "word"}, re.GetIdentifiers())

	digits := RepeatMin(defaultAutomata.MakeCharRange('0', '9'), 1)

	t.Run("missing", func(t *testing.T) {
		_, err := re.ToAutomaton(WithAutomata(map[string]*Automaton{"digits": digits}))
		assert.ErrorIs(t, err, ErrAutomatonNotFound)
	})

	t.Run("mapAndProvider", func(t *testing.T) {
		var asked []string
		provider := func(name string) (*Automaton, error) {
			asked = append(asked, name)
			if name == "word" {
				return defaultAutomata.MakeString("ok"), nil
			}
			return nil, nil
		}
		a, err := re.ToAutomaton(
			WithAutomata(map[string]*Automaton{"digits": digits}),
			WithProvider(provider),
		)
		require.Nil(t, err)
		assert.Contains(t, asked, "word")
		assert.NotContains(t, asked, "digits")

		assert.True(t, Run(a, "12xok"))
		assert.True(t, Run(a, "7"))
		assert.False(t, Run(a, "x"))
		assert.False(t, Run(a, "12xno"))
	})

	t.Run("providerError", func(t *testing.T) {
		boom := fmt.Errorf("lookup failed")
		_, err := re.ToAutomaton(WithProvider(func(string) (*Automaton, error) { return nil, boom }))
		assert.ErrorIs(t, err, boom)
	})
}

func TestRegExp_CaseInsensitive(t *testing.T) {
	a := compileRegExp(t, "Foo[b-c]", WithMatchFlags(ASCII_CASE_INSENSITIVE))
	for _, s := range []string{"foob", "FOOb", "fOob"} {
		assert.Truef(t, Run(a, s), "%q", s)
	}
	// ranges are not folded
	assert.False(t, Run(a, "fooB"))

	a = compileRegExp(t, "Foo")
	assert.False(t, Run(a, "foo"))
}

func TestRegExp_String(t *testing.T) {
	tests := []struct {
		re   string
		want string
	}{
		{`abc`, `"abc"`},
		{`a|b`, `(\a|\b)`},
		{`a*`, `(\a)*`},
		{`[a-c]+`, `([\a-\c]){1,}`},
		{`x{2,3}`, `(\x){2,3}`},
		{`~a`, `~(\a)`},
		{`<07-10>`, `<07-10>`},
		{`<ident>`, `<ident>`},
		{`.@#`, `.@#`},
	}
	for _, tt := range tests {
		t.Run(tt.re, func(t *testing.T) {
			re, err := NewRegExp(tt.re)
			require.Nil(t, err)
			assert.Equal(t, tt.want, re.String())
			assert.Equal(t, tt.re, re.OriginalString())
		})
	}
}

func TestRegExp_TooComplex(t *testing.T) {
	re, err := NewRegExp("(abc){1000,}")
	require.Nil(t, err)
	_, err = re.ToAutomaton(WithDeterminizeWorkLimit(100))
	assert.ErrorIs(t, err, ErrTooComplexToDeterminize)

	// huge repeat counts are rejected before any copy is made, even when the count times the
	// state count does not fit in an int
	for _, s := range []string{
		"(ab|cd){0,4611686018427387904}",
		"(ab|cd){4611686018427387904,}",
		"a{9223372036854775807}",
		"(){0,9223372036854775807}",
	} {
		t.Run(s, func(t *testing.T) {
			re, err := NewRegExp(s)
			require.Nil(t, err)
			_, err = re.ToAutomaton()
			assert.ErrorIs(t, err, ErrTooComplexToDeterminize)
		})
	}
}

func TestRegExp_RepeatEmptyLanguage(t *testing.T) {
	tests := []struct {
		s          string
		emptyMatch bool
	}{
		{"#*", true},
		{"#{0,}", true},
		{"#{0,9223372036854775807}", true},
		{"#{0,3}", true},
		{"#{5000000000,}", false},
		{"#{2,9223372036854775807}", false},
		{"#+", false},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			a := compileRegExp(t, tt.s)
			assert.Equal(t, tt.emptyMatch, Run(a, ""))
			assert.False(t, Run(a, "a"))
			assert.Equal(t, !tt.emptyMatch, IsEmpty(a))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "REGEXP_CHAR", REGEXP_CHAR.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
