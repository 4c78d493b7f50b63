package automaton

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geange/termautomaton/internal/termdict"
)

// countingEnum records how the filtered enum drives the dictionary.
type countingEnum struct {
	TermsEnum
	seeks, nexts int
}

func (c *countingEnum) SeekCeil(target []byte) ([]byte, error) {
	c.seeks++
	return c.TermsEnum.SeekCeil(target)
}

func (c *countingEnum) Next() ([]byte, error) {
	c.nexts++
	return c.TermsEnum.Next()
}

func drain(t *testing.T, te TermsEnum) []string {
	t.Helper()
	var out []string
	for {
		term, err := te.Next()
		require.Nil(t, err)
		if term == nil {
			return out
		}
		out = append(out, string(term))
	}
}

func testDictionary() *termdict.Dictionary {
	terms := allStrings("abc", 4)
	terms = append(terms, "foo", "food", "foods", "fool", "fooo", "good", "héllo", "hello", "☃", "zz\xff", "zzz")
	return termdict.FromStrings(terms...)
}

func TestGetTermsEnum_MatchesRun(t *testing.T) {
	dict := testDictionary()
	queries := []string{
		"a*", "a+b", "(ab|ba)c?", "[ab]*c", ".*c.*", "b.?", "foo.", "fo+d?", "h[eé]llo",
		"[^a]*", ".", "()", "foo", "food.*", ".*", "#", "c{2,}a?", "zz.",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			a := compileRegExp(t, q)
			compiled, err := NewCompiledAutomaton(a)
			require.Nil(t, err)

			var want []string
			for i := 0; i < dict.Len(); i++ {
				term := dict.Term(i)
				if RunLabels(NewUTF32ToUTF8().Convert(a), bytesToLabels(term)) {
					want = append(want, string(term))
				}
			}

			te, err := compiled.GetTermsEnum(dict.Iterator())
			require.Nil(t, err)
			assert.Equal(t, want, drain(t, te), "type %s", compiled.Type)
		})
	}
}

func TestGetTermsEnum_Fuzzy(t *testing.T) {
	dict := testDictionary()
	a, err := NewLevenshteinAutomata("food", true).ToAutomaton(1)
	require.Nil(t, err)
	compiled, err := NewCompiledAutomaton(a)
	require.Nil(t, err)
	assert.Equal(t, COMPILED_NORMAL, compiled.Type)
	assert.True(t, compiled.Finite)

	counting := &countingEnum{TermsEnum: dict.Iterator()}
	te, err := compiled.GetTermsEnum(counting)
	require.Nil(t, err)
	assert.Equal(t, []string{"foo", "food", "foods", "fool", "fooo", "good"}, drain(t, te))

	// the enumeration seeks past the bulk of the dictionary instead of scanning it
	assert.Less(t, counting.seeks+counting.nexts, dict.Len())
}

func TestGetTermsEnum_Forms(t *testing.T) {
	dict := termdict.FromStrings("bar", "foo", "foobar", "fop", "zoo")

	tests := []struct {
		name     string
		a        *Automaton
		wantType AutomatonType
		want     []string
	}{
		{"none", defaultAutomata.MakeEmpty(), COMPILED_NONE, nil},
		{"all", defaultAutomata.MakeAnyString(), COMPILED_ALL, []string{"bar", "foo", "foobar", "fop", "zoo"}},
		{"single", defaultAutomata.MakeString("foo"), COMPILED_SINGLE, []string{"foo"}},
		{"singleMissing", defaultAutomata.MakeString("fon"), COMPILED_SINGLE, nil},
		{"prefix", MakePrefix("foo"), COMPILED_PREFIX, []string{"foo", "foobar"}},
		{"prefixMissing", MakePrefix("q"), COMPILED_PREFIX, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := NewCompiledAutomaton(tt.a)
			require.Nil(t, err)
			assert.Equal(t, tt.wantType, compiled.Type)

			te, err := compiled.GetTermsEnum(dict.Iterator())
			require.Nil(t, err)
			assert.Equal(t, tt.want, drain(t, te))
		})
	}

	t.Run("automatonEnumNeedsNormal", func(t *testing.T) {
		compiled, err := NewCompiledAutomaton(defaultAutomata.MakeString("foo"))
		require.Nil(t, err)
		_, err = NewAutomatonTermsEnum(dict.Iterator(), compiled)
		assert.ErrorIs(t, err, ErrIllegalArgument)
	})
}

// evenLengthFilter accepts terms of even length and seeks over every term starting with 'x'.
type evenLengthFilter struct {
	seeks [][]byte
}

func (f *evenLengthFilter) Accept(term []byte) (AcceptStatus, error) {
	switch {
	case bytes.HasPrefix(term, []byte("z")):
		return END, nil
	case bytes.HasPrefix(term, []byte("x")):
		return NO_AND_SEEK, nil
	case len(term)%2 == 0:
		return YES, nil
	}
	return NO, nil
}

func (f *evenLengthFilter) NextSeekTerm(current []byte) ([]byte, error) {
	f.seeks = append(f.seeks, current)
	if current == nil {
		return []byte("b"), nil
	}
	return []byte("y"), nil
}

func TestFilteredTermsEnum(t *testing.T) {
	dict := termdict.FromStrings("aa", "bb", "bbb", "cc", "xa", "xb", "xc", "ya", "yy", "zz", "zzzz")
	filter := &evenLengthFilter{}
	te := NewFilteredTermsEnum(dict.Iterator(), filter, true)

	assert.Equal(t, []string{"bb", "cc", "ya", "yy"}, drain(t, te))
	require.Len(t, filter.seeks, 2)
	assert.Nil(t, filter.seeks[0])
	assert.Equal(t, []byte("xa"), filter.seeks[1])

	_, err := te.SeekCeil([]byte("a"))
	assert.True(t, errors.Is(err, errors.ErrUnsupported))

	t.Run("withoutInitialSeek", func(t *testing.T) {
		te := NewFilteredTermsEnum(dict.Iterator(), &evenLengthFilter{}, false)
		assert.Equal(t, []string{"aa", "bb", "cc", "ya", "yy"}, drain(t, te))
	})

	t.Run("errorsPropagate", func(t *testing.T) {
		boom := errors.New("boom")
		te := NewFilteredTermsEnum(failingEnum{boom}, &evenLengthFilter{}, false)
		_, err := te.Next()
		assert.ErrorIs(t, err, boom)
	})
}

type failingEnum struct{ err error }

func (f failingEnum) SeekCeil([]byte) ([]byte, error) { return nil, f.err }
func (f failingEnum) Next() ([]byte, error)           { return nil, f.err }

func TestAcceptStatus_String(t *testing.T) {
	assert.Equal(t, "NO_AND_SEEK", NO_AND_SEEK.String())
	assert.Equal(t, "AcceptStatus(9)", AcceptStatus(9).String())
}

func TestEmptyTermsEnum(t *testing.T) {
	var te TermsEnum = EmptyTermsEnum{}
	term, err := te.SeekCeil([]byte("a"))
	assert.Nil(t, err)
	assert.Nil(t, term)
	assert.Empty(t, drain(t, te))
}
