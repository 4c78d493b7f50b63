package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	type args struct {
		a *Automaton
		s string
	}

	nfa := Union(
		Concatenate(defaultAutomata.MakeString("ab"), defaultAutomata.MakeAnyString()),
		defaultAutomata.MakeString("abc"),
		Concatenate(defaultAutomata.MakeAnyChar(), defaultAutomata.MakeString("z")),
	)
	dfa := defaultAutomata.MakeCharRange('a', 'c')

	tests := []struct {
		name string
		args args
		want bool
	}{
		{"singleton match", args{defaultAutomata.MakeString("héllo"), "héllo"}, true},
		{"singleton prefix", args{defaultAutomata.MakeString("héllo"), "hé"}, false},
		{"empty language", args{defaultAutomata.MakeEmpty(), ""}, false},
		{"empty string", args{defaultAutomata.MakeEmptyString(), ""}, true},
		{"empty string rejects", args{defaultAutomata.MakeEmptyString(), "x"}, false},
		{"dfa in range", args{dfa, "b"}, true},
		{"dfa out of range", args{dfa, "d"}, false},
		{"dfa too long", args{dfa, "bb"}, false},
		{"nfa prefix branch", args{nfa, "abzzz"}, true},
		{"nfa both branches", args{nfa, "abc"}, true},
		{"nfa any char branch", args{nfa, "☃z"}, true},
		{"nfa dead end", args{nfa, "a"}, false},
		{"nfa no transition", args{nfa, "zz"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equalf(t, tt.want, Run(tt.args.a, tt.args.s), "Run(%v, %v)", tt.name, tt.args.s)
		})
	}
}

func TestRunLabels(t *testing.T) {
	a := defaultAutomata.MakeCharRange(0x10000, 0x10FFFF)
	assert.True(t, RunLabels(a, []int{0x1F600}))
	assert.False(t, RunLabels(a, []int{0xFFFF}))
	assert.False(t, RunLabels(a, nil))
	assert.True(t, Run(a, "😀"))
}
