package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpack(t *testing.T) {
	for _, bits := range []int{1, 3, 7, 13, 31, 63, 64} {
		values := make([]int, 50)
		limit := uint64(1)<<(bits-1) - 1
		for i := range values {
			values[i] = int((uint64(i)*0x9E3779B97F4A7C15 + 11) & limit)
		}
		data := pack(values, bits)
		assert.Len(t, data, (len(values)*bits+63)/64)
		for i, want := range values {
			if got := unpack(data, i, bits); got != want {
				t.Fatalf("bits=%d index=%d: got %d want %d", bits, i, got, want)
			}
		}
	}
}

func TestBitsRequired(t *testing.T) {
	tests := []struct{ max, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {255, 8}, {256, 9},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, bitsRequired(tt.max), "%d", tt.max)
	}
}

func TestParametricTables(t *testing.T) {
	for n := 1; n <= MAXIMUM_SUPPORTED_DISTANCE; n++ {
		for _, transpositions := range []bool{false, true} {
			tables := getParametricTables(n, transpositions)
			assert.Same(t, tables, getParametricTables(n, transpositions))
			assert.Len(t, tables.windows, 2*n+2)
			// the initial state has made no errors
			assert.Equal(t, 0, tables.minErrors[0])
		}
	}
	assert.NotSame(t, getParametricTables(1, false), getParametricTables(1, true))
	assert.Less(t, getParametricTables(1, false).numStates, getParametricTables(2, false).numStates)

	d := newParametricDescription(4, 1, getParametricTables(1, false))
	assert.Equal(t, len(d.tables.minErrors)*5, d.Size())
	// state 0 at the end of the word is the exact match
	assert.True(t, d.IsAccept(4))
	assert.False(t, d.IsAccept(2))
	assert.Equal(t, 3, d.GetPosition(3))
}
