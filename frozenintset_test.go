package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFrozenIntSet(t *testing.T) {
	tests := []struct {
		name       string
		values     []int
		state      int
		hashCode   uint64
		wantValues []int
		wantState  int
	}{
		{
			name:       "Normal case",
			values:     []int{1, 2, 3},
			state:      0,
			hashCode:   123456789,
			wantValues: []int{1, 2, 3},
			wantState:  0,
		},
		{
			name:       "Nil slice",
			values:     nil,
			state:      -1,
			hashCode:   0,
			wantValues: nil,
			wantState:  -1,
		},
		{
			name:       "Empty slice",
			values:     []int{},
			state:      1,
			hashCode:   987654321,
			wantValues: []int{},
			wantState:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewFrozenIntSet(tt.values, tt.hashCode, tt.state)
			assert.Equal(t, tt.wantValues, got.GetArray())
			assert.Equal(t, len(tt.wantValues), got.Size())
			assert.Equal(t, tt.wantState, got.State())
			assert.Equal(t, tt.hashCode, got.Hash())
		})
	}
}

func TestFrozenIntSet_Equals(t *testing.T) {
	tests := []struct {
		name     string
		f        *FrozenIntSet
		other    Hashable
		expected bool
	}{
		{
			name:     "TC01 - both nil",
			f:        nil,
			other:    (*FrozenIntSet)(nil),
			expected: true,
		},
		{
			name:     "TC02 - f not nil, other nil",
			f:        &FrozenIntSet{},
			other:    nil,
			expected: false,
		},
		{
			name:     "TC03 - not an int set",
			f:        NewFrozenIntSet([]int{1, 2, 3}, 123, 1),
			other:    AnotherKey(7),
			expected: false,
		},
		{
			name:     "TC04 - values differ",
			f:        NewFrozenIntSet([]int{1, 2, 3}, 123, 1),
			other:    NewFrozenIntSet([]int{1, 2}, 123, 1),
			expected: false,
		},
		{
			name:     "TC05 - state is not part of the key",
			f:        NewFrozenIntSet([]int{1, 2, 3}, 123, 1),
			other:    NewFrozenIntSet([]int{1, 2, 3}, 123, 2),
			expected: true,
		},
		{
			name:     "TC06 - hashCode differs",
			f:        NewFrozenIntSet([]int{1, 2, 3}, 123, 1),
			other:    NewFrozenIntSet([]int{1, 2, 3}, 456, 1),
			expected: false,
		},
		{
			name:     "TC07 - all fields equal",
			f:        NewFrozenIntSet([]int{1, 2, 3}, 123, 1),
			other:    NewFrozenIntSet([]int{1, 2, 3}, 123, 1),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.f.Equals(tt.other))
		})
	}
}

func TestStateSet(t *testing.T) {
	s := NewStateSet(4)
	s.Incr(5)
	s.Incr(2)
	s.Incr(5)
	s.Incr(9)
	assert.Equal(t, 3, s.Size())
	assert.Equal(t, []int{2, 5, 9}, s.GetArray())
	assert.Equal(t, hashIntSet([]int{2, 5, 9}), s.Hash())

	// 5 was added twice
	s.Decr(5)
	assert.Equal(t, []int{2, 5, 9}, s.GetArray())
	s.Decr(5)
	assert.Equal(t, []int{2, 9}, s.GetArray())
	assert.Equal(t, hashIntSet([]int{2, 9}), s.Hash())

	assert.Panics(t, func() { s.Decr(42) })

	t.Run("freezeMatchesLiveSet", func(t *testing.T) {
		frozen := s.Freeze(3)
		assert.Equal(t, 3, frozen.State())
		assert.True(t, s.Equals(frozen))
		assert.True(t, frozen.Equals(s))
		assert.Equal(t, s.Hash(), frozen.Hash())

		// the snapshot does not follow later changes
		s.Incr(11)
		assert.False(t, s.Equals(frozen))
		assert.Equal(t, []int{2, 9}, frozen.GetArray())
	})

	t.Run("lookupThroughHashMap", func(t *testing.T) {
		m := NewHashMap[int](WithCapacity(8))
		live := NewStateSet(4)
		live.Incr(1)
		live.Incr(4)
		m.Set(live.Freeze(0), 10)

		key := NewStateSet(4)
		key.Incr(4)
		key.Incr(1)
		v, ok := m.Get(key)
		assert.True(t, ok)
		assert.Equal(t, 10, v)

		key.Incr(6)
		_, ok = m.Get(key)
		assert.False(t, ok)
	})
}
