package automaton

import (
	"iter"
	"math"
)

const (
	DEFAULT_EXPECTED_ELEMENTS = 4
	DEFAULT_LOAD_FACTOR       = 0.75
	MIN_LOAD_FACTOR           = 1 / 100.0
	MAX_LOAD_FACTOR           = 99 / 100.0
	MIN_HASH_ARRAY_LENGTH     = 4
	MAX_HASH_ARRAY_LENGTH     = int(uint32(0x80000000) >> 1)
)

// IntIntHashMap is an open addressing int to int map scanned linearly on collision. Key 0 marks an empty slot, so
// the value of key 0 lives in an extra slot at the end of the arrays.
type IntIntHashMap struct {
	keys   []int
	values []int

	assigned    int
	mask        int     // Mask for slot scans in keys.
	resizeAt    int     // Expand (rehash) keys when assigned hits this value.
	hasEmptyKey bool    // Special treatment for the "empty slot" key marker.
	loadFactor  float64 // The load factor for keys.
}

func NewIntIntHashMap(expectedElements int) *IntIntHashMap {
	m := &IntIntHashMap{loadFactor: DEFAULT_LOAD_FACTOR}
	m.allocateBuffers(minBufferSize(expectedElements, m.loadFactor))
	return m
}

// Get returns the value for key and whether it was present.
func (m *IntIntHashMap) Get(key int) (int, bool) {
	slot, ok := m.indexOf(key)
	if !ok {
		return 0, false
	}
	return m.values[slot], true
}

// ContainsKey returns true if key has a value.
func (m *IntIntHashMap) ContainsKey(key int) bool {
	_, ok := m.indexOf(key)
	return ok
}

// Put sets key to value and returns the previous value, if any.
func (m *IntIntHashMap) Put(key, value int) (int, bool) {
	if key == 0 {
		previous, had := m.values[m.mask+1], m.hasEmptyKey
		m.hasEmptyKey = true
		m.values[m.mask+1] = value
		return previous, had
	}

	slot, ok := m.indexOf(key)
	if ok {
		previous := m.values[slot]
		m.values[slot] = value
		return previous, true
	}
	m.insert(slot, key, value)
	return 0, false
}

// AddTo adds incrementValue to the value of key, starting from 0 when absent, and returns the new value.
func (m *IntIntHashMap) AddTo(key, incrementValue int) int {
	return m.PutOrAdd(key, incrementValue, incrementValue)
}

// PutOrAdd sets key to putValue when absent, otherwise adds incrementValue. Returns the new value.
func (m *IntIntHashMap) PutOrAdd(key, putValue, incrementValue int) int {
	slot, ok := m.indexOf(key)
	if ok {
		m.values[slot] += incrementValue
		return m.values[slot]
	}
	if key == 0 {
		m.hasEmptyKey = true
		m.values[slot] = putValue
		return putValue
	}
	m.insert(slot, key, putValue)
	return putValue
}

// Remove deletes key and returns its previous value, if any.
func (m *IntIntHashMap) Remove(key int) (int, bool) {
	if key == 0 {
		if !m.hasEmptyKey {
			return 0, false
		}
		m.hasEmptyKey = false
		previous := m.values[m.mask+1]
		m.values[m.mask+1] = 0
		return previous, true
	}

	slot, ok := m.indexOf(key)
	if !ok {
		return 0, false
	}
	previous := m.values[slot]
	m.shiftConflictingKeys(slot)
	return previous, true
}

// Clear removes all keys, keeping the buffers.
func (m *IntIntHashMap) Clear() {
	m.assigned = 0
	m.hasEmptyKey = false
	clear(m.keys)
	clear(m.values)
}

func (m *IntIntHashMap) Size() int {
	empty := 0
	if m.hasEmptyKey {
		empty = 1
	}
	return m.assigned + empty
}

func (m *IntIntHashMap) IsEmpty() bool {
	return m.Size() == 0
}

// Keys iterates over all keys in slot order.
func (m *IntIntHashMap) Keys() iter.Seq[int] {
	return func(yield func(int) bool) {
		if m.hasEmptyKey && !yield(0) {
			return
		}
		for slot := 0; slot <= m.mask; slot++ {
			if key := m.keys[slot]; key != 0 {
				if !yield(key) {
					return
				}
			}
		}
	}
}

// indexOf returns the slot holding key, or the slot where it would be inserted.
func (m *IntIntHashMap) indexOf(key int) (int, bool) {
	if key == 0 {
		return m.mask + 1, m.hasEmptyKey
	}

	slot := m.hashKey(key) & m.mask
	for existing := m.keys[slot]; existing != 0; existing = m.keys[slot] {
		if existing == key {
			return slot, true
		}
		slot = (slot + 1) & m.mask
	}
	return slot, false
}

func (m *IntIntHashMap) insert(slot, key, value int) {
	if m.assigned == m.resizeAt {
		m.allocateThenInsertThenRehash(slot, key, value)
	} else {
		m.keys[slot] = key
		m.values[slot] = value
	}
	m.assigned++
}

func (m *IntIntHashMap) shiftConflictingKeys(gapSlot int) {
	keys := m.keys
	values := m.values
	mask := m.mask

	// Perform shifts of conflicting keys to fill in the gap.
	distance := 0
	for {
		distance++
		slot := (gapSlot + distance) & mask
		existing := keys[slot]
		if existing == 0 {
			break
		}

		idealSlot := m.hashKey(existing)
		shift := (slot - idealSlot) & mask
		if shift >= distance {
			// Entry at this position was originally at or before the gap slot.
			// Move the conflict-shifted entry to the gap's position and repeat the procedure
			// for any entries to the right of the current position, treating it
			// as the new gap.
			keys[gapSlot] = existing
			values[gapSlot] = values[slot]
			gapSlot = slot
			distance = 0
		}
	}

	// Mark the last found gap slot without a conflict as empty.
	keys[gapSlot] = 0
	values[gapSlot] = 0
	m.assigned--
}

func (m *IntIntHashMap) allocateThenInsertThenRehash(slot, pendingKey, pendingValue int) {
	prevKeys := m.keys
	prevValues := m.values
	m.allocateBuffers(nextBufferSize(m.mask + 1))

	// We have succeeded at allocating new data so insert the pending key/value at
	// the free slot in the old arrays before rehashing.
	prevKeys[slot] = pendingKey
	prevValues[slot] = pendingValue

	m.rehash(prevKeys, prevValues)
}

func (m *IntIntHashMap) allocateBuffers(arraySize int) {
	// Ensure no change is done if we hit an OOM.
	m.keys = make([]int, arraySize+1)
	m.values = make([]int, arraySize+1)
	m.resizeAt = expandAtCount(arraySize, m.loadFactor)
	m.mask = arraySize - 1
}

func (m *IntIntHashMap) rehash(fromKeys, fromValues []int) {
	// Rehash all stored key/value pairs into the new buffers.
	keys := m.keys
	values := m.values
	mask := m.mask
	from := len(fromKeys) - 1
	keys[len(keys)-1] = fromKeys[from]
	values[len(values)-1] = fromValues[from]
	for from--; from >= 0; from-- {
		if existing := fromKeys[from]; existing != 0 {
			slot := m.hashKey(existing) & mask
			for keys[slot] != 0 {
				slot = (slot + 1) & mask
			}
			keys[slot] = existing
			values[slot] = fromValues[from]
		}
	}
}

func (m *IntIntHashMap) hashKey(key int) int {
	return mixPhi(key)
}

func minBufferSize(elements int, loadFactor float64) int {
	length := int(math.Ceil(float64(elements) / loadFactor))
	if length == elements {
		length++
	}
	length = max(MIN_HASH_ARRAY_LENGTH, nextHighestPowerOfTwo(length))
	return min(length, MAX_HASH_ARRAY_LENGTH)
}

func nextBufferSize(arraySize int) int {
	if arraySize >= MAX_HASH_ARRAY_LENGTH {
		panic("automaton: maximum array size exceeded")
	}
	return arraySize << 1
}

func expandAtCount(arraySize int, loadFactor float64) int {
	return min(arraySize-1, int(math.Ceil(float64(arraySize)*loadFactor)))
}

func nextHighestPowerOfTwo(v int) int {
	n := 1
	for n < v {
		n <<= 1
	}
	return n
}
