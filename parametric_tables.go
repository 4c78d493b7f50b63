package automaton

import (
	"slices"
	"strconv"
	"strings"
	"sync"
)

// The parametric tables are derived from the position-set construction of Schulz and Mihov: a
// parametric state is a set of positions i#e (i characters of the window consumed, e errors spent)
// relative to a base offset in the word, with subsumed positions removed. Transposition-aware
// automata add t-positions, meaning "the next input must be word[i] to complete a swap".
// Everything here depends only on n, never on the word, so the tables are built once per process.

type parametricPosition struct {
	i int
	e int
	t bool
}

// windowTables holds the packed transitions for one window length L; the characteristic vector
// has L bits and the tables have 2^L * numStates entries, indexed by vector*numStates+state.
type windowTables struct {
	toStates        []uint64 // target parametric state + 1, 0 for none
	toStatesBits    int
	offsetIncrs     []uint64
	offsetIncrsBits int
}

type parametricTables struct {
	numStates int
	minErrors []int
	windows   []windowTables // indexed by window length 0..2n+1
}

var (
	parametricOnce   [MAXIMUM_SUPPORTED_DISTANCE + 1][2]sync.Once
	parametricTabled [MAXIMUM_SUPPORTED_DISTANCE + 1][2]*parametricTables
)

// getParametricTables returns the shared tables for distance n, building them on first use.
func getParametricTables(n int, transpositions bool) *parametricTables {
	t := 0
	if transpositions {
		t = 1
	}
	parametricOnce[n][t].Do(func() {
		parametricTabled[n][t] = buildParametricTables(n, transpositions)
	})
	return parametricTabled[n][t]
}

type windowEntry struct {
	window, vector, state int
	toState, offsetIncr   int
}

type stateWindow struct {
	state, window int
}

func buildParametricTables(n int, transpositions bool) *parametricTables {
	range0 := 2*n + 1

	states := [][]parametricPosition{{{i: 0, e: 0}}}
	index := map[string]int{positionsKey(states[0]): 0}
	intern := func(positions []parametricPosition) int {
		key := positionsKey(positions)
		if s, ok := index[key]; ok {
			return s
		}
		s := len(states)
		states = append(states, positions)
		index[key] = s
		return s
	}

	// breadth first over every (state, window) pair that a real word can produce; the initial state
	// may start with any window, depending on the word length.
	seen := make(map[stateWindow]bool)
	queue := make([]stateWindow, 0)
	enqueue := func(sw stateWindow) {
		if !seen[sw] {
			seen[sw] = true
			queue = append(queue, sw)
		}
	}
	for window := 0; window <= range0; window++ {
		enqueue(stateWindow{0, window})
	}

	entries := make([]windowEntry, 0)
	for len(queue) > 0 {
		sw := queue[0]
		queue = queue[1:]

		for vector := 0; vector < 1<<sw.window; vector++ {
			next, shift, ok := parametricStep(states[sw.state], sw.window, vector, n, transpositions)
			if !ok {
				continue
			}
			toState := intern(next)
			entries = append(entries, windowEntry{sw.window, vector, sw.state, toState, shift})

			if sw.window < range0 {
				// the window already reaches the end of the word
				enqueue(stateWindow{toState, sw.window - shift})
			} else {
				// at least range0 characters were left, so anything from range0-shift up is possible
				for window := range0 - shift; window <= range0; window++ {
					enqueue(stateWindow{toState, window})
				}
			}
		}
	}

	numStates := len(states)
	toStates := make([][]int, range0+1)
	offsetIncrs := make([][]int, range0+1)
	for window := 0; window <= range0; window++ {
		toStates[window] = make([]int, (1<<window)*numStates)
		offsetIncrs[window] = make([]int, (1<<window)*numStates)
	}
	for _, e := range entries {
		loc := e.vector*numStates + e.state
		toStates[e.window][loc] = e.toState + 1
		offsetIncrs[e.window][loc] = e.offsetIncr
	}

	tables := &parametricTables{
		numStates: numStates,
		minErrors: make([]int, numStates),
		windows:   make([]windowTables, range0+1),
	}
	for s, positions := range states {
		tables.minErrors[s] = minErrors(positions, n)
	}
	toBits := bitsRequired(numStates)
	offsetBits := bitsRequired(range0)
	for window := 0; window <= range0; window++ {
		tables.windows[window] = windowTables{
			toStates:        pack(toStates[window], toBits),
			toStatesBits:    toBits,
			offsetIncrs:     pack(offsetIncrs[window], offsetBits),
			offsetIncrsBits: offsetBits,
		}
	}
	return tables
}

// parametricStep applies one input character, summarized by its characteristic vector over the
// window (the first window position is the most significant bit), to every position of the state.
// It returns the normalized successor and how far the base offset moved, or false if every
// position died.
func parametricStep(state []parametricPosition, window, vector, n int, transpositions bool) ([]parametricPosition, int, bool) {
	bit := func(k int) bool {
		return k < window && (vector>>(window-1-k))&1 == 1
	}

	next := make([]parametricPosition, 0, 2*len(state)+2)
	for _, p := range state {
		if p.t {
			// second half of a transposition
			if bit(p.i) {
				next = append(next, parametricPosition{i: p.i + 2, e: p.e})
			}
			continue
		}

		// match
		if bit(p.i) {
			next = append(next, parametricPosition{i: p.i + 1, e: p.e})
		}
		if p.e >= n {
			continue
		}

		// insertion
		next = append(next, parametricPosition{i: p.i, e: p.e + 1})
		// substitution
		if p.i < window {
			next = append(next, parametricPosition{i: p.i + 1, e: p.e + 1})
		}
		// deletion of k characters, then a match
		for k := 1; k <= n-p.e; k++ {
			if bit(p.i + k) {
				next = append(next, parametricPosition{i: p.i + k + 1, e: p.e + k})
			}
		}
		if transpositions && bit(p.i+1) {
			next = append(next, parametricPosition{i: p.i, e: p.e + 1, t: true})
		}
	}
	if len(next) == 0 {
		return nil, 0, false
	}

	next = reducePositions(next)
	shift := next[0].i
	for _, p := range next {
		shift = min(shift, p.i)
	}
	for j := range next {
		next[j].i -= shift
	}
	slices.SortFunc(next, comparePositions)
	return next, shift, true
}

// reducePositions drops duplicates and every position subsumed by another one.
func reducePositions(positions []parametricPosition) []parametricPosition {
	slices.SortFunc(positions, comparePositions)
	positions = slices.Compact(positions)

	reduced := make([]parametricPosition, 0, len(positions))
	for _, p := range positions {
		subsumed := false
		for _, q := range positions {
			if q != p && subsumes(q, p) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			reduced = append(reduced, p)
		}
	}
	return reduced
}

// subsumes reports whether every string accepted from p is also accepted from q.
func subsumes(q, p parametricPosition) bool {
	switch {
	case !q.t && !p.t:
		return q.e < p.e && abs(p.i-q.i) <= p.e-q.e
	case !q.t && p.t:
		return p.e > q.e && abs(p.i+1-q.i) <= p.e-q.e
	case q.t && p.t:
		return q.i == p.i && p.e > q.e
	default:
		return false
	}
}

// minErrors is the least value of e-i over the standard positions; a state at offset o accepts when
// (w-o)+minErrors <= n. States without standard positions never accept.
func minErrors(positions []parametricPosition, n int) int {
	m := n + 1
	found := false
	for _, p := range positions {
		if p.t {
			continue
		}
		if !found || p.e-p.i < m {
			m = p.e - p.i
			found = true
		}
	}
	return m
}

func comparePositions(a, b parametricPosition) int {
	if a.i != b.i {
		return a.i - b.i
	}
	if a.e != b.e {
		return a.e - b.e
	}
	if a.t == b.t {
		return 0
	}
	if !a.t {
		return -1
	}
	return 1
}

func positionsKey(positions []parametricPosition) string {
	var sb strings.Builder
	for _, p := range positions {
		sb.WriteString(strconv.Itoa(p.i))
		sb.WriteByte('#')
		sb.WriteString(strconv.Itoa(p.e))
		if p.t {
			sb.WriteByte('t')
		}
		sb.WriteByte(' ')
	}
	return sb.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
