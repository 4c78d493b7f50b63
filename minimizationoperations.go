package automaton

import (
	"unicode"

	"github.com/bits-and-blooms/bitset"
)

// Minimize
// Minimizes (and determinizes if not already deterministic) the given automaton using Hopcroft's algorithm.
// The input is not modified.
func Minimize(a *Automaton, determinizeWorkLimit int) (*Automaton, error) {
	if a.GetNumStates() == 0 || (!a.IsAccept(0) && a.GetNumTransitionsWithState(0) == 0) {
		// Fastmatch for common case
		return NewAutomaton(), nil
	}

	a, err := Determinize(a, determinizeWorkLimit)
	if err != nil {
		return nil, err
	}

	if a.GetNumTransitionsWithState(0) == 1 {
		t := Transition{}
		a.GetTransition(0, 0, &t)
		if t.Dest == 0 && t.Min == 0 && t.Max == unicode.MaxRune {
			// Accepts all strings
			return a, nil
		}
	}
	a = Totalize(a)

	// initialize data structures
	sigma := a.GetStartPoints()
	sigmaLen, statesLen := len(sigma), a.GetNumStates()

	// reverse edges, indexed by q*sigmaLen+x: the states that reach q on symbol class x
	reverseStart, reverse := reverseEdges(a, sigma)

	block := make([]int, statesLen)
	partSize := make([]int, statesLen)
	splitblock := make([][]int, statesLen)

	pending := make([]intPair, 0)
	pending2 := bitset.New(uint(sigmaLen * statesLen))
	split := bitset.New(uint(statesLen))
	refine := bitset.New(uint(statesLen))
	refine2 := bitset.New(uint(statesLen))

	// find initial partition
	for q := 0; q < statesLen; q++ {
		j := 1
		if a.IsAccept(q) {
			j = 0
		}
		block[q] = j
		partSize[j]++
	}

	// initialize active sets
	active := newStateLists(statesLen, sigmaLen)
	for x := 0; x < sigmaLen; x++ {
		for q := 0; q < statesLen; q++ {
			rs := q*sigmaLen + x
			if reverseStart[rs] < reverseStart[rs+1] {
				active.add(block[q], q, x)
			}
		}
	}

	// initialize pending
	for x := 0; x < sigmaLen; x++ {
		j := 1
		if active.size(0, x) <= active.size(1, x) {
			j = 0
		}
		pending = append(pending, intPair{j, x})
		pending2.Set(uint(x*statesLen + j))
	}

	// process pending until fixed point
	k := 2
	for len(pending) > 0 {
		ip := pending[0]
		pending = pending[1:]
		p, x := ip.n1, ip.n2
		pending2.Clear(uint(x*statesLen + p))

		// find states that need to be split off their blocks
		for m := active.first(p, x); m != -1; m = active.next[m] {
			rs := active.state(m)*sigmaLen + x
			for _, i := range reverse[reverseStart[rs]:reverseStart[rs+1]] {
				if split.Test(uint(i)) {
					continue
				}
				split.Set(uint(i))
				j := block[i]
				splitblock[j] = append(splitblock[j], i)
				if !refine2.Test(uint(j)) {
					refine2.Set(uint(j))
					refine.Set(uint(j))
				}
			}
		}

		// refine blocks
		for ju, ok := refine.NextSet(0); ok; ju, ok = refine.NextSet(ju + 1) {
			j := int(ju)
			sb := splitblock[j]
			if len(sb) < partSize[j] {
				for _, s := range sb {
					partSize[j]--
					partSize[k]++
					block[s] = k
					for c := 0; c < sigmaLen; c++ {
						if active.in(s, c) == j {
							active.remove(s, c)
							active.add(k, s, c)
						}
					}
				}

				// update pending
				for c := 0; c < sigmaLen; c++ {
					aj, ak, ofs := active.size(j, c), active.size(k, c), c*statesLen
					if !pending2.Test(uint(ofs+j)) && 0 < aj && aj <= ak {
						pending2.Set(uint(ofs + j))
						pending = append(pending, intPair{j, c})
					} else {
						pending2.Set(uint(ofs + k))
						pending = append(pending, intPair{k, c})
					}
				}
				k++
			}
			refine2.Clear(ju)
			for _, s := range sb {
				split.Clear(uint(s))
			}
			splitblock[j] = sb[:0]
		}
		refine.ClearAll()
	}

	result := NewAutomaton()
	t := Transition{}

	// make a new state for each equivalence class, set initial state
	blockState := make([]int, k)
	stateRep := make([]int, k)
	result.CreateState()
	for n := 0; n < k; n++ {
		stateRep[n] = -1
		if n == block[0] {
			blockState[n] = 0
		} else {
			blockState[n] = result.CreateState()
		}
	}

	stateMap := make([]int, statesLen)
	for q := 0; q < statesLen; q++ {
		newState := blockState[block[q]]
		stateMap[q] = newState
		result.SetAccept(newState, a.IsAccept(q))
		// select representative
		stateRep[newState] = q
	}

	// build transitions and set acceptance
	for n := 0; n < k; n++ {
		if stateRep[n] == -1 {
			// empty initial block
			continue
		}
		numTransitions := a.InitTransition(stateRep[n], &t)
		for i := 0; i < numTransitions; i++ {
			a.GetNextTransition(&t)
			result.addTransition(n, stateMap[t.Dest], t.Min, t.Max)
		}
	}
	result.FinishState()

	return RemoveDeadStates(result), nil
}

// reverseEdges builds the reverse transition index of a total deterministic automaton in compressed
// sparse row form: reverse[reverseStart[q*len(sigma)+x]:reverseStart[q*len(sigma)+x+1]] are the
// states that step to q on sigma[x].
func reverseEdges(a *Automaton, sigma []int) ([]int, []int) {
	sigmaLen, statesLen := len(sigma), a.GetNumStates()
	dests := make([]int, statesLen*sigmaLen)
	reverseStart := make([]int, statesLen*sigmaLen+1)
	for q := 0; q < statesLen; q++ {
		for x := 0; x < sigmaLen; x++ {
			d := a.Step(q, sigma[x])
			dests[q*sigmaLen+x] = d
			reverseStart[d*sigmaLen+x+1]++
		}
	}
	for i := 1; i < len(reverseStart); i++ {
		reverseStart[i] += reverseStart[i-1]
	}

	fill := make([]int, statesLen*sigmaLen)
	copy(fill, reverseStart)
	reverse := make([]int, statesLen*sigmaLen)
	for q := 0; q < statesLen; q++ {
		for x := 0; x < sigmaLen; x++ {
			rs := dests[q*sigmaLen+x]*sigmaLen + x
			reverse[fill[rs]] = q
			fill[rs]++
		}
	}
	return reverseStart, reverse
}

type intPair struct {
	n1 int
	n2 int
}

// stateLists holds, for every (block, symbol class) pair, a doubly linked list of the states of that
// block that have incoming transitions on that class. A state appears in at most one list per class,
// so the node for (q, x) is simply q*sigmaLen+x.
type stateLists struct {
	sigmaLen int

	next   []int
	prev   []int
	listOf []int // block of the list holding the node, or -1

	head  []int
	tail  []int
	count []int
}

func newStateLists(statesLen, sigmaLen int) *stateLists {
	numNodes := statesLen * sigmaLen
	l := &stateLists{
		sigmaLen: sigmaLen,
		next:     make([]int, numNodes),
		prev:     make([]int, numNodes),
		listOf:   make([]int, numNodes),
		head:     make([]int, numNodes),
		tail:     make([]int, numNodes),
		count:    make([]int, numNodes),
	}
	for i := 0; i < numNodes; i++ {
		l.listOf[i] = -1
		l.head[i] = -1
		l.tail[i] = -1
	}
	return l
}

func (l *stateLists) state(node int) int {
	return node / l.sigmaLen
}

func (l *stateLists) first(block, x int) int {
	return l.head[block*l.sigmaLen+x]
}

func (l *stateLists) size(block, x int) int {
	return l.count[block*l.sigmaLen+x]
}

func (l *stateLists) in(q, x int) int {
	return l.listOf[q*l.sigmaLen+x]
}

// add appends state q to the list of (block, x).
func (l *stateLists) add(block, q, x int) {
	list := block*l.sigmaLen + x
	node := q*l.sigmaLen + x
	l.listOf[node] = block
	l.next[node] = -1
	l.prev[node] = l.tail[list]
	if l.count[list] == 0 {
		l.head[list] = node
	} else {
		l.next[l.tail[list]] = node
	}
	l.tail[list] = node
	l.count[list]++
}

// remove unlinks state q from whichever list of class x holds it.
func (l *stateLists) remove(q, x int) {
	node := q*l.sigmaLen + x
	list := l.listOf[node]*l.sigmaLen + x
	l.count[list]--
	if l.head[list] == node {
		l.head[list] = l.next[node]
	} else {
		l.next[l.prev[node]] = l.next[node]
	}
	if l.tail[list] == node {
		l.tail[list] = l.prev[node]
	} else {
		l.prev[l.next[node]] = l.prev[node]
	}
	l.listOf[node] = -1
}
