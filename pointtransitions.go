package automaton

import "sort"

// transitionList holds (dest, min, max) triples that start or end at one point.
type transitionList struct {
	transitions []int
}

func (l *transitionList) add(t *Transition) {
	l.transitions = append(l.transitions, t.Dest, t.Min, t.Max)
}

// pointTransitions holds all transitions that start on this int point, or end at this point-1
type pointTransitions struct {
	point  int
	ends   transitionList
	starts transitionList
}

func (p *pointTransitions) reset(point int) {
	p.point = point
	p.ends.transitions = p.ends.transitions[:0]
	p.starts.transitions = p.starts.transitions[:0]
}

const pointTransitionsHashCutover = 30

// pointTransitionSet collates the transitions of every member of a subset state by boundary point.
// Points are found by linear scan until there are more than pointTransitionsHashCutover of them.
type pointTransitionSet struct {
	points  []*pointTransitions
	count   int
	useHash bool
	index   map[int]*pointTransitions
}

func newPointTransitionSet() *pointTransitionSet {
	return &pointTransitionSet{
		points: make([]*pointTransitions, 0, 5),
		index:  make(map[int]*pointTransitions),
	}
}

func (s *pointTransitionSet) next(point int) *pointTransitions {
	// 1st time we are seeing this point
	if s.count == len(s.points) {
		s.points = append(s.points, &pointTransitions{})
	}
	points0 := s.points[s.count]
	points0.reset(point)
	s.count++
	return points0
}

func (s *pointTransitionSet) find(point int) *pointTransitions {
	if s.useHash {
		p, ok := s.index[point]
		if !ok {
			p = s.next(point)
			s.index[point] = p
		}
		return p
	}

	for i := 0; i < s.count; i++ {
		if s.points[i].point == point {
			return s.points[i]
		}
	}

	p := s.next(point)
	if s.count == pointTransitionsHashCutover {
		// switch to hash map on the fly
		for i := 0; i < s.count; i++ {
			s.index[s.points[i].point] = s.points[i]
		}
		s.useHash = true
	}
	return p
}

func (s *pointTransitionSet) reset() {
	if s.useHash {
		clear(s.index)
		s.useHash = false
	}
	s.count = 0
}

func (s *pointTransitionSet) sort() {
	// Tim sort performs well on already sorted arrays:
	if s.count > 1 {
		live := s.points[:s.count]
		sort.SliceStable(live, func(i, j int) bool {
			return live[i].point < live[j].point
		})
	}
}

func (s *pointTransitionSet) add(t *Transition) {
	s.find(t.Min).starts.add(t)
	s.find(1 + t.Max).ends.add(t)
}
