package automaton

// Determinize Determinizes the given automaton.
// Worst case complexity: exponential in number of states.
// Params: 	workLimit – Maximum amount of "work" that the powerset construction will spend before
//
//	returning ErrTooComplexToDeterminize. Higher numbers allow this operation to consume more memory
//	and CPU but allow more complex automatons. Use DEFAULT_DETERMINIZE_WORK_LIMIT as a decent default
//	if you don't otherwise know what to specify.
func Determinize(a *Automaton, workLimit int) (*Automaton, error) {
	if a.IsDeterministic() {
		// Already determinized
		return a, nil
	}
	if a.GetNumStates() <= 1 {
		// Already determinized
		return a, nil
	}

	// subset construction
	b := NewBuilder()

	// Same initial values and state will always have the same hashCode
	initialValues := []int{0}
	initialSet := NewFrozenIntSet(initialValues, hashIntSet(initialValues), 0)

	// Create state 0:
	b.CreateState()

	worklist := []*FrozenIntSet{initialSet}
	newState := NewHashMap[int](WithCapacity(16))

	b.SetAccept(0, a.IsAccept(0))
	newState.Set(initialSet, 0)

	// transitions collated by boundary point
	points := newPointTransitionSet()

	// maps state to its count
	statesSet := NewStateSet(5)

	t := Transition{}

	effortSpent := 0

	// approximate conversion from a limit on number of states to maximum "effort":
	effortLimit := workLimit * 10

	for len(worklist) > 0 {
		if effortSpent >= effortLimit {
			return nil, tooComplex(workLimit)
		}

		s := worklist[0]
		worklist = worklist[1:]

		// Collate all outgoing transitions by min/1+max:
		values := s.GetArray()
		effortSpent += len(values)
		for _, s0 := range values {
			numTransitions := a.InitTransition(s0, &t)
			for j := 0; j < numTransitions; j++ {
				a.GetNextTransition(&t)
				points.add(&t)
			}
		}

		if points.count == 0 {
			// No outgoing transitions -- skip it
			continue
		}

		points.sort()

		lastPoint := -1
		accCount := 0

		r := s.State()

		for i := 0; i < points.count; i++ {
			point := points.points[i].point

			if statesSet.Size() > 0 {
				q, ok := newState.Get(statesSet)
				if !ok {
					q = b.CreateState()
					p := statesSet.Freeze(q)
					worklist = append(worklist, p)
					b.SetAccept(q, accCount > 0)
					newState.Set(p, q)
				}

				b.AddTransition(r, q, lastPoint, point-1)
			}

			// process transitions that end on this point
			// (closes an overlapping interval)
			ends := points.points[i].ends.transitions
			for j := 0; j < len(ends); j += 3 {
				dest := ends[j]
				statesSet.Decr(dest)
				if a.IsAccept(dest) {
					accCount--
				}
			}

			// process transitions that start on this point
			// (opens a new interval)
			starts := points.points[i].starts.transitions
			for j := 0; j < len(starts); j += 3 {
				dest := starts[j]
				statesSet.Incr(dest)
				if a.IsAccept(dest) {
					accCount++
				}
			}
			lastPoint = point
		}
		points.reset()
	}

	return b.Finish(), nil
}
