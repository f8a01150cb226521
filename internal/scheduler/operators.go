package scheduler

// kahn walks the graph in topological order. pick chooses which ready node
// to place next and returns its index in ready.
func (s *Genetic) kahn(pick func(ready []int) int) []int {
	n := s.g.Len()
	indegree := make([]int, n)
	ready := make([]int, 0, n)
	for _, node := range s.g.Nodes() {
		indegree[node.Index] = len(node.Deps)
		if indegree[node.Index] == 0 {
			ready = append(ready, node.Index)
		}
	}

	order := make([]int, 0, n)
	for len(ready) > 0 {
		k := pick(ready)
		next := ready[k]
		ready[k] = ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		order = append(order, next)
		for _, d := range s.g.Node(next).Dependents {
			indegree[d]--
			if indegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}
	return order
}

// randomOrder is a uniformly random choice among ready nodes at every step.
func (s *Genetic) randomOrder() []int {
	return s.kahn(func(ready []int) int {
		return s.rng.IntN(len(ready))
	})
}

// crossover builds a child by repeatedly placing the ready node that comes
// first in one of the parents, chosen at random for each placement.
func (s *Genetic) crossover(a, b []int) []int {
	posA, posB := positions(a), positions(b)
	return s.kahn(func(ready []int) int {
		pos := posA
		if s.rng.IntN(2) == 1 {
			pos = posB
		}
		k := 0
		for j := 1; j < len(ready); j++ {
			if pos[ready[j]] < pos[ready[k]] {
				k = j
			}
		}
		return k
	})
}

// mutate swaps two positions whose exchange keeps the order valid. It gives
// up after len(order) random draws and reports whether a swap happened.
func (s *Genetic) mutate(order []int) bool {
	n := len(order)
	if n < 2 {
		return false
	}
	for attempt := 0; attempt < n; attempt++ {
		i, j := s.rng.IntN(n), s.rng.IntN(n)
		if i == j {
			continue
		}
		if i > j {
			i, j = j, i
		}
		if s.swappable(order, i, j) {
			order[i], order[j] = order[j], order[i]
			return true
		}
	}
	return false
}

// swappable reports whether order[i] and order[j] (i < j) can trade places:
// nothing in (i, j] reads order[i], and order[j] reads nothing in [i, j).
func (s *Genetic) swappable(order []int, i, j int) bool {
	a, b := order[i], order[j]
	for k := i + 1; k <= j; k++ {
		if s.dependents[a].Test(uint(order[k])) {
			return false
		}
	}
	for k := i; k < j; k++ {
		if s.g.DependsOn(b, order[k]) {
			return false
		}
	}
	return true
}

func positions(order []int) []int {
	pos := make([]int, len(order))
	for k, i := range order {
		pos[i] = k
	}
	return pos
}
