package graph

import "fmt"

// TopologicalOrder returns a deterministic topological order: Kahn's
// algorithm, always taking the lowest ready index.
func (g *Graph) TopologicalOrder() []int {
	indegree := make([]int, len(g.nodes))
	for _, n := range g.nodes {
		indegree[n.Index] = len(n.Deps)
	}

	order := make([]int, 0, len(g.nodes))
	for len(order) < len(g.nodes) {
		next := -1
		for i, d := range indegree {
			if d == 0 {
				next = i
				break
			}
		}
		// Build rejects cycles, so a ready node always exists.
		indegree[next] = -1
		order = append(order, next)
		for _, d := range g.nodes[next].Dependents {
			indegree[d]--
		}
	}
	return order
}

// HasUniqueOrder reports whether the graph admits exactly one topological
// order, which is the case when every consecutive pair of that order is
// joined by an edge.
func (g *Graph) HasUniqueOrder() bool {
	order := g.TopologicalOrder()
	for k := 1; k < len(order); k++ {
		if !g.DependsOn(order[k], order[k-1]) {
			return false
		}
	}
	return true
}

// Validate checks that schedule is a permutation of the graph's nodes in
// which every producer precedes its consumers.
func (g *Graph) Validate(schedule []int) error {
	if len(schedule) != len(g.nodes) {
		return scheduleError("", fmt.Sprintf("has %d modules, graph has %d", len(schedule), len(g.nodes)))
	}
	pos := make([]int, len(g.nodes))
	for i := range pos {
		pos[i] = -1
	}
	for k, i := range schedule {
		if i < 0 || i >= len(g.nodes) {
			return scheduleError("", fmt.Sprintf("index %d out of range", i))
		}
		if pos[i] >= 0 {
			return scheduleError(g.nodes[i].Name, "scheduled twice")
		}
		pos[i] = k
	}
	for _, n := range g.nodes {
		for _, d := range n.Deps {
			if pos[d] > pos[n.Index] {
				return scheduleError(n.Name, "runs before its dependency "+g.nodes[d].Name)
			}
		}
	}
	return nil
}

// Names maps a schedule to module names.
func (g *Graph) Names(schedule []int) []string {
	names := make([]string, len(schedule))
	for k, i := range schedule {
		names[k] = g.nodes[i].Name
	}
	return names
}

// ScheduleFromNames maps module names to a schedule and validates it.
func (g *Graph) ScheduleFromNames(names []string) ([]int, error) {
	schedule := make([]int, len(names))
	for k, name := range names {
		i, ok := g.byName[name]
		if !ok {
			return nil, scheduleError(name, "unknown module")
		}
		schedule[k] = i
	}
	if err := g.Validate(schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}
