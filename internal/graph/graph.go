package graph

import (
	"context"
	"slices"
	"sort"

	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/module"
)

// Node is one module instance in the graph. Nodes are addressed by their
// index, which is the module's position in the configuration.
type Node struct {
	Index   int
	Module  module.Module
	Name    string
	Inputs  []string
	Outputs []string
	// Deps holds the indices of the producers of Inputs, ascending, no repeats.
	Deps []int
	// Dependents holds the indices of the consumers of Outputs, ascending.
	Dependents []int
}

// Options tune how a graph is resolved.
type Options struct {
	// External names objects supplied before the run starts. They resolve
	// inputs without a producing module.
	External []string
	// Results names the final outputs that are never released during a
	// trajectory. When nil, every output of a module without dependents is
	// a result.
	Results []string
}

// Graph is the frozen DAG of a run.
type Graph struct {
	nodes     []*Node
	byName    map[string]int
	producer  map[string]int
	consumers map[string][]int
	external  map[string]bool
	results   map[string]bool
}

// Build resolves the modules' declared inputs against their outputs and
// validates the resulting graph.
func Build(ctx context.Context, modules []module.Module, opts Options) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building dependency graph.", "modules", len(modules), "external", len(opts.External))

	g := &Graph{
		nodes:     make([]*Node, len(modules)),
		byName:    make(map[string]int, len(modules)),
		producer:  make(map[string]int),
		consumers: make(map[string][]int),
		external:  make(map[string]bool, len(opts.External)),
		results:   make(map[string]bool),
	}
	for _, name := range opts.External {
		g.external[name] = true
	}

	for i, m := range modules {
		if _, dup := g.byName[m.Name()]; dup {
			return nil, &GraphError{Kind: ErrDuplicateModule, Module: m.Name()}
		}
		g.byName[m.Name()] = i
		g.nodes[i] = &Node{
			Index:   i,
			Module:  m,
			Name:    m.Name(),
			Inputs:  slices.Clone(m.Inputs()),
			Outputs: slices.Clone(m.Outputs()),
		}
		for _, out := range m.Outputs() {
			if g.external[out] {
				return nil, &GraphError{Kind: ErrExternalOutput, Module: m.Name(), Object: out}
			}
			if p, dup := g.producer[out]; dup {
				return nil, &GraphError{
					Kind: ErrDuplicateOutput, Module: m.Name(), Object: out,
					Msg: "already produced by " + modules[p].Name(),
				}
			}
			g.producer[out] = i
		}
	}

	if err := g.link(); err != nil {
		return nil, err
	}
	if err := g.detectCycles(); err != nil {
		return nil, err
	}
	if err := g.resolveResults(opts.Results); err != nil {
		return nil, err
	}

	logger.Debug("Dependency graph built.", "nodes", len(g.nodes), "objects", len(g.producer), "results", len(g.results))
	return g, nil
}

// link turns input names into producer/consumer edges.
func (g *Graph) link() error {
	for _, n := range g.nodes {
		deps := make(map[int]bool)
		for _, in := range n.Inputs {
			p, ok := g.producer[in]
			if !ok {
				if g.external[in] {
					continue
				}
				return &GraphError{Kind: ErrUnresolvedInput, Module: n.Name, Object: in}
			}
			if !slices.Contains(g.consumers[in], n.Index) {
				g.consumers[in] = append(g.consumers[in], n.Index)
			}
			deps[p] = true
		}
		for p := range deps {
			n.Deps = append(n.Deps, p)
			g.nodes[p].Dependents = append(g.nodes[p].Dependents, n.Index)
		}
		sort.Ints(n.Deps)
	}
	for _, n := range g.nodes {
		sort.Ints(n.Dependents)
	}
	return nil
}

// detectCycles runs a colored depth-first search along dependent edges and
// reports the first cycle found as a path of module names.
func (g *Graph) detectCycles() error {
	const (
		unvisited = iota
		visiting
		visited
	)
	color := make([]int, len(g.nodes))
	var stack []int

	var visit func(i int) error
	visit = func(i int) error {
		color[i] = visiting
		stack = append(stack, i)
		for _, d := range g.nodes[i].Dependents {
			switch color[d] {
			case visiting:
				start := slices.Index(stack, d)
				path := make([]string, 0, len(stack)-start+1)
				for _, j := range stack[start:] {
					path = append(path, g.nodes[j].Name)
				}
				return cycleError(append(path, g.nodes[d].Name))
			case unvisited:
				if err := visit(d); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[i] = visited
		return nil
	}

	for i := range g.nodes {
		if color[i] == unvisited {
			if err := visit(i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) resolveResults(explicit []string) error {
	if explicit != nil {
		for _, name := range explicit {
			if _, ok := g.producer[name]; !ok {
				return &GraphError{Kind: ErrUnknownResult, Object: name}
			}
			g.results[name] = true
		}
		return nil
	}
	for _, n := range g.nodes {
		if len(n.Dependents) == 0 {
			for _, out := range n.Outputs {
				g.results[out] = true
			}
		}
	}
	return nil
}

// Len returns the number of modules.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node at index i.
func (g *Graph) Node(i int) *Node { return g.nodes[i] }

// Nodes returns every node in configuration order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// NodeByName looks a module up by name.
func (g *Graph) NodeByName(name string) (*Node, bool) {
	i, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Producer returns the index of the module producing an object.
func (g *Graph) Producer(object string) (int, bool) {
	i, ok := g.producer[object]
	return i, ok
}

// Consumers returns the indices of the modules reading an object, ascending.
func (g *Graph) Consumers(object string) []int {
	return g.consumers[object]
}

// IsExternal reports whether an object is supplied from outside the graph.
func (g *Graph) IsExternal(object string) bool { return g.external[object] }

// IsResult reports whether an object is a final output.
func (g *Graph) IsResult(object string) bool { return g.results[object] }

// Results returns the final outputs, sorted.
func (g *Graph) Results() []string {
	out := make([]string, 0, len(g.results))
	for name := range g.results {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DependsOn reports whether module b reads an output of module a directly.
func (g *Graph) DependsOn(b, a int) bool {
	_, found := slices.BinarySearch(g.nodes[b].Deps, a)
	return found
}
