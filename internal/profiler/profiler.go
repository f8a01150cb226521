// Package profiler simulates the memory occupancy implied by a schedule.
//
// Profiling is a pure function of the frozen graph, the static size estimates
// of every module and the schedule: no object is allocated. For each step the
// profiler adds the sizes of the module's outputs and temporaries, records the
// allocated total, then subtracts the temporaries and every object whose last
// scheduled consumer is that step. Final results and cached objects are never
// subtracted.
package profiler

import (
	"context"
	"fmt"

	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/graph"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
)

// Policy decides how cached bytes count against a schedule's peak.
type Policy int

const (
	// PolicyFloor adds every cached byte as a constant to each step.
	PolicyFloor Policy = iota
	// PolicyLive counts cached bytes from their producing step onward.
	PolicyLive
)

func (p Policy) String() string {
	switch p {
	case PolicyFloor:
		return "floor"
	case PolicyLive:
		return "live"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses a configured policy name. The empty string is floor.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "floor":
		return PolicyFloor, nil
	case "live":
		return PolicyLive, nil
	default:
		return 0, fmt.Errorf("unknown cached policy %q (want floor or live)", s)
	}
}

// Sample is the memory state around one schedule step.
type Sample struct {
	Step   int    `yaml:"step"`
	Module string `yaml:"module"`
	// Allocated is the resident total while the module runs.
	Allocated int64 `yaml:"allocated"`
	// Resident is the total left once the step's releases are applied.
	Resident int64 `yaml:"resident"`
}

// Profile is the simulated memory profile of a schedule.
type Profile struct {
	Peak int64
	// Area is the sum of Resident over all steps. Among equal peaks, a
	// smaller area means objects are held for less time.
	Area     int64
	Cached   int64
	Timeline []Sample
}

// Better reports whether a is a fitter profile than b.
func Better(a, b Profile) bool {
	if a.Peak != b.Peak {
		return a.Peak < b.Peak
	}
	return a.Area < b.Area
}

type nodeCost struct {
	owned   []object // outputs released after their last consumer
	results int64
	temps   int64
	cached  int64
}

type object struct {
	name string
	size int64
}

// Profiler evaluates schedules of one graph. It is safe for concurrent use.
type Profiler struct {
	g      *graph.Graph
	policy Policy
	costs  []nodeCost
	sizes  map[string]int64
	floor  int64
}

// New collects the size estimates of every module in g.
func New(ctx context.Context, g *graph.Graph, policy Policy) *Profiler {
	logger := ctxlog.FromContext(ctx)
	p := &Profiler{
		g:      g,
		policy: policy,
		costs:  make([]nodeCost, g.Len()),
		sizes:  make(map[string]int64),
	}
	for _, n := range g.Nodes() {
		estimated := make(map[string]bool)
		cost := &p.costs[n.Index]
		for _, est := range n.Module.Estimates() {
			switch est.Class {
			case objectstore.Temporary:
				cost.temps += est.Size
				continue
			case objectstore.Cached:
				cost.cached += est.Size
				p.floor += est.Size
			case objectstore.Owned:
				if g.IsResult(est.Name) {
					cost.results += est.Size
				} else {
					cost.owned = append(cost.owned, object{est.Name, est.Size})
				}
			}
			p.sizes[est.Name] = est.Size
			estimated[est.Name] = true
		}
		for _, out := range n.Outputs {
			if !estimated[out] {
				logger.Warn("Output has no size estimate, profiling it as empty.", "module", n.Name, "object", out)
			}
		}
	}
	return p
}

// Graph returns the graph the profiler was built for.
func (p *Profiler) Graph() *graph.Graph { return p.g }

// Policy returns the cached-bytes policy.
func (p *Profiler) Policy() Policy { return p.policy }

// CachedBytes returns the total estimated size of cached objects.
func (p *Profiler) CachedBytes() int64 { return p.floor }

// Estimate returns the estimated size of a non-temporary object.
func (p *Profiler) Estimate(name string) (int64, bool) {
	s, ok := p.sizes[name]
	return s, ok
}

// Profile simulates schedule, which must be a valid topological order.
func (p *Profiler) Profile(schedule []int) Profile {
	plan := p.ReleasePlan(schedule)
	prof := Profile{Cached: p.floor, Timeline: make([]Sample, len(schedule))}

	var running int64
	if p.policy == PolicyFloor {
		running = p.floor
	}
	for k, i := range schedule {
		cost := p.costs[i]
		for _, o := range cost.owned {
			running += o.size
		}
		running += cost.results
		if p.policy == PolicyLive {
			running += cost.cached
		}
		running += cost.temps
		allocated := running

		running -= cost.temps
		for _, name := range plan[k] {
			running -= p.sizes[name]
		}

		prof.Timeline[k] = Sample{Step: k, Module: p.g.Node(i).Name, Allocated: allocated, Resident: running}
		if allocated > prof.Peak {
			prof.Peak = allocated
		}
		prof.Area += running
	}
	return prof
}

// ReleasePlan returns, for each step of schedule, the owned outputs whose
// last consumer runs at that step. An output nobody consumes is released by
// its own producer's step. Results, cached objects and temporaries never
// appear in the plan.
func (p *Profiler) ReleasePlan(schedule []int) [][]string {
	pos := make([]int, p.g.Len())
	for k, i := range schedule {
		pos[i] = k
	}
	plan := make([][]string, len(schedule))
	for k, i := range schedule {
		for _, o := range p.costs[i].owned {
			last := k
			for _, c := range p.g.Consumers(o.name) {
				if pos[c] > last {
					last = pos[c]
				}
			}
			plan[last] = append(plan[last], o.name)
		}
	}
	return plan
}
