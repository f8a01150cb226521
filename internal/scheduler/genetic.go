package scheduler

import (
	"context"
	"encoding/binary"
	"math/rand/v2"
	"runtime"

	"github.com/bits-and-blooms/bitset"
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/graph"
	"github.com/specialistvlad/fieldgridgo/internal/profiler"
	"golang.org/x/sync/errgroup"
)

const tournamentSize = 3

// Genetic searches topological orders with a genetic algorithm, using the
// profiled peak as fitness. A Genetic is not safe for concurrent use.
type Genetic struct {
	g       *graph.Graph
	prof    *profiler.Profiler
	cfg     Config
	rng     *rand.Rand
	workers int
	// dependents[i] has bit d set when node d reads an output of node i.
	dependents []*bitset.BitSet
}

type individual struct {
	order []int
	prof  profiler.Profile
}

// NewGenetic validates cfg and prepares a search over the profiler's graph.
func NewGenetic(p *profiler.Profiler, cfg Config) (*Genetic, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g := p.Graph()
	dependents := make([]*bitset.BitSet, g.Len())
	for _, n := range g.Nodes() {
		bits := bitset.New(uint(g.Len()))
		for _, d := range n.Dependents {
			bits.Set(uint(d))
		}
		dependents[n.Index] = bits
	}

	return &Genetic{
		g:          g,
		prof:       p,
		cfg:        cfg,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		workers:    workers,
		dependents: dependents,
	}, nil
}

// Schedule runs the search and returns the best order seen in any generation.
func (s *Genetic) Schedule(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.g.HasUniqueOrder() {
		order := s.g.TopologicalOrder()
		prof := s.prof.Profile(order)
		logger.Debug("Graph admits a single order, skipping search.", "modules", len(order), "peak", prof.Peak)
		return &Result{Schedule: order, Profile: prof, History: []int64{prof.Peak}}, nil
	}

	pop := s.initialPopulation(ctx)
	if err := s.evaluate(ctx, pop); err != nil {
		return nil, err
	}
	best := fittest(pop)
	res := &Result{History: []int64{best.prof.Peak}}
	logger.Debug("Initial population evaluated.", "size", len(pop), "best_peak", best.prof.Peak)

	stagnant := 0
	for gen := 1; gen <= s.cfg.MaxGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := make([]*individual, 0, len(pop))
		next = append(next, best)
		for len(next) < len(pop) {
			child := s.crossover(s.tournament(pop).order, s.tournament(pop).order)
			if s.rng.Float64() < s.cfg.MutationRate {
				s.mutate(child)
			}
			next = append(next, &individual{order: child})
		}
		if err := s.evaluate(ctx, next[1:]); err != nil {
			return nil, err
		}
		pop = next
		res.Generations = gen

		if cand := fittest(pop); profiler.Better(cand.prof, best.prof) {
			best = cand
			stagnant = 0
			logger.Debug("Generation improved best schedule.", "generation", gen, "peak", best.prof.Peak, "area", best.prof.Area)
		} else {
			stagnant++
		}
		res.History = append(res.History, best.prof.Peak)

		if s.cfg.MaxStagnantGenerations > 0 && stagnant >= s.cfg.MaxStagnantGenerations {
			logger.Debug("Search stagnated.", "generation", gen, "stagnant_generations", stagnant)
			break
		}
	}

	res.Schedule = best.order
	res.Profile = best.prof
	return res, nil
}

// initialPopulation draws distinct random orders. Graphs with fewer distinct
// orders than the population size are padded with repeats.
func (s *Genetic) initialPopulation(ctx context.Context) []*individual {
	size := s.cfg.PopulationSize
	seen := bloom.NewWithEstimates(uint(size*4), 0.001)
	pop := make([]*individual, 0, size)

	for attempt := 0; len(pop) < size && attempt < size*20; attempt++ {
		order := s.randomOrder()
		if seen.TestAndAdd(orderKey(order)) {
			continue
		}
		pop = append(pop, &individual{order: order})
	}
	if len(pop) < size {
		ctxlog.FromContext(ctx).Debug("Padding population with repeated orders.", "distinct", len(pop), "size", size)
	}
	for len(pop) < size {
		pop = append(pop, &individual{order: s.randomOrder()})
	}
	return pop
}

func (s *Genetic) evaluate(ctx context.Context, pop []*individual) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for _, ind := range pop {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ind.prof = s.prof.Profile(ind.order)
			return nil
		})
	}
	return eg.Wait()
}

func (s *Genetic) tournament(pop []*individual) *individual {
	best := pop[s.rng.IntN(len(pop))]
	for i := 1; i < tournamentSize; i++ {
		if cand := pop[s.rng.IntN(len(pop))]; profiler.Better(cand.prof, best.prof) {
			best = cand
		}
	}
	return best
}

func fittest(pop []*individual) *individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if profiler.Better(ind.prof, best.prof) {
			best = ind
		}
	}
	return best
}

func orderKey(order []int) []byte {
	key := make([]byte, 0, len(order)*2)
	for _, i := range order {
		key = binary.AppendUvarint(key, uint64(i))
	}
	return key
}
