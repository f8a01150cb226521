// Package scheduler chooses the order in which the modules of a run execute.
//
// # Why Scheduler Exists
//
// Every topological order of the module graph computes the same results, but
// they differ in how many field objects are resident at once. Fields can be
// gigabytes, so a careless order can exceed the memory a better order fits in.
// The scheduler searches the space of valid orders for one with a low peak.
//
// # How It Works
//
// Genetic runs a genetic algorithm whose chromosomes are topological orders:
//  1. Seed a population of distinct random orders (randomized Kahn)
//  2. Score each order with the memory profiler, in parallel
//  3. Carry the best order over unchanged, fill the rest of the next
//     generation with precedence-preserving crossovers of tournament winners,
//     occasionally mutated by a validity-preserving swap
//  4. Stop after the generation budget, or earlier once the best order has
//     not improved for a number of consecutive generations
//
// Every operator produces valid orders by construction; nothing is repaired
// after the fact. Fixed replays an order loaded from a schedule file instead.
package scheduler
