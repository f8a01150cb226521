// Package graph builds the immutable dependency graph of a run.
//
// # Why Graph Package Exists
//
// Modules only declare the names of the objects they read and write. The
// graph turns those declarations into explicit producer/consumer edges so the
// profiler, the scheduler and the execution driver can reason about order
// without knowing anything about object payloads.
//
// # Responsibilities
//
//   - **Resolution:** every input resolves to exactly one producer, or to an
//     object supplied externally before the run starts
//   - **Validation:** cycles, dangling inputs, duplicate producers and
//     duplicate module names are build-time errors
//   - **Order queries:** a deterministic topological order, validation of
//     arbitrary schedules and detection of fully chained graphs
//
// # Lifecycle
//
//  1. **Built** once by the session from the configured modules
//  2. **Queried** concurrently by fitness evaluation (read-only)
//  3. **Discarded** when the session ends
//
// A Graph is never mutated after Build returns, so it is safe for concurrent
// use without locking.
package graph
