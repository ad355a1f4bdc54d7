// Package dag implements a computational pipeline engine: a directed
// acyclic graph of named computation steps.
//
// A Pipeline owns a set of nodes keyed by unique name. Dependencies
// that do not name a node become virtual inputs whose values are
// supplied at execution time. Execute runs the minimal subgraph needed
// to produce the requested outputs, honoring bypass values, validation
// hooks, and a per-execution result cache.
//
// Pipelines are not safe for concurrent mutation. Concurrent execution
// of independent pipelines (including subgraphs produced by
// ExtractSubgraph) is safe.
package dag
