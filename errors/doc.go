// Package errors provides unified error handling for pipekit.
// It implements structured error types with machine-readable codes so
// callers can distinguish argument, graph, and execution failures
// without string matching.
package errors
