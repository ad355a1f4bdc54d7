// Package testutil provides helpers for exercising pipelines in
// tests: canned node functions and an invocation counter for
// asserting which nodes actually ran.
package testutil
