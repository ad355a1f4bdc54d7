// Package hooks provides common pre/post validation hook factories for
// pipeline nodes: presence checks, type and range checks, finiteness
// checks, and struct validation via go-playground/validator.
package hooks
