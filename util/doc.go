// Package util provides generic utility functions for pipekit packages.
//
// It includes slice operations, pointer helpers, and map utilities.
package util
