package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// As is a convenience re-export of the standard library errors.As.
func As(err error, target any) bool { return errors.As(err, target) }

// Is is a convenience re-export of the standard library errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Returns an empty code when err is not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// --- Common Error Constructors ---

// InvalidInput creates a new AppError for an invalid argument.
func InvalidInput(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		Details: map[string]any{"field": field},
	}
}

// NodeNotFound creates a new AppError for a node lookup that failed.
func NodeNotFound(name string) *AppError {
	return &AppError{
		Code: ErrCodeNodeNotFound, Message: fmt.Sprintf("Node %q not found.", name),
		Details: map[string]any{"node": name},
	}
}

// NodeConflict creates a new AppError for a node that cannot be replaced or
// removed because other nodes depend on it.
func NodeConflict(name string, dependents []string) *AppError {
	dependents = append([]string(nil), dependents...)
	sort.Strings(dependents)
	return &AppError{
		Code: ErrCodeNodeConflict,
		Message: fmt.Sprintf("Node %q has dependents: %s.",
			name, strings.Join(dependents, ", ")),
		Details: map[string]any{"node": name, "dependents": dependents},
	}
}

// CycleDetected creates a new AppError for a graph edit that would create a cycle.
func CycleDetected(name string) *AppError {
	return &AppError{
		Code: ErrCodeCycleDetected, Message: fmt.Sprintf("Adding node %q would create a cycle.", name),
		Details: map[string]any{"node": name},
	}
}

// MissingInput creates a new AppError for required virtual inputs that were
// not supplied at execution time.
func MissingInput(names []string) *AppError {
	names = append([]string(nil), names...)
	sort.Strings(names)
	return &AppError{
		Code: ErrCodeMissingInput,
		Message: fmt.Sprintf("Missing required virtual inputs: %s. These must be provided in inputs.",
			strings.Join(names, ", ")),
		Details: map[string]any{"inputs": names},
	}
}

// UnreachableOutput creates a new AppError for an output that cannot be
// produced from the supplied inputs.
func UnreachableOutput(output string, missing []string) *AppError {
	missing = append([]string(nil), missing...)
	sort.Strings(missing)
	return &AppError{
		Code: ErrCodeUnreachableOutput,
		Message: fmt.Sprintf("Output %q is not reachable from provided inputs. "+
			"Virtual inputs without values in its dependency chain: %s.",
			output, strings.Join(missing, ", ")),
		Details: map[string]any{"output": output, "missing": missing},
	}
}

// NodeFailed creates a new AppError wrapping a failure raised by a node
// function or hook. Phase is one of "pre", "func", "post".
func NodeFailed(node, phase string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeNodeFailed, Message: fmt.Sprintf("Node %q failed during %s phase.", node, phase),
		Details: map[string]any{"node": node, "phase": phase},
		Cause:   cause,
	}
}

// Canceled creates a new AppError for an execution aborted by the caller's context.
func Canceled(cause error) *AppError {
	return &AppError{
		Code: ErrCodeCanceled, Message: "Execution canceled.",
		Cause: cause,
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Cause: cause,
	}
}
