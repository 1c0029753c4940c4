// Package errors defines the stable error codes shared by the coordinate
// algebra, the store, and the CLI.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NoModularInverse indicates the inverse arguments were not coprime.
	// This is an internal consistency fault, not user error: every stored
	// coordinate is coprime-reduced, so a missing inverse means an
	// invariant was broken upstream.
	NoModularInverse ErrorCode = "NO_MODULAR_INVERSE"
	// OwnershipCycle indicates an attempted reparent onto the node itself
	// or one of its descendants. User-facing; nothing is mutated.
	OwnershipCycle ErrorCode = "OWNERSHIP_CYCLE"
	// InvariantViolation indicates a coordinate post-condition failure:
	// unreduced fraction, non-positive denominator, or a node outside its
	// parent's interval.
	InvariantViolation ErrorCode = "INVARIANT_VIOLATION"
	// ConcurrentConflict indicates lock acquisition failed or torn state
	// was detected; the caller may retry.
	ConcurrentConflict ErrorCode = "CONCURRENT_CONFLICT"
	// NodeNotFound indicates the referenced node doesn't exist in scope
	NodeNotFound ErrorCode = "NODE_NOT_FOUND"
	// ScopeInvalid indicates an invalid forest-partition scope value
	ScopeInvalid ErrorCode = "SCOPE_INVALID"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// TreeError represents a brocot error with a stable code and message
type TreeError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error     // Underlying error (not exported to JSON)
}

// New creates a TreeError without a cause
func New(code ErrorCode, message string) *TreeError {
	return &TreeError{Code: code, Message: message}
}

// Wrap creates a TreeError wrapping an underlying cause
func Wrap(code ErrorCode, message string, cause error) *TreeError {
	return &TreeError{Code: code, Message: message, cause: cause}
}

// Newf creates a TreeError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *TreeError {
	return &TreeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface
func (e *TreeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *TreeError) Unwrap() error {
	return e.cause
}

// Is matches TreeErrors by code, so errors.Is works through wrapped chains
// with a bare New(code, "") as the target.
func (e *TreeError) Is(target error) bool {
	var te *TreeError
	if !errors.As(target, &te) {
		return false
	}
	return e.Code == te.Code
}

// HasCode reports whether err (or anything it wraps) is a TreeError with
// the given code.
func HasCode(err error, code ErrorCode) bool {
	var te *TreeError
	if !errors.As(err, &te) {
		return false
	}
	return te.Code == code
}

// CodeOf returns the error code of err, or InternalError for foreign errors.
func CodeOf(err error) ErrorCode {
	var te *TreeError
	if errors.As(err, &te) {
		return te.Code
	}
	return InternalError
}
