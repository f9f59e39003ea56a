// Package errors defines the stable error codes for the resolution engine.
// Only InvalidRequest and NotFound surface to callers; everything else is
// diagnostic detail attached to per-element misses.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code is a stable error code for a failure mode.
type Code string

const (
	// InvalidRequest indicates malformed caller input (e.g. empty name).
	// Never cached.
	InvalidRequest Code = "INVALID_REQUEST"
	// NotFound indicates every search path element was exhausted without a
	// validated match. Memoized in the negative cache.
	NotFound Code = "NOT_FOUND"
	// FetchFailed indicates a transient retrieval failure (timeout, 404,
	// unreachable server). Treated as a per-attempt miss.
	FetchFailed Code = "FETCH_FAILED"
	// ValidationMismatch indicates a candidate exists but its identity does
	// not match the request. Treated as a per-element miss.
	ValidationMismatch Code = "VALIDATION_MISMATCH"
	// StoreCorrupt indicates an unreadable artifact in the local cache store.
	StoreCorrupt Code = "STORE_CORRUPT"
	// InternalError indicates an unexpected failure.
	InternalError Code = "INTERNAL_ERROR"
)

// ResolveError is an error with a stable code and an optional cause.
type ResolveError struct {
	Code    Code
	Message string
	cause   error
}

// New creates a ResolveError with the given code and message.
func New(code Code, message string) *ResolveError {
	return &ResolveError{Code: code, Message: message}
}

// Newf creates a ResolveError with a formatted message.
func Newf(code Code, format string, args ...interface{}) *ResolveError {
	return &ResolveError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a ResolveError that records an underlying cause.
func Wrap(code Code, message string, cause error) *ResolveError {
	return &ResolveError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ResolveError) Unwrap() error {
	return e.cause
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var re *ResolveError
	if stderrors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsNotFound reports whether err is a confirmed "not found" result.
func IsNotFound(err error) bool {
	return HasCode(err, NotFound)
}

// IsInvalidRequest reports whether err was caused by malformed caller input.
func IsInvalidRequest(err error) bool {
	return HasCode(err, InvalidRequest)
}
