// Package types defines the core records (Node, Edge, VectorEntry, CacheEntry)
// and the closed error taxonomy shared by every CodeGraph component.
package types

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the closed error taxonomy described in the error
// handling design: every failure surfaced to a peer carries one of these.
type ErrorKind string

const (
	KindInvalidArgument ErrorKind = "InvalidArgument"
	KindNotFound        ErrorKind = "NotFound"
	KindStorageError    ErrorKind = "StorageError"
	KindVectorError     ErrorKind = "VectorError"
	KindCacheError      ErrorKind = "CacheError"
	KindLLMError        ErrorKind = "LLMError"
	KindToolError       ErrorKind = "ToolError"
	KindTimeout         ErrorKind = "Timeout"
	KindCancelled       ErrorKind = "Cancelled"
	KindInternal        ErrorKind = "Internal"
)

// Error is the typed error carried across every component boundary. It
// always has a Kind so callers at the MCP transport can render
// { kind, message } without inspecting error strings.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an *Error with no wrapped cause.
func New(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an *Error with a formatted message.
func Newf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error that preserves cause via errors.Unwrap.
func Wrap(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err (or anything it wraps) is a *Error of the given Kind.
func Is(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, and
// KindInternal otherwise — the fallback the MCP transport uses for
// unclassified errors so Internal details never leak verbatim.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Sentinel causes used by callers that only need the Kind, not a custom message.
var (
	ErrNotFound         = New(KindNotFound, "entity not found")
	ErrInvalidArgument  = New(KindInvalidArgument, "invalid argument")
	ErrCancelled        = New(KindCancelled, "operation cancelled")
	ErrTimeout          = New(KindTimeout, "operation timed out")
)
