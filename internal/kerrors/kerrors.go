// Package kerrors defines Kaban's error taxonomy: stable kinds, numeric
// exit codes, and optional structured payloads (a cycle path, a blocker
// list, a WIP count) that front-ends can render without string-matching
// a message.
package kerrors

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure. Values are stable; do not renumber.
type Kind int

const (
	General Kind = iota + 1
	NotFound
	Conflict
	Validation
	Blocked
	Cycle
	Duplicate
	AmbiguousID
	IO
)

// ExitCode returns the numeric exit code associated with a Kind (§4.8).
func (k Kind) ExitCode() int {
	return int(k)
}

func (k Kind) String() string {
	switch k {
	case General:
		return "GENERAL"
	case NotFound:
		return "NOT_FOUND"
	case Conflict:
		return "CONFLICT"
	case Validation:
		return "VALIDATION"
	case Blocked:
		return "BLOCKED"
	case Cycle:
		return "CYCLE"
	case Duplicate:
		return "DUPLICATE"
	case AmbiguousID:
		return "AMBIGUOUS_ID"
	case IO:
		return "IO"
	default:
		return "UNKNOWN"
	}
}

// Error is the concrete error type returned by every Kaban service call
// that fails for a domain reason. Store-level failures (SQL_FAILED,
// BUSY_AFTER_RETRY, MIGRATION_FAILED, STORE_OPEN_FAILED) also use this
// type with Kind General or IO as appropriate, set by the store layer.
type Error struct {
	Kind    Kind
	Message string
	// Payload carries structured detail: a *CyclePayload, *BlockedPayload,
	// *WIPPayload, or *AmbiguousPayload depending on Kind. Nil when the
	// message alone suffices.
	Payload any
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// CyclePayload accompanies a Cycle error and names the path that would
// close a loop, e.g. ["#3", "#1", "#2", "#3"].
type CyclePayload struct {
	Path []string
}

// BlockedPayload accompanies a Blocked error from moveTask.
type BlockedPayload struct {
	BlockerIDs []string
}

// WIPPayload accompanies a Validation error raised by WIP enforcement.
type WIPPayload struct {
	ColumnID string
	Limit    int
	Current  int
}

// AmbiguousPayload accompanies an AmbiguousID error and lists every
// candidate the prefix matched.
type AmbiguousPayload struct {
	Prefix     string
	Candidates []string
}

// New builds an Error with no payload and no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error that chains to cause via errors.Unwrap.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithPayload attaches a structured payload and returns the receiver for
// chaining at the call site.
func (e *Error) WithPayload(p any) *Error {
	e.Payload = p
	return e
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Kind == kind
	}
	return false
}

// KindOf extracts the Kind of err, defaulting to General when err is not
// a *Error.
func KindOf(err error) Kind {
	var ke *Error
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return General
}
