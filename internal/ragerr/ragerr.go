// Package ragerr classifies failures across the engine into a closed set of
// kinds so callers can branch on cause rather than on error strings.
package ragerr

import (
	"errors"
	"fmt"
)

// Kind is a coarse failure classification shared by every component.
type Kind string

const (
	InvalidArgument   Kind = "invalid_argument"
	NotFound          Kind = "not_found"
	Timeout           Kind = "timeout"
	Cancelled         Kind = "cancelled"
	Transport         Kind = "transport"
	ToolExecution     Kind = "tool_execution"
	EmbeddingFailure  Kind = "embedding_failure"
	GenerationFailure Kind = "generation_failure"
	IndexMismatch     Kind = "index_mismatch"
	Capacity          Kind = "capacity"
	Internal          Kind = "internal"
)

// severityRank orders kinds by how informative they are when a caller must
// pick one error out of several to surface (§7: "Timeout over Transport over
// Internal").
var severityRank = map[Kind]int{
	InvalidArgument:   100,
	IndexMismatch:     95,
	ToolExecution:     80,
	EmbeddingFailure:  80,
	GenerationFailure: 80,
	Timeout:           70,
	Transport:         60,
	Capacity:          55,
	Cancelled:         50,
	NotFound:          40,
	Internal:          10,
}

// Error is the typed error carried across component boundaries.
type Error struct {
	Kind      Kind
	Message   string
	RequestID string
	cause     error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying cause, preserving it for
// errors.Is/As.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithRequestID returns a copy of e annotated with a request id, for the
// user-visible {kind, message, request_id} error response (§7).
func (e *Error) WithRequestID(id string) *Error {
	cp := *e
	cp.RequestID = id
	return &cp
}

// ClassifyOf extracts the Kind of err, defaulting to Internal if err is not
// (or does not wrap) a *Error. Grounded on tarsy's ClassifyError, which maps
// arbitrary transport/tool failures onto a fixed taxonomy at the boundary
// rather than letting raw errors leak past a component.
func ClassifyOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Matches reports whether err classifies to this kind, directly or through
// wrapping.
func (k Kind) Matches(err error) bool {
	return ClassifyOf(err) == k
}

// MostInformative picks the most informative error among several non-nil
// candidates per the router's tie-break policy (§7): Timeout ranks over
// Transport, which ranks over Internal, etc. Nil entries are ignored; nil is
// returned if every candidate is nil.
func MostInformative(errs ...error) error {
	var best error
	bestRank := -1
	for _, err := range errs {
		if err == nil {
			continue
		}
		rank := severityRank[ClassifyOf(err)]
		if rank > bestRank {
			best, bestRank = err, rank
		}
	}
	return best
}

// Retryable reports whether the propagation policy (§7) allows one
// reconnect-and-retry for this error. InvalidArgument and IndexMismatch are
// never retried.
func Retryable(err error) bool {
	switch ClassifyOf(err) {
	case Transport, ToolExecution:
		return true
	default:
		return false
	}
}
