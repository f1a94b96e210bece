package llm

import (
	"errors"
	"fmt"
)

// Kind classifies failures at the operation boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindConfiguration:
		return "configuration"
	default:
		return "internal"
	}
}

// Error is returned by every Client operation. Message is safe to show to
// callers; Err keeps the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Op      Operation
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err. Errors not produced by this package are
// internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the caller-facing message for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindConfiguration {
		return e.Message
	}
	return "internal"
}

const msgUnauthenticated = "User must be authenticated"

var failureMessages = map[Operation]string{
	OpGenerateProgram:   "Failed to generate workout program",
	OpRecommendExercise: "Failed to get exercise recommendation",
	OpAnalyzeProgress:   "Failed to analyze progression",
}

func unauthenticated(op Operation) *Error {
	return &Error{Kind: KindUnauthenticated, Op: op, Message: msgUnauthenticated}
}

func internal(op Operation, cause error) *Error {
	return &Error{Kind: KindInternal, Op: op, Message: failureMessages[op], Err: cause}
}
