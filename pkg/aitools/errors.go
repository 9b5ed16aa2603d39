package aitools

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned for an unknown tool name.
	ErrNotFound = errors.New("tool not found")
	// ErrForbidden is returned when the mode, role or user gate rejects a call.
	ErrForbidden = errors.New("tool execution forbidden")
	// ErrValidation is returned when arguments do not satisfy the tool schema.
	ErrValidation = errors.New("invalid tool arguments")
)

// Rejection reasons, used in logs, audit events and metrics.
const (
	ReasonNotFound     = "not_found"
	ReasonModeDisabled = "mode_disabled"
	ReasonModeReadOnly = "mode_readonly"
	ReasonRole         = "role_not_allowed"
	ReasonMissingUser  = "missing_user"
	ReasonValidation   = "validation"
)

const forbiddenMessage = "you are not allowed to run this tool"

// Error is returned by the Executor for local rejections. Business errors
// from a tool's handler are never wrapped in Error.
type Error struct {
	// Kind is one of ErrNotFound, ErrForbidden or ErrValidation.
	Kind    error
	Tool    string
	Message string
	// Reason is the private cause of a rejection. It is logged and audited
	// but not part of Error().
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Tool)
	}
	return fmt.Sprintf("%s: %s", e.Tool, e.Message)
}

// Is matches the error's Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StatusCode maps the error kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrForbidden:
		return http.StatusForbidden
	case ErrValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func notFound(tool string) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Tool:    tool,
		Message: "unknown tool",
		Reason:  ReasonNotFound,
	}
}

func forbidden(tool, reason string) *Error {
	return &Error{
		Kind:    ErrForbidden,
		Tool:    tool,
		Message: forbiddenMessage,
		Reason:  reason,
	}
}

func invalidArguments(tool string, cause error) *Error {
	return &Error{
		Kind:    ErrValidation,
		Tool:    tool,
		Message: cause.Error(),
		Reason:  ReasonValidation,
		Cause:   cause,
	}
}
