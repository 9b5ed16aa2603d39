package schema

import (
	"strings"
)

// Issue codes reported by Parse.
const (
	CodeInvalidType         = "invalid_type"
	CodeRequired            = "required"
	CodeTooSmall            = "too_small"
	CodeTooBig              = "too_big"
	CodeInvalidString       = "invalid_string"
	CodeInvalidEnum         = "invalid_enum_value"
	CodeInvalidLiteral      = "invalid_literal"
	CodeInvalidDate         = "invalid_date"
	CodeUnrecognizedKeys    = "unrecognized_keys"
	CodeInvalidUnion        = "invalid_union"
	CodeInvalidIntersection = "invalid_intersection_types"
	CodeNotInteger          = "not_integer"
	CodeNever               = "never"
	CodeCustom              = "custom"
)

// Issue describes one reason a value was rejected.
type Issue struct {
	Path    []string `json:"path"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
}

// String renders the issue as "path: message".
func (i Issue) String() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return strings.Join(i.Path, ".") + ": " + i.Message
}

// ValidationError is returned by Parse when a value does not satisfy a schema.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
