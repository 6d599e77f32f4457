// Package apperrors is the error taxonomy shared by the tunnel and relay
// components. Handlers map an error onto an HTTP status with HTTPStatus.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindExternalTool
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExternalTool:
		return "external_tool"
	case KindIO:
		return "io"
	default:
		return "internal"
	}
}

// Error carries a kind, an operator-facing message and, for external tool
// failures, the tool's exit code and output verbatim.
type Error struct {
	Kind     Kind
	Message  string
	Tool     string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindExternalTool:
		return fmt.Sprintf("%s: %s exited with code %d: %s", e.Message, e.Tool, e.ExitCode, e.Stderr)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports bad client input detected before any side effect.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing config file or ledger record.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a create-time collision that survived every retry.
func Conflict(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...), Err: err}
}

// IO wraps a filesystem failure.
func IO(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindIO, Message: fmt.Sprintf(format, args...), Err: err}
}

// ExternalTool reports a non-zero or unexpected exit from a shelled-out tool.
func ExternalTool(tool string, exitCode int, stdout, stderr, message string) *Error {
	return &Error{
		Kind:     KindExternalTool,
		Message:  message,
		Tool:     tool,
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// HTTPStatus maps err onto the status code handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
