// Package errors provides coded application errors for the ipodb tools.
//
// Services return *Error values; the command maps their code to a process
// exit status:
//
//	lib, err := svc.Load(ctx, path)
//	if err != nil {
//	    os.Exit(errors.ExitCode(err))
//	}
//
// Codes compare with errors.Is against the sentinels:
//
//	if errors.Is(err, errors.ErrNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	CodeValidation        Code = "VALIDATION"
	CodeInternal          Code = "INTERNAL"
)

// Exit statuses. 1 is left for failures without a code.
const (
	exitInternal    = 1
	exitUsage       = 2
	exitNotFound    = 3
	exitUnsupported = 4
)

// ExitCode returns the process exit status for the code.
func (c Code) ExitCode() int {
	switch c {
	case CodeNotFound:
		return exitNotFound
	case CodeUnsupportedFormat:
		return exitUnsupported
	case CodeValidation:
		return exitUsage
	default:
		return exitInternal
	}
}

// Error is an application error with a code, message and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// ExitCode returns the exit status for this error's code.
func (e *Error) ExitCode() int {
	return e.Code.ExitCode()
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	out := *e
	out.Details = details
	return &out
}

// Sentinel errors for use with errors.Is.
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnsupportedFormat = &Error{Code: CodeUnsupportedFormat, Message: "unsupported format"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
)

// NotFoundf creates a not found error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internalf creates an internal error with a formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps err with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// ExitCode returns the exit status for any error: 0 for nil, the code's
// status for an *Error anywhere in the chain, and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return exitInternal
}
