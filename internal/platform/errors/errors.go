// Package errors provides the coded error type shared by every lottery stage
package errors

// Import this package as perr

import (
	"context"
	stderrs "errors"
	"fmt"
)

// ErrorCode classifies a failure for the caller-facing layer
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodeFetch is for a single page request that failed or returned a malformed body
	ErrorCodeFetch

	// ErrorCodePartialFetch is for an aggregation aborted after a page failure
	ErrorCodePartialFetch

	// ErrorCodeValidation is for malformed parameters, reward specs and input files
	ErrorCodeValidation

	// ErrorCodeCapacity is for a winner count the candidate pool cannot satisfy
	ErrorCodeCapacity

	// ErrorCodeCanceled is for runs stopped by the caller
	ErrorCodeCanceled

	// ErrorCodeConfig is for bad process configuration
	ErrorCodeConfig
)

var codeNames = map[ErrorCode]string{
	ErrorCodeUnknown:      "unknown",
	ErrorCodeFetch:        "fetch",
	ErrorCodePartialFetch: "partial_fetch",
	ErrorCodeValidation:   "validation",
	ErrorCodeCapacity:     "capacity",
	ErrorCodeCanceled:     "canceled",
	ErrorCodeConfig:       "config",
}

// String returns the stable name of the code
func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "unknown"
}

// ExitCode maps an ErrorCode onto a process exit status for the CLI
func ExitCode(c ErrorCode) int {
	switch c {
	case ErrorCodeValidation, ErrorCodeConfig:
		return 2
	case ErrorCodeCapacity:
		return 3
	case ErrorCodeFetch, ErrorCodePartialFetch:
		return 4
	case ErrorCodeCanceled:
		return 130
	default:
		return 1
	}
}

// Error carries a message for humans, a code for machines, and optionally
// the offending field and the operation that failed
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the operation label, if set
func (e *Error) Op() string { return e.op }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf extracts the outermost ErrorCode from err, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether any *Error in err's chain has the given code
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.code == code {
			return true
		}
		err = stderrs.Unwrap(err)
	}
	return false
}

// FieldOf returns the first non-empty field found in err's chain
func FieldOf(err error) string {
	for err != nil {
		if e, ok := err.(*Error); ok && e.field != "" {
			return e.field
		}
		err = stderrs.Unwrap(err)
	}
	return ""
}

// WithField attaches a field to an *Error (copy-on-write). Any other error,
// including one that merely wraps an *Error, is returned unchanged
func WithField(err error, field string) error {
	if e, ok := err.(*Error); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error (copy-on-write). Foreign errors are returned unchanged
func WithOp(err error, op string) error {
	if e, ok := err.(*Error); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// Sugar

// Fetchf returns a fetch error
func Fetchf(format string, a ...any) error { return Newf(ErrorCodeFetch, format, a...) }

// Validationf returns a validation error
func Validationf(format string, a ...any) error { return Newf(ErrorCodeValidation, format, a...) }

// Capacityf returns a capacity error
func Capacityf(format string, a ...any) error { return Newf(ErrorCodeCapacity, format, a...) }

// Configf returns a configuration error
func Configf(format string, a ...any) error { return Newf(ErrorCodeConfig, format, a...) }

// FromContext converts a context error into a Canceled error; any other error passes through
func FromContext(err error) error {
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrorCodeCanceled, "run canceled")
	}
	return err
}
