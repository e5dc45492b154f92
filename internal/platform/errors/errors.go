// Package errors provides a structured error type with wrapping and metadata
package errors

// Import as perr

import (
	stderrs "errors"
	"fmt"
)

// ErrorCode classifies a failure; each code maps to one process exit status
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is for panics recovered at a stage boundary
	ErrorCodePanic

	// ErrorCodeInvalidArgument is for bad input parameters
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is for params that fail validation
	ErrorCodeValidation

	// ErrorCodeMissingColumn is for a required column absent from a table
	ErrorCodeMissingColumn

	// ErrorCodeSourceUnavailable is for input tables that cannot be loaded
	ErrorCodeSourceUnavailable

	// ErrorCodeProcessing is for failures mid transform or while persisting
	ErrorCodeProcessing
)

var codes = [...]struct {
	name string
	exit int
}{
	ErrorCodeUnknown:           {"unknown", 1},
	ErrorCodePanic:             {"panic", 1},
	ErrorCodeInvalidArgument:   {"invalid_argument", 2},
	ErrorCodeValidation:        {"validation", 2},
	ErrorCodeSourceUnavailable: {"source_unavailable", 3},
	ErrorCodeMissingColumn:     {"missing_column", 4},
	ErrorCodeProcessing:        {"processing", 5},
}

// String returns the stable name of the code, used as a log field
func (c ErrorCode) String() string {
	if int(c) < len(codes) {
		return codes[c].name
	}
	return codes[ErrorCodeUnknown].name
}

// ExitCodeOf returns the process exit status for c
func ExitCodeOf(c ErrorCode) int {
	if int(c) < len(codes) {
		return codes[c].exit
	}
	return 1
}

// Error carries a code, a message and an optional field (column or params key)
// and op (the step that failed), wrapping orig
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Error renders "msg: orig"
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return e.msg + ": " + e.orig.Error()
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Op returns the failing step, if set
func (e *Error) Op() string { return e.op }

// Message returns the message without the wrapped cause
func (e *Error) Message() string { return e.msg }

// As returns the outermost *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf extracts the code from any error; foreign errors are Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// ExitCode returns the process exit status for err; 0 for nil
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return ExitCodeOf(CodeOf(err))
}

// with copies the *Error in err and applies fn; foreign errors pass through
func with(err error, fn func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	fn(&c)
	return &c
}

// WithField returns a copy of err with field set
func WithField(err error, field string) error {
	return with(err, func(e *Error) { e.field = field })
}

// WithOp returns a copy of err with op set
func WithOp(err error, op string) error {
	return with(err, func(e *Error) { e.op = op })
}

// New returns an *Error with code and msg
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf is New with a formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns an *Error with code and msg wrapping orig
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf is Wrap with a formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// MissingColumn reports column absent from a table
func MissingColumn(column string) error {
	return &Error{code: ErrorCodeMissingColumn, msg: fmt.Sprintf("missing column %q", column), field: column}
}

// SourceUnavailablef wraps orig as a source unavailable error; orig may be nil
func SourceUnavailablef(orig error, format string, a ...any) error {
	return Wrapf(orig, ErrorCodeSourceUnavailable, format, a...)
}

// Processingf wraps orig as a processing error; orig may be nil
func Processingf(orig error, format string, a ...any) error {
	return Wrapf(orig, ErrorCodeProcessing, format, a...)
}

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// Validationf returns a validation error
func Validationf(format string, a ...any) error { return Newf(ErrorCodeValidation, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }
