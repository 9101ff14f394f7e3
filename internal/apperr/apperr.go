// Package apperr is the error taxonomy for the whole process. Every error
// that crosses a package boundary carries a stable machine-readable Code so
// the protocol front ends can report failures without string matching.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Code identifies an error category on the wire.
type Code string

const (
	// CodeInvalidRequest covers malformed input: missing fields, bad
	// identifiers, unknown operations.
	CodeInvalidRequest Code = "INVALID_REQUEST"

	// CodePathNotAllowed means the resolved database path is outside
	// every allowed directory.
	CodePathNotAllowed Code = "PATH_NOT_ALLOWED"

	// CodeDBOpenFailed means the worker could not open its database.
	// Fatal for that worker: it retires and rejects everything.
	CodeDBOpenFailed Code = "DB_OPEN_FAILED"

	// CodeSQL is a prepare or execute failure from the engine. Non-fatal;
	// returned to the one caller whose statement failed.
	CodeSQL Code = "SQL_ERROR"

	// CodeNotReadonly means the read-only gate rejected a statement that
	// compiles to a write.
	CodeNotReadonly Code = "NOT_READONLY"

	// CodeTimeout is a caller-imposed deadline expiring. The core never
	// generates this on its own.
	CodeTimeout Code = "TIMEOUT"

	// CodeIO is a filesystem or stdio failure.
	CodeIO Code = "IO_ERROR"

	// CodeInternal covers channel and lock failures: the worker is
	// unavailable, not the process.
	CodeInternal Code = "INTERNAL"
)

// Error is the one concrete error type crossing package boundaries.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps cause available to errors.Is/As while fixing the code.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

func InvalidRequest(format string, args ...any) *Error {
	return New(CodeInvalidRequest, format, args...)
}

func PathNotAllowed(path string) *Error {
	return New(CodePathNotAllowed, "path not allowed: %s", path)
}

func OpenFailed(path string, cause error) *Error {
	return Wrap(CodeDBOpenFailed, cause, "failed to open database: %s", path)
}

func SQL(cause error) *Error {
	return Wrap(CodeSQL, cause, "sql error")
}

func NotReadonly() *Error {
	return New(CodeNotReadonly, "query is not read-only")
}

func Timeout() *Error {
	return New(CodeTimeout, "timeout")
}

func IO(cause error) *Error {
	return Wrap(CodeIO, cause, "io error")
}

func Internal(format string, args ...any) *Error {
	return New(CodeInternal, format, args...)
}

// CodeOf extracts the machine code from any error. Context deadline errors
// map to TIMEOUT; everything unrecognized is INTERNAL.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	return CodeInternal
}
