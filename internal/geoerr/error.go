package geoerr

import (
	"errors"
	"fmt"
)

// Error is the concrete error type returned across the loader, R-tree, and
// cache packages. It carries a stable Code plus freeform detail fields for
// diagnostics, and preserves the underlying cause through Unwrap.
type Error struct {
	cause   error
	message string
	code    Code
	details map[string]any
}

// New creates an Error with the given code and message and no cause.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap creates an Error with the given code and message, wrapping cause so
// that errors.Is/errors.As can still reach it.
func Wrap(cause error, code Code, message string) *Error {
	return &Error{cause: cause, code: code, message: message}
}

// WithDetail attaches a key/value pair of diagnostic context and returns the
// same *Error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the error's classification.
func (e *Error) Code() Code {
	return e.code
}

// Details returns the attached diagnostic context, or an empty map.
func (e *Error) Details() map[string]any {
	if e.details == nil {
		return map[string]any{}
	}
	return e.details
}

// Is reports whether target is an *Error with the same Code, so that
// errors.Is(err, geoerr.New(geoerr.CodeNotFound, "")) style checks work.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.code == e.code
	}
	return false
}

// CodeOf extracts the Code from err's chain, or returns "" if err does not
// wrap a *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ""
}
