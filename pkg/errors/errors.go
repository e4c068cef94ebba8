// Package errors provides coded errors for floorview.
//
// Library code wraps with fmt.Errorf and %w; the process edges (config
// loading, floor sources, HTTP handlers, the CLI) attach a [Code] so callers
// can branch on failure class without matching strings.
//
// # Codes
//
//   - INVALID_*: rejected input (config, patch payloads, layouts, ids)
//   - *NOT_FOUND: unknown floor, session or file
//   - NETWORK_ERROR, TIMEOUT, TRANSPORT_CLOSED: push channel and source I/O
//   - CLOSED: use of an unmounted viewer
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	if err := errors.ValidateFloorID(id); err != nil {
//	    return err
//	}
//	return errors.Wrap(errors.ErrCodeFloorNotFound, err, "floor %q", id)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error class.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidPatch   Code = "INVALID_PATCH"
	ErrCodeInvalidLayout  Code = "INVALID_LAYOUT"
	ErrCodeInvalidFloorID Code = "INVALID_FLOOR_ID"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFloorNotFound   Code = "FLOOR_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	ErrCodeNetwork         Code = "NETWORK_ERROR"
	ErrCodeTimeout         Code = "TIMEOUT"
	ErrCodeTransportClosed Code = "TRANSPORT_CLOSED"
	ErrCodeClosed          Code = "CLOSED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a code, a human message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error that wraps cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix when err is coded.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNotFound reports whether err belongs to any of the not-found codes.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeFloorNotFound, ErrCodeFileNotFound, ErrCodeSessionNotFound:
		return true
	}
	return false
}
