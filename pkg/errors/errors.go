// errors.go - Coded errors shared by the rendering packages, the CLI and the HTTP service.
//
// Codes follow a flat naming convention:
//   - INVALID_*: input or preset validation failures
//   - EMPTY_SPRITE: a cutout without any non-transparent pixel
//   - MISSING_ASSET_POOL: a variant needs a background pool that holds no images
//   - INTERNAL_ERROR: unexpected failures, including recovered panics
//
// Usage:
//
//	err := errors.New(errors.ErrCodeEmptySprite, "cutout %q has no opaque pixels", name)
//	if errors.Is(err, errors.ErrCodeEmptySprite) {
//	    // reject the product
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidPreset Code = "INVALID_PRESET"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	ErrCodeEmptySprite      Code = "EMPTY_SPRITE"
	ErrCodeMissingAssetPool Code = "MISSING_ASSET_POOL"
	ErrCodeNotFound         Code = "NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code anywhere in its chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error values
// and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
