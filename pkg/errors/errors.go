/*
Copyright © 2025 ReleaseKit Authors
SPDX-License-Identifier: Apache-2.0
*/

package errors

import "fmt"

// ErrorCode represents a structured error classification. The codes are
// the complete error taxonomy of the tool; every failure surfaced to
// the user carries exactly one of them.
type ErrorCode string

const (
	// ErrCodeInvalidVersion indicates an unparsable version string.
	// Always surfaced to the caller, never guessed around.
	ErrCodeInvalidVersion ErrorCode = "INVALID_VERSION_FORMAT"
	// ErrCodeUnsupportedTransition indicates a bump action that is not
	// legal for the current version state.
	ErrCodeUnsupportedTransition ErrorCode = "UNSUPPORTED_BUMP_TRANSITION"
	// ErrCodeTagExists indicates the release tag already exists.
	ErrCodeTagExists ErrorCode = "TAG_ALREADY_EXISTS"
	// ErrCodeDirtyRepository indicates uncommitted changes in the
	// working tree where the operation disallows them.
	ErrCodeDirtyRepository ErrorCode = "DIRTY_REPOSITORY"
	// ErrCodeVcsUnavailable indicates the VCS collaborator cannot be reached.
	ErrCodeVcsUnavailable ErrorCode = "VCS_UNAVAILABLE"
	// ErrCodeManifest indicates a failure reading or writing the project manifest.
	ErrCodeManifest ErrorCode = "MANIFEST"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// StructuredError provides structured error information. It includes an
// error code for programmatic handling, a human-readable message, the
// underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new StructuredError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}
