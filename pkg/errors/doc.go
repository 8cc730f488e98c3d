// Package errors provides structured error types for programmatic error
// handling across the application. The error codes form the complete
// failure taxonomy reported by the CLI.
//
// Example usage:
//
//	err := errors.Wrap(
//	    errors.ErrCodeTagExists,
//	    "refusing to overwrite release tag",
//	    cause,
//	)
package errors
