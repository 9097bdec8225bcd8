// Package domain defines the error kinds and shared helpers of the catalog
// column-identity layer.
package domain

import "fmt"

// LookupError indicates a column could not be found by display name or by
// identifier. It signals stale schema input or corrupted metadata and is
// never retried.
type LookupError struct {
	Message string
}

func (e *LookupError) Error() string { return e.Message }

// ParseError indicates persisted expression text is not syntactically valid.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string { return e.Message }

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigurationError indicates a programming-contract violation, such as
// resolving a deferred column reference before its table is attached.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError indicates a catalog object was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate table).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ErrLookup creates a LookupError with a formatted message.
func ErrLookup(format string, args ...interface{}) *LookupError {
	return &LookupError{Message: fmt.Sprintf(format, args...)}
}

// ErrParse creates a ParseError wrapping the underlying parser error.
func ErrParse(err error, format string, args ...interface{}) *ParseError {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg += ": " + err.Error()
	}
	return &ParseError{Message: msg, Err: err}
}

// ErrConfiguration creates a ConfigurationError with a formatted message.
func ErrConfiguration(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}
