package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider operations.
var (
	// ErrUnknownProvider indicates the requested provider is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrUnavailable indicates the inference backend could not be reached or started.
	ErrUnavailable = errors.New("inference backend unavailable")

	// ErrEmptyOutput indicates the backend finished without generating text.
	ErrEmptyOutput = errors.New("backend returned empty output")

	// ErrContextTooLong indicates the prompt exceeds the model context window.
	ErrContextTooLong = errors.New("prompt exceeds context window")

	// ErrInvalidRequest indicates the request is malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrCommandNotFound indicates the backend binary was not found in PATH.
	// It wraps ErrUnavailable.
	ErrCommandNotFound = fmt.Errorf("%w: command not found", ErrUnavailable)
)

// Error wraps provider errors with context.
type Error struct {
	Provider string // Provider name ("local", "command")
	Op       string // Operation that failed ("init", "complete")
	Err      error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new provider error.
func NewError(provider, op string, err error) *Error {
	return &Error{
		Provider: provider,
		Op:       op,
		Err:      err,
	}
}

// IsUnavailable checks if an error means the backend could not be used at all.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsEmptyOutput checks if an error means the backend produced nothing.
func IsEmptyOutput(err error) bool {
	return errors.Is(err, ErrEmptyOutput)
}
