// Package apperrors defines the typed errors shared by the donation catalog
// core. Every failure carries a machine-readable kind and a human-readable
// message; the HTTP layer maps kinds to status codes.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the boundary layer.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors raised outside this package.
	KindUnknown Kind = iota
	// KindValidation marks malformed or missing input, recoverable by the caller.
	KindValidation
	// KindNotFound marks a reference to a product that does not exist.
	KindNotFound
	// KindAuthorization marks a mutation attempted by someone other than the owner.
	KindAuthorization
	// KindAuthentication marks a request whose acting user could not be resolved.
	KindAuthentication
	// KindPersistence marks an unclassified failure from the storage layer.
	KindPersistence
)

// Error is the concrete error type used throughout the core.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors of the same kind, enabling errors.Is checks against
// sentinel instances.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewValidation creates a validation error with the given message.
func NewValidation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFound creates a not-found error with the given message.
func NewNotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewAuthorization creates an authorization error with the given message.
func NewAuthorization(message string) error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NewAuthentication creates an authentication error with the given message.
func NewAuthentication(message string) error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// NewPersistence wraps an opaque storage failure.
func NewPersistence(message string, cause error) error {
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return &Error{Kind: KindPersistence, Message: message, cause: cause}
}

// KindOf reports the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
