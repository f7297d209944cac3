// Package domain contains the rotation state model, the rotation engine and
// the edit rules applied to a quote list.
//
// Errors here describe rejected edits and unusable collaborators. Adapters
// map them to HTTP statuses and CLI exit codes. The rotation engine itself
// never returns errors: malformed input is absorbed by Normalize.
package domain

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is. The typed errors below unwrap to them.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("invalid")
	ErrUnavailable = errors.New("unavailable")
)

// NotFoundError names a quote index or blob key that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}

	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError returns a *NotFoundError.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError is an edit rejected by a rule. Value, when set, is the
// offending input and is echoed in the message.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = "invalid " + e.Field + ": " + msg
	}

	if e.Value != nil {
		msg = fmt.Sprintf("%s (got %v)", msg, e.Value)
	}

	return msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError returns a *ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue returns a *ValidationError carrying value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// UnavailableError reports a collaborator, the state store or the event
// broker, that could not serve a call.
type UnavailableError struct {
	Service string
	Reason  string
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return e.Service + " unavailable"
	}

	return fmt.Sprintf("%s unavailable: %s", e.Service, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// NewUnavailableError returns an *UnavailableError.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidation reports whether err wraps ErrValidation.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsUnavailable reports whether err wraps ErrUnavailable.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
