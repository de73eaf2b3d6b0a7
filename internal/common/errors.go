// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Ledger errors.
var (
	// ErrValidation marks caller input that is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidReference marks a reference to a category that does not exist.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrNotFound marks a lookup of an id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCategoryInUse marks a category delete that would orphan transactions.
	ErrCategoryInUse = errors.New("category in use")
	// ErrStore marks a failure of the underlying persistence layer.
	ErrStore = errors.New("store failure")

	// ErrInvalidConfig marks configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Reason string
	Fields []string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Reason != "" && len(e.Fields) > 0:
		return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
	case e.Reason != "":
		return e.Reason
	case len(e.Fields) > 0:
		return "missing required fields: " + strings.Join(e.Fields, ", ")
	default:
		return ErrValidation.Error()
	}
}

// Is makes errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for the given fields.
func NewValidationError(reason string, fields ...string) error {
	return &ValidationError{Reason: reason, Fields: fields}
}

// MissingFields creates a ValidationError naming absent required fields.
func MissingFields(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// InvalidReference wraps ErrInvalidReference with the offending id.
func InvalidReference(kind, id string) error {
	return fmt.Errorf("%w: %s %q does not exist", ErrInvalidReference, kind, id)
}

// NotFound wraps ErrNotFound with the missing id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

// StoreError wraps an infrastructure failure with ErrStore, keeping the cause.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

// ValidationFields returns the fields carried by a ValidationError, if any.
func ValidationFields(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
