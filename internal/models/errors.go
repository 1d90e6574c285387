package models

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these to classify any error returned
// by the services or repositories.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrLimitExceeded = errors.New("limit exceeded")
	ErrConflict      = errors.New("conflict")
	ErrEmptyResult   = errors.New("nothing to act on")
)

// Error is a caller-correctable failure with enough detail to fix the request.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Field names the offending input field, if any.
	Field string
	// Message is safe to show to the caller.
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return e.Kind.Error()
}

// Unwrap returns the kind so errors.Is matches the sentinel.
func (e *Error) Unwrap() error { return e.Kind }

// Validation reports a missing or invalid field.
func Validation(field, msg string) error {
	return &Error{Kind: ErrValidation, Field: field, Message: msg}
}

// NotFound reports an absent owner or record.
func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

// Forbidden reports a caller acting on a record they do not own.
func Forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

// LimitExceeded reports a reached cap.
func LimitExceeded(msg string) error {
	return &Error{Kind: ErrLimitExceeded, Message: msg}
}

// Conflict reports a storage-level identity conflict.
func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// EmptyResult reports a bulk operation that had nothing to act on.
func EmptyResult(msg string) error {
	return &Error{Kind: ErrEmptyResult, Message: msg}
}
