package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error
type Kind string

const (
	// KindValidation indicates malformed or missing input, rejected before any write
	KindValidation Kind = "validation"
	// KindConflict indicates a uniqueness violation (duplicate invitation, role name, membership)
	KindConflict Kind = "conflict"
	// KindPermissionDenied indicates an access guard rejection
	KindPermissionDenied Kind = "permission_denied"
	// KindNotFound indicates a referenced entity does not exist
	KindNotFound Kind = "not_found"
)

// Error is an application error with a kind and an optional wrapped cause
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, &Error{Kind: KindNotFound}) works across wrapping
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New creates an application error with the given kind and message
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates an application error with a formatted message
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an application error wrapping an underlying cause
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf returns the kind of err, or "" if err is not an application error
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool {
	return KindOf(err) == KindPermissionDenied
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
