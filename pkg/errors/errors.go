package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindInternal
)

// FieldError carries field-level validation detail
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError represents an application error
type AppError struct {
	Kind    Kind         `json:"-"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"errors,omitempty"`
	Err     error        `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func Validation(message string, fields ...FieldError) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
		Fields:  fields,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Message: message,
	}
}

func Authentication(message string) *AppError {
	return &AppError{
		Kind:    KindAuthentication,
		Message: message,
	}
}

func Authorization(message string) *AppError {
	return &AppError{
		Kind:    KindAuthorization,
		Message: message,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Classify wraps err as Internal unless it is already an AppError. Service
// operations use it to keep raw store failures from escaping to handlers.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
