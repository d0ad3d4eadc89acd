package services

import (
	"errors"
	"fmt"
	"net/http"

	"userachievements/analytics"
	"userachievements/repository"
)

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	StatusCode int    `json:"-"`
	Cause      error  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

const (
	TypeNotFound               = "NOT_FOUND"
	TypeConflict               = "CONFLICT"
	TypeValidation             = "VALIDATION_ERROR"
	TypeStoreUnavailable       = "STORE_UNAVAILABLE"
	TypeTranslationUnavailable = "TRANSLATION_UNAVAILABLE"
	TypeInternal               = "INTERNAL_ERROR"
)

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       TypeConflict,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusConflict,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewStoreUnavailableError creates an error for an unreachable or slow store
func NewStoreUnavailableError(cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeStoreUnavailable,
		Message:    "Data store unavailable",
		StatusCode: http.StatusServiceUnavailable,
		Cause:      cause,
	}
}

// NewTranslationUnavailableError wraps a localization backend failure.
// It is logged, never returned to clients.
func NewTranslationUnavailableError(cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeTranslationUnavailable,
		Message:    "Translation unavailable",
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType reports whether err is a ServiceError of the given type
func IsType(err error, errType string) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Type == errType
}

// storeError converts repository and analytics errors. notFound is the
// message used when the query matched nothing.
func storeError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, analytics.ErrNoRows):
		return NewNotFoundError(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return NewConflictError("User already has this achievement", "ACHIEVEMENT_ALREADY_SET")
	case errors.Is(err, repository.ErrMissingReference):
		return NewNotFoundError("User or achievement not found")
	case errors.Is(err, repository.ErrUnavailable):
		return NewStoreUnavailableError(err)
	default:
		return NewInternalError("Unexpected error", err)
	}
}
