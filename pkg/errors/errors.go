package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the client
type ErrorType string

const (
	// ErrorTypeValidation indicates input rejected before any request was sent
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeNetwork indicates a transport failure talking to the backend
	ErrorTypeNetwork ErrorType = "NETWORK"

	// ErrorTypeCanceled indicates the request was aborted by its context
	ErrorTypeCanceled ErrorType = "CANCELED"

	// ErrorTypeServer indicates the backend answered with a non-2xx status
	ErrorTypeServer ErrorType = "SERVER"

	// ErrorTypeNotFound indicates the backend answered 404
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeUnauthorized indicates a missing or rejected session
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeGuard indicates a local state-machine guard short-circuited the action
	ErrorTypeGuard ErrorType = "GUARD"

	// ErrorTypeInternal indicates a client-side failure (decoding, encoding)
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	// Status is the HTTP status for server-side rejections, zero otherwise.
	Status int
	Err    error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewNetworkError creates a new transport error
func NewNetworkError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeNetwork,
		Message: message,
		Err:     err,
	}
}

// NewCanceledError creates a new cancellation error
func NewCanceledError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeCanceled,
		Message: message,
		Err:     err,
	}
}

// NewServerError creates an error for a non-2xx response. 404 and 401/403
// are mapped to their dedicated types so callers can branch on them.
func NewServerError(status int, message string) *AppError {
	errType := ErrorTypeServer
	switch status {
	case 404:
		errType = ErrorTypeNotFound
	case 401, 403:
		errType = ErrorTypeUnauthorized
	}
	return &AppError{
		Type:    errType,
		Message: message,
		Status:  status,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Message: message,
	}
}

// NewGuardError creates a new guard violation error
func NewGuardError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeGuard,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsCanceled reports whether err is an aborted request. Callers treat these
// as silent: they never update state and are never shown to the user.
func IsCanceled(err error) bool {
	return IsType(err, ErrorTypeCanceled)
}

// UserMessage returns the text to show for err. Transport and internal
// failures collapse to generic messages; everything else shows its own.
func UserMessage(err error) string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return "something went wrong, please try again"
	}
	switch appErr.Type {
	case ErrorTypeNetwork:
		return "could not reach the server, please try again"
	case ErrorTypeInternal:
		return "an unexpected error occurred, please try again"
	default:
		return appErr.Message
	}
}
