// Package errors defines the error kinds surfaced by taskr: transport failures,
// authentication failures, expired sessions, validation failures, server errors
// and local storage failures.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is the sentinel for a session that could not be refreshed.
// Compare with errors.Is; any AppError of type ErrorTypeSessionExpired matches.
var ErrSessionExpired = &AppError{Type: ErrorTypeSessionExpired, Code: "SESSION_EXPIRED"}

// NewTransportError wraps a failure to reach the API at all.
func NewTransportError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransport,
		Message: fmt.Sprintf("request failed: %s", operation),
		Code:    "TRANSPORT_ERROR",
		Cause:   cause,
	}
}

// NewStatusError classifies a non-2xx API response by its status code.
func NewStatusError(operation string, status int) *AppError {
	e := &AppError{
		Message:    fmt.Sprintf("%s: %d %s", operation, status, http.StatusText(status)),
		StatusCode: status,
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Type = ErrorTypeAuthentication
		e.Code = "UNAUTHORIZED"
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Type = ErrorTypeValidation
		e.Code = "REJECTED"
	default:
		e.Type = ErrorTypeServer
		e.Code = "SERVER_ERROR"
	}
	return e
}

// NewDecodeError reports a 2xx response whose body could not be read.
func NewDecodeError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeServer,
		Message: fmt.Sprintf("decode response: %s", operation),
		Code:    "BAD_RESPONSE",
		Cause:   cause,
	}
}

// NewSessionExpiredError reports that the refresh token was rejected or missing.
func NewSessionExpiredError(cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeSessionExpired,
		Message: "session expired",
		Code:    "SESSION_EXPIRED",
		Cause:   cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
	}
}

// NewStorageError wraps a local store failure.
func NewStorageError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeStorage,
		Message: fmt.Sprintf("storage operation failed: %s", operation),
		Code:    "STORAGE_ERROR",
		Cause:   cause,
	}
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.StatusCode
	}
	return 0
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation:
			return appErr.Message
		case ErrorTypeTransport:
			return "Could not reach the task server."
		case ErrorTypeAuthentication:
			return "Not authorized."
		case ErrorTypeSessionExpired:
			return "Session expired. Please log in again."
		case ErrorTypeServer:
			if appErr.StatusCode == 0 {
				return "Unexpected response from the task server."
			}
			return fmt.Sprintf("Server error (HTTP %d).", appErr.StatusCode)
		case ErrorTypeStorage:
			return "Local storage error."
		default:
			return "An unexpected error occurred."
		}
	}
	return err.Error()
}
