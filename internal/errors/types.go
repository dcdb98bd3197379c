package errors

import "fmt"

// ErrorType represents the category of error
type ErrorType int

const (
	ErrorTypeTransport ErrorType = iota
	ErrorTypeAuthentication
	ErrorTypeSessionExpired
	ErrorTypeValidation
	ErrorTypeServer
	ErrorTypeStorage
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeTransport:
		return "transport"
	case ErrorTypeAuthentication:
		return "authentication"
	case ErrorTypeSessionExpired:
		return "session_expired"
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeServer:
		return "server"
	case ErrorTypeStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType
	Message    string
	Code       string
	StatusCode int // HTTP status, 0 when no response was received
	Cause      error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError of the same type and code.
func (e *AppError) Is(target error) bool {
	if appErr, ok := target.(*AppError); ok {
		return e.Type == appErr.Type && e.Code == appErr.Code
	}
	return false
}

// IsType checks if this error is of the specified type
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}
