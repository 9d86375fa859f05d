package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// Transport-level failures reported by the follower API client
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"

	// Handler-level failures shown to the end user
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeUpstream   ErrorType = "upstream"
	ErrorTypeNoData     ErrorType = "no_data"
	ErrorTypeCorrupt    ErrorType = "corrupt_state"
	ErrorTypeStorage    ErrorType = "storage"
)

// Error represents an API or handler error with type information.
// Message is safe to show to the end user; Err keeps the underlying cause.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error (code %d): %s: %v", e.Type, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without an underlying cause
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap creates an Error that keeps err as its cause
func Wrap(errorType ErrorType, message string, err error) *Error {
	e := &Error{Type: errorType, Message: message, Err: err}
	if inner, ok := err.(*Error); ok {
		e.Code = inner.Code
	}
	return e
}

// TypeForStatus classifies a non-200 upstream HTTP status
func TypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

// HTTPStatus returns the status the web surface answers with for an error type
func HTTPStatus(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNoData:
		return http.StatusOK
	case ErrorTypeCorrupt, ErrorTypeStorage:
		return http.StatusInternalServerError
	case ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
