// Package errors provides the structured error type shared by the API client
// and the controllers built on it. Upper layers only ever inspect AppError,
// never transport-specific shapes.
package errors

import (
	stderrors "errors"
	"net/http"
)

// AppError represents a structured error with an error code, a message, the
// optional detail string reported by the server, and the HTTP status code
// (zero when no response was received).
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so that
// errors.Is(err, ErrNotFound) matches any not-found response.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// FromResponse creates an AppError for a non-2xx response.
func FromResponse(sentinel *AppError, statusCode int, message, detail string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Detail:     detail,
		StatusCode: statusCode,
	}
}

// Client-local errors.
var (
	ErrInvalidInput = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
)

// Transport errors. ErrNotFound and ErrValidationFailed are specialisations
// of ErrTransport; see IsTransport.
var (
	ErrTransport        = &AppError{Code: "TRANSPORT_ERROR", Message: "Request failed"}
	ErrNotFound         = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrValidationFailed = &AppError{Code: "VALIDATION_FAILED", Message: "Validation failed", StatusCode: http.StatusUnprocessableEntity}
	ErrDecode           = &AppError{Code: "DECODE_ERROR", Message: "Unexpected response from server"}
)

// IsTransport reports whether err came from the remote API or the network
// path to it.
func IsTransport(err error) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case ErrTransport.Code, ErrNotFound.Code, ErrValidationFailed.Code, ErrDecode.Code:
		return true
	}
	return false
}

// UserMessage extracts a human-readable message from err: the server's
// detail when present, then the error's own message, then fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if appErr.Detail != "" {
			return appErr.Detail
		}
		if appErr.Message != "" {
			return appErr.Message
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
