package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeUpstream        = "UPSTREAM_ERROR"
)

var (
	ErrInvalidCredentials = errors.New("Email or Password do not match or user does not exist")
	ErrUnauthenticated    = errors.New("Unauthorized, please login to continue")
	ErrSessionExpired     = errors.New("Token has expired, please login again")
	ErrForbidden          = errors.New("You do not have permission to access this route")
	ErrMissingFields      = errors.New("All fields are required")
	ErrInvalidResetToken  = errors.New("Token is invalid or expired, please try again")
)

type AppError struct {
	Code    string
	Message string
	Err     error
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

// StatusCode maps the error code onto the HTTP status the client receives.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) *AppError {
	return NewAppError(CodeValidation, message, nil)
}

func Conflict(message string) *AppError {
	return NewAppError(CodeConflict, message, nil)
}

func Unauthenticated(cause error) *AppError {
	return NewAppError(CodeUnauthenticated, cause.Error(), cause)
}

func Forbidden(message string) *AppError {
	return NewAppError(CodeForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return NewAppError(CodeNotFound, message, nil)
}

// Upstream reports a store, email, storage or payment failure. The message is
// what the client sees; err is kept for logging only.
func Upstream(message string, err error) *AppError {
	return NewAppError(CodeUpstream, message, err)
}

// As is a shorthand for errors.As against *AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
