package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels matched with errors.Is. Every AppError wraps one of them.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")

	// ErrLoadFailed marks a failed read of a remote collection.
	ErrLoadFailed = errors.New("load failed")
	// ErrMutationFailed marks a failed write against a remote collection.
	ErrMutationFailed = errors.New("mutation failed")
)

// AppError is an error with a user-facing message and the HTTP status it
// maps to. Message is what the storefront shows; Err carries the sentinel and
// any cause.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(code string, status int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

// NotFound creates a 404 error naming the missing resource.
func NotFound(resource, id string) *AppError {
	return NotFoundMessage(fmt.Sprintf("%s with id %s not found", resource, id))
}

// NotFoundMessage creates a 404 error with a caller-supplied message.
func NotFoundMessage(message string) *AppError {
	return newAppError("NOT_FOUND", http.StatusNotFound, message, ErrNotFound)
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return newAppError("INVALID_INPUT", http.StatusBadRequest, message, ErrInvalidInput)
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return newAppError("UNAUTHORIZED", http.StatusUnauthorized, message, ErrUnauthorized)
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return newAppError("CONFLICT", http.StatusConflict, message, ErrConflict)
}

// Unavailable creates a 503 error. An empty code defaults to
// SERVICE_UNAVAILABLE.
func Unavailable(code, message string) *AppError {
	if code == "" {
		code = "SERVICE_UNAVAILABLE"
	}
	return newAppError(code, http.StatusServiceUnavailable, message, ErrServiceUnavail)
}

// LoadFailed creates an error for a collection read that did not complete.
// The cause, when present, is kept in the chain next to ErrLoadFailed.
func LoadFailed(message string, cause error) *AppError {
	return newAppError("LOAD_FAILED", http.StatusBadGateway, message, join(ErrLoadFailed, cause))
}

// MutationFailed creates an error for a collection write that did not complete.
func MutationFailed(message string, cause error) *AppError {
	return newAppError("MUTATION_FAILED", http.StatusBadGateway, message, join(ErrMutationFailed, cause))
}

func join(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return errors.Join(sentinel, cause)
}

// HTTPStatus returns the HTTP status code for err. An AppError reports its
// own status; bare sentinels are mapped; anything else is a 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrLoadFailed), errors.Is(err, ErrMutationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
