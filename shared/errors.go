package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a user-facing error carrying the HTTP status it should
// terminate the request with. Services return them; the HTTP error handler
// renders them through ResponseJSON.
type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Err        error
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

// GetAppError unwraps err down to an *AppError if one is in the chain.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Client errors carry only the message shown to the caller. The internal
// error keeps its cause so it can be logged.

func NewBadRequestError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{StatusCode: http.StatusForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{StatusCode: http.StatusConflict, Message: message}
}

func NewInternalError(err error, message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message, Err: err}
}
