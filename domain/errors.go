package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a domain failure carrying an HTTP-equivalent status.
// Services return these; middleware.ErrorHandler serializes them.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewNotFound(format string, args ...any) *AppError {
	return &AppError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: fmt.Sprintf(format, args...)}
}

func NewBadRequest(format string, args ...any) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: fmt.Sprintf(format, args...)}
}

func NewConflict(format string, args ...any) *AppError {
	return &AppError{Status: http.StatusConflict, Code: "CONFLICT", Message: fmt.Sprintf(format, args...)}
}

func NewForbidden(format string, args ...any) *AppError {
	return &AppError{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorized(format string, args ...any) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: fmt.Sprintf(format, args...)}
}

func NewInternal(format string, args ...any) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Code: "INTERNAL", Message: fmt.Sprintf(format, args...)}
}

// AsAppError unwraps err into an *AppError if it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
