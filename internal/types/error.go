package types

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups for entities that do not exist.
var ErrNotFound = errors.New("not found")

// AppError carries an HTTP status code and a taxonomy type through the
// service layer so handlers can map it onto the JSON error envelope.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Validation builds a 400 validation error.
func Validation(format string, args ...interface{}) *AppError {
	return &AppError{Code: 400, Message: fmt.Sprintf(format, args...), Type: "validation"}
}

// Policy builds a 400 business-policy error.
func Policy(format string, args ...interface{}) *AppError {
	return &AppError{Code: 400, Message: fmt.Sprintf(format, args...), Type: "policy"}
}

// Conflict builds a 409 conflict error.
func Conflict(format string, args ...interface{}) *AppError {
	return &AppError{Code: 409, Message: fmt.Sprintf(format, args...), Type: "conflict"}
}

// Unauthorized builds a 401 authorization error.
func Unauthorized(format string, args ...interface{}) *AppError {
	return &AppError{Code: 401, Message: fmt.Sprintf(format, args...), Type: "authorization"}
}

// Forbidden builds a 403 authorization error.
func Forbidden(format string, args ...interface{}) *AppError {
	return &AppError{Code: 403, Message: fmt.Sprintf(format, args...), Type: "authorization"}
}
