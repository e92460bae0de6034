// Package apperrors holds the lobby error taxonomy. Every error that reaches a
// handler is either an *AppError or is reported as CodeUnknown.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bananalabs-oss/lobby/internal/models"
)

type AppError struct {
	Code    Code   `json:"code"`
	Key     string `json:"error"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(code Code, key, message string) error {
	return &AppError{Code: code, Key: key, Message: message}
}

func Wrap(code Code, key, message string, cause error) error {
	return &AppError{Code: code, Key: key, Message: message, Cause: cause}
}

func InvalidArg(key, msg string) error { return New(CodeInvalidArgument, key, msg) }
func NotFound(key, msg string) error { return New(CodeNotFound, key, msg) }
func AlreadyExists(key, msg string) error { return New(CodeAlreadyExists, key, msg) }
func Unauthorized(key, msg string) error { return New(CodeUnauthorized, key, msg) }

func FailedPrecondition(key, msg string) error {
	return New(CodeFailedPrecondition, key, msg)
}

// Unavailable marks a transport or storage failure. Callers surface it as-is
// and may retry the whole operation.
func Unavailable(cause error) error {
	return Wrap(CodeUnavailable, "store_unavailable", "The lobby store is unavailable", cause)
}

// CodeOf returns the code of the first *AppError in err's chain.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func Status(err error) int {
	switch CodeOf(err) {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeFailedPrecondition:
		return http.StatusUnprocessableEntity
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Response renders err for the wire. Causes are never exposed.
func Response(err error) models.ErrorResponse {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return models.ErrorResponse{Error: appErr.Key, Message: appErr.Message}
	}
	return models.ErrorResponse{Error: "internal_error", Message: "Something went wrong"}
}
