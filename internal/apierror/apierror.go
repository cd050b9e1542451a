package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrConflict       ErrorCode = "CONFLICT"
	ErrBadRequest     ErrorCode = "BAD_REQUEST"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
)

// APIError is the error shape carried from the database layer up to HTTP
// responses. Details hold the underlying cause for logs, never for clients.
type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"-"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code ErrorCode, message string, details interface{}) APIError {
	if details != nil {
		logrus.WithField("code", code).Error(details)
	}
	return APIError{Code: code, Message: message, Details: details}
}

func NotFound(message string, details interface{}) APIError {
	return New(ErrNotFound, message, details)
}

func Conflict(message string, details interface{}) APIError {
	return New(ErrConflict, message, details)
}

func BadRequest(message string, details interface{}) APIError {
	return New(ErrBadRequest, message, details)
}

func InvalidInput(message string, details interface{}) APIError {
	return New(ErrInvalidInput, message, details)
}

func Internal(message string, details interface{}) APIError {
	return New(ErrInternalServer, message, details)
}

// Is reports whether err is an APIError with the given code.
func Is(err error, code ErrorCode) bool {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// MapErrorToHTTPStatus translates an error into the HTTP status the API
// layer should respond with.
func MapErrorToHTTPStatus(err error) int {
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError
	}
	switch apiErr.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict:
		return http.StatusConflict
	case ErrBadRequest, ErrInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
