// Package apperr defines the coded errors the domain services raise and
// their HTTP mapping. Handlers translate with HTTPStatus; services never
// touch HTTP codes themselves.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeUnknown             Code = "UNKNOWN"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodePreconditionFailed  Code = "PRECONDITION_FAILED"
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
	CodeUnavailable         Code = "UNAVAILABLE"
)

type Error struct {
	ErrCode Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(format string, args ...interface{}) *Error {
	return &Error{ErrCode: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return &Error{ErrCode: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func PreconditionFailed(format string, args ...interface{}) *Error {
	return &Error{ErrCode: CodePreconditionFailed, Message: fmt.Sprintf(format, args...)}
}

func ConcurrencyConflict(format string, args ...interface{}) *Error {
	return &Error{ErrCode: CodeConcurrencyConflict, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a failed store call so the cause stays inspectable.
func Unavailable(err error, format string, args ...interface{}) *Error {
	return &Error{ErrCode: CodeUnavailable, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the code from any error in the chain, CodeUnknown otherwise.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.ErrCode
	}
	return CodeUnknown
}

func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps a domain error to the status the API layer responds with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodePreconditionFailed:
		return http.StatusConflict
	case CodeConcurrencyConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
