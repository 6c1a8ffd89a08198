package errors

import (
	"errors"
	"net/http"
)

// statusMapping maps internal error codes to HTTP status codes.
var statusMapping = map[ErrorCode]int{
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeUploadRejected: http.StatusBadRequest,
	ErrCodeDuplicateEmail: http.StatusConflict,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeAuthentication: http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,
	ErrCodePersistence:    http.StatusInternalServerError,
	ErrCodeSearchDown:     http.StatusServiceUnavailable,
	ErrCodeInternal:       http.StatusInternalServerError,
}

// HTTPStatus returns the status code for an error. Unknown errors map to 500.
func HTTPStatus(err error) int {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		if status, ok := statusMapping[stdErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// ClientMessage returns the message safe to echo to API clients. Store errors
// keep their details server-side; everything a client sees comes from the
// constructor messages.
func ClientMessage(err error) string {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		switch stdErr.Code {
		case ErrCodePersistence, ErrCodeInternal:
			return "internal server error"
		default:
			return stdErr.Message
		}
	}
	return "internal server error"
}

// Code extracts the error code, defaulting to INTERNAL_ERROR.
func Code(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// Normalize ensures any error is a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// GetRetryCount returns the delivery retry budget for retryable codes. Only
// the mail dispatcher consults this today; HTTP requests are never retried
// server-side.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeEmailDelivery:
		return 3
	case ErrCodePersistence, ErrCodeSearchDown:
		return 2
	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}
