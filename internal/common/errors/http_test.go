package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest},
		{"upload", NewUploadRejectedError("too big"), http.StatusBadRequest},
		{"duplicate", NewDuplicateEmailError("a@b.c"), http.StatusConflict},
		{"not found", NewNotFoundError("notification", "n-1"), http.StatusNotFound},
		{"authentication", NewAuthenticationError("nope"), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("admins only"), http.StatusForbidden},
		{"persistence", NewPersistenceError(errors.New("down")), http.StatusInternalServerError},
		{"search", NewSearchUnavailableError(errors.New("red")), http.StatusServiceUnavailable},
		{"plain error", errors.New("anything"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestClientMessageSanitizesStoreErrors(t *testing.T) {
	assert.Equal(t, "internal server error", ClientMessage(NewPersistenceError(errors.New("pq: ssl off"))))
	assert.Equal(t, "internal server error", ClientMessage(NewInternalError(errors.New("boom"))))
	assert.Equal(t, "internal server error", ClientMessage(errors.New("raw")))

	msg := ClientMessage(NewValidationError("companyName is required"))
	assert.Equal(t, "Request validation failed", msg)
}

func TestCode(t *testing.T) {
	assert.Equal(t, ErrCodeDuplicateEmail, Code(NewDuplicateEmailError("a@b.c")))
	assert.Equal(t, ErrCodeInternal, Code(errors.New("raw")))
}

func TestNormalizeWrapsUnknownErrors(t *testing.T) {
	stdErr := Normalize(errors.New("raw"))
	assert.Equal(t, ErrCodeInternal, stdErr.Code)

	original := NewNotFoundError("business", "b-1")
	assert.Same(t, original, Normalize(original))
}

func TestRetryBudgets(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeEmailDelivery))
	assert.Equal(t, 2, GetRetryCount(ErrCodePersistence))
	assert.Equal(t, 0, GetRetryCount(ErrCodeValidation))

	assert.True(t, IsRetryableErrorCode(ErrCodeSearchDown))
	assert.False(t, IsRetryableErrorCode(ErrCodeDuplicateEmail))
}
