package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found app error", NotFound("thread", 3), http.StatusNotFound},
		{"wrapped not found sentinel", fmt.Errorf("get thread: %w", ErrNotFound), http.StatusNotFound},
		{"duplicate identity", DuplicateIdentity("a@x.com"), http.StatusBadRequest},
		{"invalid credentials", InvalidCredentials(), http.StatusUnauthorized},
		{"token invalid sentinel", ErrTokenInvalid, http.StatusUnauthorized},
		{"self thread", SelfThread(), http.StatusBadRequest},
		{"invariant", InvariantViolation(3), http.StatusBadRequest},
		{"forbidden", Forbidden("not a participant"), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestAppErrorUnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("create user: %w", DuplicateIdentity("a@x.com"))

	assert.True(t, errors.Is(err, ErrDuplicateIdentity))

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "email", appErr.Field)
}
