package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("service: could not get alert: %w", NotFound("alert not found"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, http.StatusNotFound, KindOf(err).HTTPStatus())
	assert.Equal(t, "alert not found", MessageOf(err))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, KindOf(err).HTTPStatus())
	// Детали внутренних ошибок наружу не отдаем
	assert.Equal(t, "internal server error", MessageOf(err))
}

func TestUnavailable_KeepsCause(t *testing.T) {
	err := Unavailable("store timeout", context.DeadlineExceeded)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, Is(err, KindUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, err.Kind.HTTPStatus())
	assert.Contains(t, err.Error(), "context deadline exceeded")
}

func TestKind_Codes(t *testing.T) {
	tests := []struct {
		kind   Kind
		code   string
		status int
	}{
		{KindValidation, "VALIDATION_ERROR", http.StatusBadRequest},
		{KindUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
		{KindForbidden, "FORBIDDEN", http.StatusForbidden},
		{KindNotFound, "NOT_FOUND", http.StatusNotFound},
		{KindUnavailable, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
		{KindInternal, "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.kind.Code())
			assert.Equal(t, tt.status, tt.kind.HTTPStatus())
		})
	}
}
