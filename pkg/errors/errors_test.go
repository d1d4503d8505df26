package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
		wantBase   error
	}{
		{"not found", NotFound("product"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"unauthorized", Unauthorized("authentication required"), "UNAUTHORIZED", http.StatusUnauthorized, ErrUnauthorized},
		{"bad request", BadRequest("barcode parameter required"), "BAD_REQUEST", http.StatusBadRequest, ErrBadRequest},
		{"conflict", Conflict("duplicate"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"internal", Internal("boom"), "INTERNAL_ERROR", http.StatusInternalServerError, ErrInternal},
		{"validation", Validation(map[string]string{"quantity": "this field is required"}), "VALIDATION_ERROR", http.StatusBadRequest, ErrValidation},
		{"credentials", InvalidCredentials(), "INVALID_CREDENTIALS", http.StatusUnauthorized, ErrInvalidCredentials},
		{"token expired", TokenExpired(), "TOKEN_EXPIRED", http.StatusUnauthorized, ErrTokenExpired},
		{"token invalid", TokenInvalid(), "TOKEN_INVALID", http.StatusUnauthorized, ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.True(t, Is(tt.err, tt.wantBase))
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	assert.Equal(t, "product not found: resource not found", NotFound("product").Error())
	assert.True(t, IsNotFound(NotFound("batch")))
	assert.False(t, IsNotFound(BadRequest("nope")))
}

func TestAs_WrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("resolve category: %w", Validation(map[string]string{"name": "required"}))

	var appErr *AppError
	require.True(t, As(wrapped, &appErr))
	assert.Equal(t, "required", appErr.Details["name"])
}
