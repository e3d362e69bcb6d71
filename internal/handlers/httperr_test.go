package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarkhas/orderflow/internal/repo"
	"github.com/dmarkhas/orderflow/internal/service"
	"github.com/dmarkhas/orderflow/internal/tokens"
)

func TestHTTPErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid token", tokens.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", tokens.ErrTokenExpired, http.StatusUnauthorized},
		{"expired refresh", service.ErrRefreshExpired, http.StatusUnauthorized},
		{"spent refresh", repo.ErrTokenNotFound, http.StatusUnauthorized},
		{"permission denied", service.ErrPermissionDenied, http.StatusForbidden},
		{"missing row", repo.ErrNotFound, http.StatusNotFound},
		{"missing user", service.ErrUserNotFound, http.StatusNotFound},
		{"duplicate key", repo.ErrDuplicateKey, http.StatusBadRequest},
		{"duplicate assignment", repo.ErrDuplicateAssignment, http.StatusBadRequest},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var he *echo.HTTPError
			require.ErrorAs(t, httpError(tt.err), &he)
			assert.Equal(t, tt.code, he.Code)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, parseIntDefault("", 1))
	assert.Equal(t, 5, parseIntDefault("5", 1))
	assert.Equal(t, 1, parseIntDefault("junk", 1))
}
