package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error", NewForbidden("insufficient role"), "FORBIDDEN", http.StatusForbidden},
		{"wrapped domain error", fmt.Errorf("handler: %w", NewUnauthorized("invalid credentials")), "UNAUTHORIZED", http.StatusUnauthorized},
		{"fiber not found", fiber.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"fiber method not allowed", fiber.ErrMethodNotAllowed, "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed},
		{"fiber teapot", fiber.ErrTeapot, "REQUEST_FAILED", http.StatusTeapot},
		{"no rows", fmt.Errorf("get user: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"too many attempts", NewTooManyRequests("slow down"), "TOO_MANY_ATTEMPTS", http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDomainError(tc.err)
			require.NotNil(t, got)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.status, got.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ToDomainError(NewInternalError(cause))

	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorIs(t, err, cause)
}
