package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/yuhuhero-service/internal/config"
	"github.com/spec-kit/yuhuhero-service/internal/persistence"
)

func readyApp(t *testing.T, redisCfg config.RedisConfig) *fiber.App {
	t.Helper()

	pg, err := persistence.NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	redis := persistence.NewRedis(context.Background(), redisCfg, zap.NewNop())
	t.Cleanup(redis.Close)

	h := NewHealthHandler("yuhuhero-service", "test", pg, redis)
	app := fiber.New()
	app.Get("/health/live", h.Live)
	app.Get("/health/ready", h.Ready)
	return app
}

func TestReady_OptionalDependenciesDisabled(t *testing.T) {
	app := readyApp(t, config.RedisConfig{})

	resp, err := app.Test(httptest.NewRequest("GET", "/health/ready", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "disabled", body.Dependencies["postgres"])
	assert.Equal(t, "disabled", body.Dependencies["redis"])
}

func TestReady_UnreachableRedis(t *testing.T) {
	app := readyApp(t, config.RedisConfig{Addr: "127.0.0.1:1", DialTimeoutMillis: 100, IOTimeoutMillis: 100})

	resp, err := app.Test(httptest.NewRequest("GET", "/health/ready", nil), 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestLive(t *testing.T) {
	app := readyApp(t, config.RedisConfig{})

	resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
