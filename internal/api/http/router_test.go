package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/yuhuhero-service/internal/api/http/handlers"
	"github.com/spec-kit/yuhuhero-service/internal/auth"
	"github.com/spec-kit/yuhuhero-service/internal/events"
	"github.com/spec-kit/yuhuhero-service/internal/observability"
	"github.com/spec-kit/yuhuhero-service/internal/repository"
	"github.com/spec-kit/yuhuhero-service/internal/service"
)

type testServer struct {
	app  *fiber.App
	auth *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	users := repository.NewMemoryUserRepository()
	tokens, err := auth.NewTokenManager("router-secret", "HS256", time.Hour)
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   users,
		Tokens:     tokens,
		Hasher:     auth.NewHasher(bcrypt.MinCost),
		Guard:      service.NewLoginGuard(repository.NewMemoryLoginAttemptStore(nil), 5, time.Minute, logger),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(service.NewUserService(users, dispatcher, logger)),
		AuthMiddleware: auth.NewAuthMiddleware(auth.NewResolver(tokens, users, logger, metrics)),
		Metrics:        metrics,
	})
	return &testServer{app: app, auth: authService}
}

type apiResponse struct {
	status int
	header stdhttp.Header
	body   map[string]any
	raw    string
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) apiResponse {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := apiResponse{status: resp.StatusCode, header: resp.Header, raw: string(raw)}
	_ = json.Unmarshal(raw, &out.body)
	return out
}

func (r apiResponse) data(t *testing.T) map[string]any {
	t.Helper()
	data, ok := r.body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %s", r.raw)
	return data
}

func (r apiResponse) errorCode() string {
	e, _ := r.body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (r apiResponse) errorMessage() string {
	e, _ := r.body["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

func accessToken(t *testing.T, r apiResponse) string {
	t.Helper()
	authData, ok := r.data(t)["auth"].(map[string]any)
	require.True(t, ok, "no auth block: %s", r.raw)
	token, _ := authData["access_token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "bearer", authData["token_type"])
	return token
}

func alterLastChar(token string) string {
	last := token[len(token)-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	return token[:len(token)-1] + string(replacement)
}

func TestRegisterLoginAndAuthenticatedCall(t *testing.T) {
	s := newTestServer(t)

	reg := s.do(t, stdhttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "phone": "5551234", "password": "secret1",
	})
	require.Equal(t, stdhttp.StatusCreated, reg.status, reg.raw)
	userID := reg.data(t)["user"].(map[string]any)["id"]

	login := s.do(t, stdhttp.MethodPost, "/api/auth/login", "", map[string]string{
		"phone": "5551234", "password": "secret1",
	})
	require.Equal(t, stdhttp.StatusOK, login.status, login.raw)
	token := accessToken(t, login)

	me := s.do(t, stdhttp.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, stdhttp.StatusOK, me.status, me.raw)
	profile := me.data(t)
	assert.Equal(t, userID, profile["id"])
	assert.Equal(t, "Ana", profile["name"])
	assert.Equal(t, "5551234", profile["phone"])
	assert.Equal(t, "user", profile["role"])
	assert.Equal(t, false, profile["quizCompleted"])
	assert.NotContains(t, me.raw, "password")

	alias := s.do(t, stdhttp.MethodGet, "/api/users/profile", token, nil)
	assert.Equal(t, stdhttp.StatusOK, alias.status)
}

func TestTamperedTokenIsRejectedWithoutSideEffects(t *testing.T) {
	s := newTestServer(t)

	reg := s.do(t, stdhttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "phone": "5551234", "password": "secret1",
	})
	require.Equal(t, stdhttp.StatusCreated, reg.status, reg.raw)
	token := accessToken(t, reg)

	rejected := s.do(t, stdhttp.MethodPut, "/api/users/me/quiz-status", alterLastChar(token), map[string]bool{"completed": true})
	assert.Equal(t, stdhttp.StatusUnauthorized, rejected.status, rejected.raw)
	assert.Equal(t, "UNAUTHORIZED", rejected.errorCode())
	assert.Equal(t, "invalid credentials", rejected.errorMessage())
	assert.Equal(t, "Bearer", rejected.header.Get("WWW-Authenticate"))

	me := s.do(t, stdhttp.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, stdhttp.StatusOK, me.status)
	assert.Equal(t, false, me.data(t)["quizCompleted"])

	updated := s.do(t, stdhttp.MethodPut, "/api/users/me/quiz-status", token, map[string]bool{"completed": true})
	require.Equal(t, stdhttp.StatusOK, updated.status, updated.raw)
	assert.Equal(t, true, updated.data(t)["quizCompleted"])
}

func TestMissingAndInvalidCredentialsAreDistinguished(t *testing.T) {
	s := newTestServer(t)

	missing := s.do(t, stdhttp.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, missing.status)
	assert.Equal(t, "missing credentials", missing.errorMessage())

	invalid := s.do(t, stdhttp.MethodGet, "/api/users/me", "not-a-token", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, invalid.status)
	assert.Equal(t, "invalid credentials", invalid.errorMessage())
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	s := newTestServer(t)

	reg := s.do(t, stdhttp.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ana", "phone": "5551234", "password": "secret1",
	})
	require.Equal(t, stdhttp.StatusCreated, reg.status, reg.raw)

	forbidden := s.do(t, stdhttp.MethodGet, "/api/admin/users", accessToken(t, reg), nil)
	assert.Equal(t, stdhttp.StatusForbidden, forbidden.status, forbidden.raw)
	assert.Equal(t, "FORBIDDEN", forbidden.errorCode())

	_, err := s.auth.EnsureAdmin(context.Background(), service.RegisterInput{Name: "Root", Phone: "999", Password: "adminpass"})
	require.NoError(t, err)
	login := s.do(t, stdhttp.MethodPost, "/api/auth/login", "", map[string]string{"phone": "999", "password": "adminpass"})
	require.Equal(t, stdhttp.StatusOK, login.status, login.raw)

	list := s.do(t, stdhttp.MethodGet, "/api/admin/users?limit=10", accessToken(t, login), nil)
	require.Equal(t, stdhttp.StatusOK, list.status, list.raw)
	users, ok := list.body["data"].([]any)
	require.True(t, ok, list.raw)
	assert.Len(t, users, 2)
	assert.NotContains(t, list.raw, "password")
}

func TestAuthEndpointErrors(t *testing.T) {
	s := newTestServer(t)

	bad := s.do(t, stdhttp.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ana", "phone": "1", "password": "123"})
	assert.Equal(t, stdhttp.StatusBadRequest, bad.status, bad.raw)
	assert.Equal(t, "VALIDATION_FAILED", bad.errorCode())

	ok := s.do(t, stdhttp.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ana", "phone": "1", "password": "secret1"})
	require.Equal(t, stdhttp.StatusCreated, ok.status, ok.raw)

	dup := s.do(t, stdhttp.MethodPost, "/api/auth/register", "", map[string]string{"name": "Bea", "phone": "1", "password": "secret2"})
	assert.Equal(t, stdhttp.StatusConflict, dup.status, dup.raw)

	wrong := s.do(t, stdhttp.MethodPost, "/api/auth/login", "", map[string]string{"phone": "1", "password": "wrong-password"})
	assert.Equal(t, stdhttp.StatusUnauthorized, wrong.status, wrong.raw)

	empty := s.do(t, stdhttp.MethodPost, "/api/auth/login", "", map[string]string{"phone": "1"})
	assert.Equal(t, stdhttp.StatusBadRequest, empty.status, empty.raw)

	notFound := s.do(t, stdhttp.MethodGet, "/nope", "", nil)
	assert.Equal(t, stdhttp.StatusNotFound, notFound.status)
	assert.Equal(t, "NOT_FOUND", notFound.errorCode())
}

func TestLoginLockout(t *testing.T) {
	s := newTestServer(t)

	ok := s.do(t, stdhttp.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ana", "phone": "1", "password": "secret1"})
	require.Equal(t, stdhttp.StatusCreated, ok.status, ok.raw)

	for i := 0; i < 5; i++ {
		r := s.do(t, stdhttp.MethodPost, "/api/auth/login", "", map[string]string{"phone": "1", "password": "wrong-password"})
		require.Equal(t, stdhttp.StatusUnauthorized, r.status, r.raw)
	}

	locked := s.do(t, stdhttp.MethodPost, "/api/auth/login", "", map[string]string{"phone": "1", "password": "secret1"})
	assert.Equal(t, stdhttp.StatusTooManyRequests, locked.status, locked.raw)
	assert.Equal(t, "TOO_MANY_ATTEMPTS", locked.errorCode())
}

func TestMetricsExposeAuthRejections(t *testing.T) {
	s := newTestServer(t)

	_ = s.do(t, stdhttp.MethodGet, "/api/users/me", "garbage", nil)

	metrics := s.do(t, stdhttp.MethodGet, "/metrics", "", nil)
	require.Equal(t, stdhttp.StatusOK, metrics.status)
	assert.Contains(t, metrics.raw, `auth_rejections_total{reason="malformed"} 1`)
	assert.Contains(t, metrics.raw, "http_requests_total")
}
