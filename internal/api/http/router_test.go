package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/chirpy/internal/api/http/handlers"
	"github.com/spec-kit/chirpy/internal/auth"
	"github.com/spec-kit/chirpy/internal/config"
	"github.com/spec-kit/chirpy/internal/events"
	"github.com/spec-kit/chirpy/internal/observability"
	"github.com/spec-kit/chirpy/internal/repository/repositorytest"
	"github.com/spec-kit/chirpy/internal/service"
)

type testServer struct {
	app     *fiber.App
	store   *repositorytest.Store
	metrics *observability.Metrics
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T, allowReset bool, deps map[string]handlers.Pinger) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)

	cfg := config.Config{
		App: config.AppConfig{Name: "chirpy", Version: "test"},
		Auth: config.AuthConfig{
			JWTSecret:           "router-secret",
			JWTIssuer:           "chirpy",
			DefaultTokenSeconds: 3600,
			ArgonTime:           1,
			ArgonMemoryKiB:      8 * 1024,
			ArgonThreads:        1,
		},
	}

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<h1>Welcome to Chirpy</h1>"), 0o644))

	store := repositorytest.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	authService := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Users(), Dispatcher: dispatcher})
	chirpService := service.NewChirpService(service.ChirpDependencies{ChirpRepo: store.Chirps(), Dispatcher: dispatcher})

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Users:          handlers.NewUsersHandler(authService),
		Chirps:         handlers.NewChirpsHandler(chirpService),
		Admin:          handlers.NewAdminHandler(observability.NewMemoryHitCounter(), store.Users(), allowReset, logger),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), cfg.Auth.JWTSecret, store.Users()),
		StaticDir:      staticDir,
	})

	return &testServer{app: app, store: store, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (s *testServer) register(t *testing.T, email, password string) map[string]any {
	t.Helper()
	status, body := s.do(t, fiber.MethodPost, "/api/users", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, fiber.StatusCreated, status, string(body))
	return decode(t, body)
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := s.do(t, fiber.MethodPost, "/api/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	token, _ := decode(t, body)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	envelope, ok := decode(t, body)["error"].(map[string]any)
	require.True(t, ok, string(body))
	code, _ := envelope["code"].(string)
	return code
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, false, nil)

	status, body := srv.do(t, fiber.MethodGet, "/api/healthz", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OK", string(body))

	status, _ = srv.do(t, fiber.MethodGet, "/health/live", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = srv.do(t, fiber.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestReadinessReportsFailingDependency(t *testing.T) {
	srv := newTestServer(t, false, map[string]handlers.Pinger{"postgres": failingPinger{}})

	status, body := srv.do(t, fiber.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errorCode(t, body))
}

func TestUserRegistrationAndLogin(t *testing.T) {
	srv := newTestServer(t, false, nil)

	user := srv.register(t, "walt@breakingbad.com", "04234")
	assert.Equal(t, "walt@breakingbad.com", user["email"])
	assert.NotEmpty(t, user["id"])
	assert.Contains(t, user, "createdAt")
	assert.NotContains(t, user, "hashedPassword")
	assert.NotContains(t, user, "password")

	status, body := srv.do(t, fiber.MethodPost, "/api/users", map[string]string{"email": "walt@breakingbad.com", "password": "x"}, "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(t, body))

	status, body = srv.do(t, fiber.MethodPost, "/api/users", map[string]string{"email": ""}, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	status, body = srv.do(t, fiber.MethodPost, "/api/login", map[string]string{"email": "walt@breakingbad.com", "password": "wrong"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	status, _ = srv.do(t, fiber.MethodPost, "/api/login", map[string]string{"email": "nobody@example.com", "password": "04234"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = srv.do(t, fiber.MethodPost, "/api/login", map[string]string{"email": "walt@breakingbad.com", "password": "04234"}, "")
	require.Equal(t, fiber.StatusOK, status)
	login := decode(t, body)
	assert.Equal(t, user["id"], login["id"])
	assert.NotEmpty(t, login["token"])
}

func TestUpdateUser(t *testing.T) {
	srv := newTestServer(t, false, nil)
	user := srv.register(t, "walt@breakingbad.com", "04234")
	token := srv.login(t, "walt@breakingbad.com", "04234")

	update := map[string]string{"email": "heisenberg@breakingbad.com", "password": "losPollos"}

	status, _ := srv.do(t, fiber.MethodPut, "/api/users", update, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = srv.do(t, fiber.MethodPut, "/api/users", update, "not-a-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := srv.do(t, fiber.MethodPut, "/api/users", update, token)
	require.Equal(t, fiber.StatusOK, status, string(body))
	updated := decode(t, body)
	assert.Equal(t, user["id"], updated["id"])
	assert.Equal(t, "heisenberg@breakingbad.com", updated["email"])

	srv.login(t, "heisenberg@breakingbad.com", "losPollos")
	status, _ = srv.do(t, fiber.MethodPost, "/api/login", map[string]string{"email": "walt@breakingbad.com", "password": "04234"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestLoginExpiresInSeconds(t *testing.T) {
	srv := newTestServer(t, false, nil)
	srv.register(t, "saul@bettercall.com", "123456")

	status, body := srv.do(t, fiber.MethodPost, "/api/login", map[string]any{
		"email": "saul@bettercall.com", "password": "123456", "expiresInSeconds": 0,
	}, "")
	require.Equal(t, fiber.StatusOK, status)
	expired, _ := decode(t, body)["token"].(string)
	require.NotEmpty(t, expired)

	status, _ = srv.do(t, fiber.MethodPost, "/api/chirps", map[string]string{"body": "hello"}, expired)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = srv.do(t, fiber.MethodPost, "/api/login", map[string]any{
		"email": "saul@bettercall.com", "password": "123456", "expiresInSeconds": 999999,
	}, "")
	require.Equal(t, fiber.StatusOK, status)
	clamped, _ := decode(t, body)["token"].(string)

	status, _ = srv.do(t, fiber.MethodPost, "/api/chirps", map[string]string{"body": "hello"}, clamped)
	assert.Equal(t, fiber.StatusCreated, status)
}

func TestChirpLifecycle(t *testing.T) {
	srv := newTestServer(t, false, nil)
	walt := srv.register(t, "walt@breakingbad.com", "04234")
	waltToken := srv.login(t, "walt@breakingbad.com", "04234")
	srv.register(t, "jesse@breakingbad.com", "magnets")
	jesseToken := srv.login(t, "jesse@breakingbad.com", "magnets")

	status, _ := srv.do(t, fiber.MethodPost, "/api/chirps", map[string]string{"body": "no token"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := srv.do(t, fiber.MethodPost, "/api/chirps", map[string]string{"body": strings.Repeat("a", 141)}, waltToken)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, body))

	status, body = srv.do(t, fiber.MethodPost, "/api/chirps", map[string]string{"body": "I hear Mastodon is better than Chirpy. sharbert I need to migrate"}, waltToken)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	first := decode(t, body)
	assert.Equal(t, "I hear Mastodon is better than Chirpy. **** I need to migrate", first["body"])
	assert.Equal(t, walt["id"], first["userId"])

	status, body = srv.do(t, fiber.MethodPost, "/api/chirps", map[string]string{"body": "Yeah science!"}, jesseToken)
	require.Equal(t, fiber.StatusCreated, status)
	second := decode(t, body)

	var list []map[string]any
	status, body = srv.do(t, fiber.MethodGet, "/api/chirps", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 2)
	assert.Equal(t, first["id"], list[0]["id"])

	status, body = srv.do(t, fiber.MethodGet, "/api/chirps?sort=desc", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, second["id"], list[0]["id"])

	status, body = srv.do(t, fiber.MethodGet, "/api/chirps?authorId="+walt["id"].(string), nil, "")
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, first["id"], list[0]["id"])

	status, _ = srv.do(t, fiber.MethodGet, "/api/chirps?sort=sideways", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = srv.do(t, fiber.MethodGet, "/api/chirps?authorId=nope", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	chirpPath := "/api/chirps/" + first["id"].(string)
	status, body = srv.do(t, fiber.MethodGet, chirpPath, nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, first["body"], decode(t, body)["body"])

	status, _ = srv.do(t, fiber.MethodGet, "/api/chirps/not-a-uuid", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, body = srv.do(t, fiber.MethodGet, "/api/chirps/"+uuid.NewString(), nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	status, body = srv.do(t, fiber.MethodDelete, chirpPath, nil, jesseToken)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	status, _ = srv.do(t, fiber.MethodDelete, chirpPath, nil, waltToken)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = srv.do(t, fiber.MethodGet, chirpPath, nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestAdminMetricsAndReset(t *testing.T) {
	srv := newTestServer(t, true, nil)
	srv.register(t, "walt@breakingbad.com", "04234")

	for i := 0; i < 2; i++ {
		status, body := srv.do(t, fiber.MethodGet, "/app/", nil, "")
		require.Equal(t, fiber.StatusOK, status)
		assert.Contains(t, string(body), "Welcome to Chirpy")
	}

	status, body := srv.do(t, fiber.MethodGet, "/admin/metrics", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), "<h1>Welcome, Chirpy Admin</h1>")
	assert.Contains(t, string(body), "Chirpy has been visited 2 times!")

	status, body = srv.do(t, fiber.MethodPost, "/admin/reset", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Hits reset to 0 and all users deleted", string(body))

	_, body = srv.do(t, fiber.MethodGet, "/admin/metrics", nil, "")
	assert.Contains(t, string(body), "Chirpy has been visited 0 times!")

	status, _ = srv.do(t, fiber.MethodPost, "/api/login", map[string]string{"email": "walt@breakingbad.com", "password": "04234"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAdminResetKeepsUsersWhenDataResetDisabled(t *testing.T) {
	srv := newTestServer(t, false, nil)
	srv.register(t, "walt@breakingbad.com", "04234")

	status, body := srv.do(t, fiber.MethodPost, "/admin/reset", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Hits reset to 0", string(body))

	srv.login(t, "walt@breakingbad.com", "04234")
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	srv := newTestServer(t, false, nil)

	status, body := srv.do(t, fiber.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
	assert.Zero(t, srv.metrics.Requests("/api/nope", fiber.MethodGet, fiber.StatusNotFound))

	series := srv.metrics.Series()
	for i := 0; i < 5; i++ {
		status, _ = srv.do(t, fiber.MethodGet, "/api/nope/"+uuid.NewString(), nil, "")
		assert.Equal(t, fiber.StatusNotFound, status)
	}
	assert.Equal(t, series, srv.metrics.Series())
}

func TestMetricsKeyedByRoutePattern(t *testing.T) {
	srv := newTestServer(t, false, nil)

	first, _ := srv.do(t, fiber.MethodGet, "/api/chirps/"+uuid.NewString(), nil, "")
	second, _ := srv.do(t, fiber.MethodGet, "/api/chirps/"+uuid.NewString(), nil, "")
	require.Equal(t, fiber.StatusNotFound, first)
	require.Equal(t, fiber.StatusNotFound, second)

	assert.EqualValues(t, 2, srv.metrics.Requests("/api/chirps/:chirpId", fiber.MethodGet, fiber.StatusNotFound))
	assert.EqualValues(t, 2, srv.metrics.Errors("/api/chirps/:chirpId", fiber.MethodGet, "NOT_FOUND"))
	assert.Equal(t, 1, srv.metrics.Series())
}
