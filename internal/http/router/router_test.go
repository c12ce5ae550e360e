package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "fdpg_backend/internal/http"
	"fdpg_backend/internal/proposals/domain"
	"fdpg_backend/platform/httpkit"
	"fdpg_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct{}

func (testConfig) GetHTTPAddr() string        { return ":0" }
func (testConfig) GetCORSAllowAll() bool      { return false }
func (testConfig) GetCORSOrigins() []string   { return []string{"http://localhost:4200"} }
func (testConfig) GetCORSAllowCreds() bool    { return true }
func (testConfig) GetJWTAccessSecret() string { return "secret" }

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type stubModule struct{}

func (stubModule) Name() string { return "stub" }
func (stubModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/protected", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	ctx.Fdpg.GET("/fdpg-only", func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

func newTestEngine(health ...apphttp.HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config:  testConfig{},
		Logger:  logger.Discard(),
		Health:  health,
		Modules: []apphttp.Module{stubModule{}},
	})
}

func serve(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestEngine(), "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestReadinessReportsFailingDependency(t *testing.T) {
	engine := newTestEngine(pingFunc(func(context.Context) error { return errors.New("down") }))

	assert.Equal(t, http.StatusServiceUnavailable, serve(engine, "/api/ready").Code)
}

func TestModuleRoutesRequireAuth(t *testing.T) {
	engine := newTestEngine()

	assert.Equal(t, http.StatusUnauthorized, serve(engine, "/api/v1/protected").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, "/api/v1/fdpg-only").Code)
}

func bearer(t *testing.T, role domain.Role) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, httpkit.AccessClaims{
		Roles:            []string{string(role)},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestFdpgGroupRequiresRole(t *testing.T) {
	engine := newTestEngine()
	call := func(path string, role domain.Role) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", bearer(t, role))
		engine.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("/api/v1/protected", domain.RoleResearcher).Code)
	assert.Equal(t, http.StatusForbidden, call("/api/v1/fdpg-only", domain.RoleResearcher).Code)

	rec := call("/api/v1/fdpg-only", domain.RoleFdpgMember)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(httpkit.RequestIDHeader))
}
