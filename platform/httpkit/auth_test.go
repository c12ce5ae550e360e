package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type secretConfig struct{}

func (secretConfig) GetJWTAccessSecret() string { return testSecret }

func signToken(t *testing.T, method jwt.SigningMethod, claims AccessClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newAuthEngine(role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handlers := []gin.HandlerFunc{AuthRequired(secretConfig{})}
	if role != "" {
		handlers = append(handlers, RequireRole(role))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id := MustGetIdentity(c)
		if id == nil {
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": id.UserID(), "location": id.MiiLocation()})
	})
	engine.GET("/me", handlers...)
	return engine
}

func get(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func validClaims() AccessClaims {
	return AccessClaims{
		Email:       "diz@ukl.example",
		Roles:       []string{"DizMember"},
		MiiLocation: "UKL",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthRequiredStoresIdentity(t *testing.T) {
	rec := get(newAuthEngine(""), signToken(t, jwt.SigningMethodHS256, validClaims()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"u-1","location":"UKL"}`, rec.Body.String())
}

func TestAuthRequiredRejectsBadTokens(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noSubject := validClaims()
	noSubject.Subject = ""

	tests := map[string]string{
		"missing":    "",
		"garbage":    "not-a-jwt",
		"expired":    signToken(t, jwt.SigningMethodHS256, expired),
		"no subject": signToken(t, jwt.SigningMethodHS256, noSubject),
		"alg none":   mustNoneToken(t),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, get(newAuthEngine(""), token).Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, validClaims())

	assert.Equal(t, http.StatusOK, get(newAuthEngine("DizMember"), token).Code)
	assert.Equal(t, http.StatusForbidden, get(newAuthEngine("FdpgMember"), token).Code)
}

func mustNoneToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

func TestRequestIDIsGeneratedOrPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	const incoming = "0b7e3c52-6f0e-4d8b-9d33-6ad3f6a0c1a2"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))
}
