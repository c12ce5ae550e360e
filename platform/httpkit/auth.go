package httpkit

import (
	"net/http"
	"strings"

	"fdpg_backend/platform/config"
	"fdpg_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	errMissingToken = "missing token"
	errInvalidToken = "invalid token"
)

// AccessClaims are the claims the identity provider puts in access tokens.
type AccessClaims struct {
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	MiiLocation string   `json:"mii_location,omitempty"`
	jwt.RegisteredClaims
}

// AuthRequired validates the bearer token and stores the caller identity.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	secret := []byte(cfg.GetJWTAccessSecret())
	parser := jwt.NewParser(jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}))

	return func(c *gin.Context) {
		rawToken, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		rawToken = strings.TrimSpace(rawToken)
		if !ok || rawToken == "" {
			abortUnauthorized(c, errMissingToken)
			return
		}

		claims := &AccessClaims{}
		_, err := parser.ParseWithClaims(rawToken, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil || strings.TrimSpace(claims.Subject) == "" {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), claims.Subject))
		c.Set(identityKey, &identity{
			userID:      claims.Subject,
			email:       claims.Email,
			roles:       claims.Roles,
			miiLocation: claims.MiiLocation,
		})
		c.Next()
	}
}

// RequireRole aborts with 403 unless the caller holds role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id == nil || !id.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}
