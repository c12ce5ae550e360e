// Package http wires the HTTP-facing modules of the FDPG backend into one
// gin engine.
package http

import (
	"context"

	"fdpg_backend/platform/config"
	"fdpg_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker is pinged by the readiness endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups a module may mount on.
type RouterContext struct {
	// Protected requires a valid access token.
	Protected *gin.RouterGroup
	// Fdpg additionally requires the FDPG member role.
	Fdpg *gin.RouterGroup
}

// App is assembled in cmd/api and handed to the router.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  []HealthChecker
	Modules []Module
}
