// Package locations provides the location registry and its reconciliation
// with the external codesystem.
package locations

import (
	apphttp "fdpg_backend/internal/http"
	"fdpg_backend/internal/locations/handler"
	"fdpg_backend/internal/locations/repository"
	"fdpg_backend/internal/locations/service"
	"fdpg_backend/platform/logger"
	"fdpg_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the locations bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the locations module with all its
// dependencies. sync may be nil, which disables the manual sync route.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, sync handler.SyncTrigger, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val, sync)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "locations"
}

// Service returns the service layer for location validation by other modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository, used by the sync job.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts location routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/locations", m.handler.List)
	ctx.Fdpg.POST("/locations/sync", m.handler.TriggerSync)

	changelogs := ctx.Fdpg.Group("/locations/sync-changelogs")
	changelogs.GET("", m.handler.ListChangelogs)
	changelogs.PUT("/:id/status", m.handler.SetChangelogStatus)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
