// Package proposals provides the proposal lifecycle: drafting, review,
// per-location votes, contracting and the role-scoped panels.
package proposals

import (
	"fdpg_backend/internal/events"
	apphttp "fdpg_backend/internal/http"
	"fdpg_backend/internal/proposals/handler"
	"fdpg_backend/internal/proposals/repository"
	"fdpg_backend/internal/proposals/service"
	"fdpg_backend/platform/logger"
	"fdpg_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the proposals bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule wires the proposals module. The scheduler keeps reminders in
// line with status and deadline changes; locations validates requested codes.
func NewModule(pool *pgxpool.Pool, scheduler service.Scheduler, locations service.LocationValidator, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, scheduler, locations, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "proposals"
}

// Repository returns the proposal store for the reminder handler.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts proposal routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	proposals := ctx.Protected.Group("/proposals")
	proposals.POST("", m.handler.Create)
	proposals.GET("", m.handler.List)
	proposals.GET("/:id", m.handler.Get)
	proposals.PUT("/:id", m.handler.Update)
	proposals.DELETE("/:id", m.handler.Delete)
	proposals.PUT("/:id/status", m.handler.SetStatus)
	proposals.POST("/:id/diz-vote", m.handler.DizVote)
	proposals.POST("/:id/uac-vote", m.handler.UacVote)
	proposals.POST("/:id/contract-vote", m.handler.ContractVote)
	proposals.POST("/:id/condition-review", m.handler.ReviewCondition)

	fdpg := ctx.Fdpg.Group("/proposals")
	fdpg.POST("/:id/revert-location-vote", m.handler.RevertLocationVote)
	fdpg.PUT("/:id/deadlines", m.handler.SetDeadlines)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
