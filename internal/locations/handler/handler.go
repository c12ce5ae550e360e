package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apphttp "fdpg_backend/internal/http"
	"fdpg_backend/internal/locations/service"
	"fdpg_backend/internal/locations/transport"
	"fdpg_backend/platform/httpkit"
	"fdpg_backend/platform/validator"
)

// SyncTrigger queues an immediate codesystem sync.
type SyncTrigger interface {
	EnqueueLocationSync(ctx context.Context) error
}

// Handler handles HTTP requests for locations and their sync changelogs.
type Handler struct {
	svc  *service.Service
	val  *validator.Validator
	sync SyncTrigger
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid changelog ID"
	msgSyncDisabled     = "location sync is not configured"
)

// New creates a new locations handler. sync may be nil when no task queue
// is configured.
func New(svc *service.Service, val *validator.Validator, sync SyncTrigger) *Handler {
	return &Handler{svc: svc, val: val, sync: sync}
}

// List returns the location registry.
// GET /api/v1/locations
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.ListLocations(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListChangelogs returns sync changelogs.
// GET /api/v1/locations/sync-changelogs
func (h *Handler) ListChangelogs(c *gin.Context) {
	var req transport.ListChangelogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}
	user, ok := apphttp.RequestUser(c)
	if !ok {
		return
	}

	result, err := h.svc.ListChangelogs(c.Request.Context(), user, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetChangelogStatus approves or declines a changelog.
// PUT /api/v1/locations/sync-changelogs/:id/status
func (h *Handler) SetChangelogStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.SetChangelogStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}
	user, ok := apphttp.RequestUser(c)
	if !ok {
		return
	}

	result, err := h.svc.SetChangelogStatus(c.Request.Context(), user, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// TriggerSync queues a codesystem sync outside the cron schedule.
// POST /api/v1/locations/sync
func (h *Handler) TriggerSync(c *gin.Context) {
	if h.sync == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, msgSyncDisabled, nil)
		return
	}
	if httpkit.HandleError(c, h.sync.EnqueueLocationSync(c.Request.Context())) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, gin.H{"queued": true})
}
