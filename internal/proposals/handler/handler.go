package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apphttp "fdpg_backend/internal/http"
	"fdpg_backend/internal/proposals/document"
	"fdpg_backend/internal/proposals/domain"
	"fdpg_backend/internal/proposals/service"
	"fdpg_backend/internal/proposals/transport"
	"fdpg_backend/platform/httpkit"
	"fdpg_backend/platform/validator"
)

// Handler handles HTTP requests for proposals.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid proposal ID"
)

// New creates a new proposals handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create starts a new draft.
// POST /api/v1/proposals
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateProposalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, ok := apphttp.RequestUser(c)
	if !ok {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), user, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// List returns the proposals of one panel.
// GET /api/v1/proposals?panel=...
func (h *Handler) List(c *gin.Context) {
	var req transport.ListProposalsRequest
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

	result, err := h.svc.List(c.Request.Context(), user, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns one proposal.
// GET /api/v1/proposals/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, ok := apphttp.RequestUser(c)
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), user, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update merges a partial proposal document.
// PUT /api/v1/proposals/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body document.Document
	if err := c.ShouldBindJSON(&body); err != nil || body == nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	user, ok := apphttp.RequestUser(c)
	if !ok {
		return
	}

	result, err := h.svc.Update(c.Request.Context(), user, id, body)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes a draft.
// DELETE /api/v1/proposals/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, ok := apphttp.RequestUser(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), user, id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// SetStatus performs a status transition.
// PUT /api/v1/proposals/:id/status
func (h *Handler) SetStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.SetStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, ok := apphttp.RequestUser(c)
	if !ok {
		return
	}

	result, err := h.svc.SetStatus(c.Request.Context(), user, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DizVote records the DIZ decision of the caller's location.
// POST /api/v1/proposals/:id/diz-vote
func (h *Handler) DizVote(c *gin.Context) {
	h.vote(c, h.svc.DizVote)
}

// UacVote records the UAC decision of the caller's location.
// POST /api/v1/proposals/:id/uac-vote
func (h *Handler) UacVote(c *gin.Context) {
	h.vote(c, h.svc.UacVote)
}

// ContractVote signs or declines the contract for the caller's location.
// POST /api/v1/proposals/:id/contract-vote
func (h *Handler) ContractVote(c *gin.Context) {
	h.vote(c, h.svc.SignContract)
}

// ReviewCondition accepts or declines a conditional approval.
// POST /api/v1/proposals/:id/condition-review
func (h *Handler) ReviewCondition(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.ConditionReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, ok := apphttp.RequestUser(c)
	if !ok {
		return
	}

	result, err := h.svc.ReviewCondition(c.Request.Context(), user, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RevertLocationVote sends a location back to the DIZ check.
// POST /api/v1/proposals/:id/revert-location-vote
func (h *Handler) RevertLocationVote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.RevertLocationVoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, ok := apphttp.RequestUser(c)
	if !ok {
		return
	}

	result, err := h.svc.RevertLocationVote(c.Request.Context(), user, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SetDeadlines edits deadlines and re-plans reminders.
// PUT /api/v1/proposals/:id/deadlines
func (h *Handler) SetDeadlines(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.SetDeadlinesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, ok := apphttp.RequestUser(c)
	if !ok {
		return
	}

	result, err := h.svc.SetDeadlines(c.Request.Context(), user, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

type voteFunc func(ctx context.Context, user domain.RequestUser, id uuid.UUID, req transport.VoteRequest) (transport.ProposalResponse, error)

func (h *Handler) vote(c *gin.Context, fn voteFunc) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req transport.VoteRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, ok := apphttp.RequestUser(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), user, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}
