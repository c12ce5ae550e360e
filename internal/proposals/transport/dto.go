package transport

import (
	"time"

	"fdpg_backend/internal/proposals/document"
	"fdpg_backend/internal/proposals/domain"
)

// CreateProposalRequest starts a new draft.
type CreateProposalRequest struct {
	ProjectAbbreviation string              `json:"projectAbbreviation" validate:"required,min=3,max=30"`
	Applicant           document.Document   `json:"applicant,omitempty"`
	ProjectResponsible  document.Document   `json:"projectResponsible,omitempty"`
	Participants        []document.Document `json:"participants,omitempty"`
	UserProject         document.Document   `json:"userProject,omitempty"`
}

// ListProposalsRequest selects a panel.
type ListProposalsRequest struct {
	Panel string `form:"panel" validate:"required"`
}

// SetStatusRequest moves a proposal to another status.
type SetStatusRequest struct {
	Status    string   `json:"status" validate:"required"`
	Locations []string `json:"locations,omitempty" validate:"omitempty,dive,location_code"`
}

// VoteRequest is a DIZ, UAC or contract vote of the caller's location.
type VoteRequest struct {
	Approve    *bool  `json:"approve" validate:"required"`
	Condition  string `json:"condition,omitempty" validate:"max=5000"`
	DataAmount int    `json:"dataAmount" validate:"min=0"`
	Reason     string `json:"reason,omitempty" validate:"max=5000"`
}

// ConditionReviewRequest accepts or declines a conditional approval.
type ConditionReviewRequest struct {
	Location string `json:"location" validate:"required,location_code"`
	Accept   *bool  `json:"accept" validate:"required"`
}

// RevertLocationVoteRequest sends a location back to the DIZ check.
type RevertLocationVoteRequest struct {
	Location string `json:"location" validate:"required,location_code"`
}

// SetDeadlinesRequest edits proposal deadlines. A null value clears one.
type SetDeadlinesRequest struct {
	Deadlines map[domain.DueDateField]*time.Time `json:"deadlines" validate:"required,min=1"`
}

// ProposalResponse is a proposal projected for the caller.
type ProposalResponse struct {
	Proposal       document.Document      `json:"proposal"`
	IsDoneOverview *domain.IsDoneOverview `json:"isDoneOverview,omitempty"`
	LocationState  domain.LocationState   `json:"locationState,omitempty"`
}

// ProposalListResponse lists the proposals of one panel.
type ProposalListResponse struct {
	Panel string             `json:"panel"`
	Items []ProposalResponse `json:"items"`
	Total int                `json:"total"`
}

// RevertLocationVoteResponse reports whether the vote was reverted.
type RevertLocationVoteResponse struct {
	Reverted bool `json:"reverted"`
}
