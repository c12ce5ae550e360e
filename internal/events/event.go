// Package events holds the domain events exchanged between the proposal,
// location and notification modules. The bus itself lives in platform/events.
package events

import (
	"time"

	"fdpg_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Proposal Domain Events
// =============================================================================

// ProposalStatusChanged is published after a status change was persisted.
type ProposalStatusChanged struct {
	BaseEvent
	ProposalID          uuid.UUID `json:"proposalId"`
	ProjectAbbreviation string    `json:"projectAbbreviation"`
	From                string    `json:"from"`
	To                  string    `json:"to"`
	OwnerEmail          string    `json:"ownerEmail"`
	ChangedBy           string    `json:"changedBy"`
}

func (e ProposalStatusChanged) EventName() string { return "proposals.status.changed" }

// LocationVoteReverted is published when FDPG sends a location back to the
// DIZ check.
type LocationVoteReverted struct {
	BaseEvent
	ProposalID          uuid.UUID `json:"proposalId"`
	ProjectAbbreviation string    `json:"projectAbbreviation"`
	Location            string    `json:"location"`
}

func (e LocationVoteReverted) EventName() string { return "proposals.location_vote.reverted" }

// SummaryEntry is one history entry of a participant digest.
type SummaryEntry struct {
	Type      string    `json:"type"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProposalReminderDue is published by the worker when a reminder or digest
// must be delivered.
type ProposalReminderDue struct {
	BaseEvent
	ProposalID          string         `json:"proposalId"`
	ProjectAbbreviation string         `json:"projectAbbreviation"`
	ReminderType        string         `json:"reminderType"`
	Audience            string         `json:"audience"`
	DueDate             *time.Time     `json:"dueDate,omitempty"`
	Locations           []string       `json:"locations,omitempty"`
	Recipients          []string       `json:"recipients,omitempty"`
	Summary             []SummaryEntry `json:"summary,omitempty"`
}

func (e ProposalReminderDue) EventName() string { return "proposals.reminder.due" }

// =============================================================================
// Location Domain Events
// =============================================================================

// LocationChangelogsGenerated is published after a sync run produced changes
// awaiting FDPG review.
type LocationChangelogsGenerated struct {
	BaseEvent
	Count int `json:"count"`
}

func (e LocationChangelogsGenerated) EventName() string { return "locations.changelogs.generated" }
