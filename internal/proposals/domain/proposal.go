package domain

import (
	"fmt"
	"time"

	"fdpg_backend/internal/proposals/document"

	"github.com/google/uuid"
)

// Version is the audit counter of a proposal.
type Version struct {
	Mayor int `json:"mayor"`
	Minor int `json:"minor"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Mayor, v.Minor)
}

// Owner is the researcher who created the proposal.
type Owner struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	MiiLocation string `json:"miiLocation,omitempty"`
}

// HistoryEvent is an append-only audit entry.
type HistoryEvent struct {
	Type            HistoryEventType `json:"type"`
	Location        string           `json:"location,omitempty"`
	Owner           *Owner           `json:"owner,omitempty"`
	ProposalVersion Version          `json:"proposalVersion"`
	Data            map[string]any   `json:"data,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// ScheduledEvent back-references a row of the schedule collection.
type ScheduledEvent struct {
	Type       ScheduleType `json:"type"`
	ScheduleID uuid.UUID    `json:"scheduleId"`
}

// ConditionalApproval is a UAC approval bound to a condition that FDPG reviews.
type ConditionalApproval struct {
	ID         string     `json:"_id"`
	Location   string     `json:"location"`
	Condition  string     `json:"condition"`
	DataAmount int        `json:"dataAmount"`
	IsAccepted bool       `json:"isAccepted"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy string     `json:"reviewedBy,omitempty"`
	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// UacApproval is an unconditional (or accepted conditional) location approval.
type UacApproval struct {
	ID            string    `json:"_id"`
	Location      string    `json:"location"`
	DataAmount    int       `json:"dataAmount"`
	IsConditional bool      `json:"isConditional"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DeclineReason records why a location dropped out.
type DeclineReason struct {
	ID        string           `json:"_id"`
	Location  string           `json:"location"`
	Type      HistoryEventType `json:"type"`
	Reason    string           `json:"reason"`
	CreatedBy string           `json:"createdBy"`
	CreatedAt time.Time        `json:"createdAt"`
}

// AdditionalLocationInformation is location-provided publication metadata.
type AdditionalLocationInformation struct {
	ID                      string `json:"_id"`
	Location                string `json:"location"`
	LegalBasis              bool   `json:"legalBasis"`
	LocationPublicationName string `json:"locationPublicationName"`
}

// Proposal is the aggregate root of a research data access request.
type Proposal struct {
	ID                  uuid.UUID    `json:"_id"`
	ProjectAbbreviation string       `json:"projectAbbreviation"`
	Status              Status       `json:"status"`
	Type                ProposalType `json:"type"`
	Version             Version      `json:"version"`
	OwnerID             string       `json:"ownerId"`
	Owner               Owner        `json:"owner"`
	IsLocked            bool         `json:"isLocked"`

	Applicant           document.Document   `json:"applicant,omitempty"`
	ProjectResponsible  document.Document   `json:"projectResponsible,omitempty"`
	Participants        []document.Document `json:"participants"`
	UserProject         document.Document   `json:"userProject,omitempty"`
	SelectedDataSources []document.Document `json:"selectedDataSources"`

	OpenDizChecks                 []string `json:"openDizChecks"`
	OpenDizConditionChecks        []string `json:"openDizConditionChecks"`
	DizApprovedLocations          []string `json:"dizApprovedLocations"`
	UacApprovedLocations          []string `json:"uacApprovedLocations"`
	RequestedButExcludedLocations []string `json:"requestedButExcludedLocations"`
	SignedContracts               []string `json:"signedContracts"`

	ConditionalApprovals          []ConditionalApproval           `json:"conditionalApprovals"`
	UacApprovals                  []UacApproval                   `json:"uacApprovals"`
	DeclineReasons                []DeclineReason                 `json:"declineReasons"`
	LocationConditionDraft        []document.Document             `json:"locationConditionDraft"`
	AdditionalLocationInformation []AdditionalLocationInformation `json:"additionalLocationInformation"`

	History         []HistoryEvent   `json:"history"`
	ScheduledEvents []ScheduledEvent `json:"scheduledEvents"`

	FdpgChecklist  document.Document   `json:"fdpgChecklist,omitempty"`
	OpenFdpgTasks  []document.Document `json:"openFdpgTasks"`
	FdpgCheckNotes string              `json:"fdpgCheckNotes,omitempty"`

	Deadlines map[DueDateField]*time.Time `json:"deadlines"`

	NumberOfRequestedLocations int `json:"numberOfRequestedLocations"`
	NumberOfApprovedLocations  int `json:"numberOfApprovedLocations"`
	NumberOfSignedLocations    int `json:"numberOfSignedLocations"`
	TotalPromisedDataAmount    int `json:"totalPromisedDataAmount"`
	TotalContractedDataAmount  int `json:"totalContractedDataAmount"`

	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewDraft creates a fresh proposal owned by user.
func NewDraft(abbreviation string, proposalType ProposalType, user RequestUser, now time.Time) *Proposal {
	owner := Owner{ID: user.UserID, Email: user.Email, MiiLocation: user.MiiLocation}
	p := &Proposal{
		ID:                  uuid.New(),
		ProjectAbbreviation: abbreviation,
		Status:              StatusDraft,
		Type:                proposalType,
		Version:             Version{Mayor: 0, Minor: 0},
		OwnerID:             user.UserID,
		Owner:               owner,
		Deadlines:           map[DueDateField]*time.Time{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	p.addHistory(HistoryProposalCreated, "", user, nil, now)
	return p
}

// Deadline returns the deadline set for field, if any.
func (p *Proposal) Deadline(field DueDateField) (time.Time, bool) {
	if p.Deadlines == nil {
		return time.Time{}, false
	}
	d := p.Deadlines[field]
	if d == nil {
		return time.Time{}, false
	}
	return *d, true
}

// SetDeadline stores a deadline, allocating the map when needed.
func (p *Proposal) SetDeadline(field DueDateField, at *time.Time) {
	if p.Deadlines == nil {
		p.Deadlines = map[DueDateField]*time.Time{}
	}
	p.Deadlines[field] = at
}

// HasScheduledEvent reports whether an event of type t is referenced.
func (p *Proposal) HasScheduledEvent(t ScheduleType) bool {
	for _, ev := range p.ScheduledEvents {
		if ev.Type == t {
			return true
		}
	}
	return false
}

// ParticipantEmails lists the researcher e-mails of all participants.
func (p *Proposal) ParticipantEmails() []string {
	emails := make([]string, 0, len(p.Participants))
	for _, participant := range p.Participants {
		if email, ok := document.Lookup(participant, "researcher", "email"); ok {
			if s, ok := email.(string); ok && s != "" {
				emails = append(emails, s)
			}
		}
	}
	return emails
}

// DesiredLocations reads the locations requested in the form content.
func (p *Proposal) DesiredLocations() []string {
	raw, ok := document.Lookup(p.UserProject, "addressees", "desiredLocations")
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (p *Proposal) addHistory(t HistoryEventType, location string, user RequestUser, data map[string]any, now time.Time) {
	var owner *Owner
	if user.UserID != "" {
		owner = &Owner{ID: user.UserID, Email: user.Email, MiiLocation: user.MiiLocation}
	}
	p.History = append(p.History, HistoryEvent{
		Type:            t,
		Location:        location,
		Owner:           owner,
		ProposalVersion: p.Version,
		Data:            data,
		CreatedAt:       now,
	})
}
