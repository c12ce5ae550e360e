package scheduler

import (
	"context"
	"time"

	"fdpg_backend/internal/proposals/domain"
	"fdpg_backend/platform/apperr"
	"fdpg_backend/platform/logger"

	"github.com/google/uuid"
)

// ProposalReader is the proposal access the handlers need.
type ProposalReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error)
	RemoveScheduledEvent(ctx context.Context, proposalID, scheduleID uuid.UUID) error
}

// Notifier delivers reminder payloads.
type Notifier interface {
	NotifyReminder(ctx context.Context, payload ReminderPayload) error
}

// ReminderHandler turns claimed schedules into notifications. It is a no-op
// when the proposal is gone or no longer in the state the reminder was
// created for, since cancellation can race with a claim.
type ReminderHandler struct {
	proposals ProposalReader
	notifier  Notifier
	log       *logger.Logger
}

// NewReminderHandler creates the schedule event handler.
func NewReminderHandler(proposals ProposalReader, notifier Notifier, log *logger.Logger) *ReminderHandler {
	return &ReminderHandler{proposals: proposals, notifier: notifier, log: log}
}

var _ EventHandler = (*ReminderHandler)(nil)

func (h *ReminderHandler) HandleEvent(ctx context.Context, s Schedule) error {
	if s.ReferenceDocumentID == nil {
		h.log.Warn("schedule without proposal reference", "scheduleId", s.ID, "type", s.Type)
		return nil
	}

	p, err := h.proposals.GetByID(ctx, *s.ReferenceDocumentID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			h.log.Info("schedule references missing proposal", "scheduleId", s.ID, "proposalId", *s.ReferenceDocumentID)
			return nil
		}
		return err
	}

	payload, ok := BuildReminder(p, s)
	if ok {
		if err := h.notifier.NotifyReminder(ctx, payload); err != nil {
			return err
		}
	} else {
		h.log.Info("schedule no longer applies", "scheduleId", s.ID, "type", s.Type, "status", p.Status)
	}

	return h.proposals.RemoveScheduledEvent(ctx, p.ID, s.ID)
}

// BuildReminder derives the notification for s, reporting false when the
// proposal no longer needs it.
func BuildReminder(p *domain.Proposal, s Schedule) (ReminderPayload, bool) {
	payload := ReminderPayload{
		ScheduleID:          s.ID.String(),
		ProposalID:          p.ID.String(),
		ProjectAbbreviation: p.ProjectAbbreviation,
		Type:                string(s.Type),
	}

	if s.Type == domain.ScheduleParticipatingResearcherSummary {
		since := s.CreatedAt.UTC().Truncate(day).Add(-time.Nanosecond)
		events := domain.HistorySince(p, since)
		recipients := p.ParticipantEmails()
		if len(events) == 0 || len(recipients) == 0 {
			return payload, false
		}
		for _, ev := range events {
			payload.Summary = append(payload.Summary, SummaryEntry{Type: string(ev.Type), Location: ev.Location, CreatedAt: ev.CreatedAt})
		}
		payload.Audience = AudienceResearchers
		payload.Recipients = recipients
		return payload, true
	}

	rule, ok := reminderRules[s.Type]
	if !ok || p.Status != rule.status {
		return payload, false
	}
	if due, ok := p.Deadline(rule.field); ok {
		payload.DueDate = &due
	}

	switch s.Type {
	case domain.ScheduleReminderFdpgCheck:
		payload.Audience = AudienceFdpg
	case domain.ScheduleReminderLocationCheck1, domain.ScheduleReminderLocationCheck2, domain.ScheduleReminderLocationCheck3:
		var pending []string
		pending = append(pending, p.OpenDizChecks...)
		pending = append(pending, p.DizApprovedLocations...)
		pending = append(pending, p.OpenDizConditionChecks...)
		if len(pending) == 0 {
			return payload, false
		}
		payload.Audience = AudienceLocations
		payload.Locations = pending
	case domain.ScheduleReminderLocationContracting:
		if len(p.UacApprovedLocations) == 0 {
			return payload, false
		}
		payload.Audience = AudienceLocations
		payload.Locations = append([]string(nil), p.UacApprovedLocations...)
	case domain.ScheduleReminderExpectDataDelivery:
		payload.Audience = AudienceDms
	case domain.ScheduleReminderFinishedProject:
		payload.Audience = AudienceResearchers
		if p.Owner.Email != "" {
			payload.Recipients = append(payload.Recipients, p.Owner.Email)
		}
		payload.Recipients = append(payload.Recipients, p.ParticipantEmails()...)
		if len(payload.Recipients) == 0 {
			return payload, false
		}
	}
	return payload, true
}
