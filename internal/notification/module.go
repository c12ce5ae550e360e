// Package notification provides event handlers that turn proposal and
// location domain events into e-mails. Domain modules publish events and
// never talk to the mail transport directly.
package notification

import (
	"context"
	"errors"
	"strings"

	"fdpg_backend/internal/email"
	"fdpg_backend/internal/events"
	"fdpg_backend/platform/config"
	"fdpg_backend/platform/logger"
)

const summaryReminderType = "PARTICIPATING_RESEARCHER_SUMMARY"

const (
	audienceFdpg        = "fdpg"
	audienceLocations   = "locations"
	audienceResearchers = "researchers"
	audienceDms         = "dms"
)

// Module subscribes to domain events and delivers notification mails.
type Module struct {
	sender email.Sender
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates a new notification module.
func New(sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{sender: sender, cfg: cfg, log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	// Proposal domain events
	bus.Subscribe(events.ProposalReminderDue{}.EventName(), m)
	bus.Subscribe(events.ProposalStatusChanged{}.EventName(), m)
	bus.Subscribe(events.LocationVoteReverted{}.EventName(), m)

	// Location domain events
	bus.Subscribe(events.LocationChangelogsGenerated{}.EventName(), m)
}

// Handle routes events to the specific handler methods.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ProposalReminderDue:
		return m.handleReminderDue(ctx, e)
	case events.ProposalStatusChanged:
		return m.handleStatusChanged(ctx, e)
	case events.LocationVoteReverted:
		return m.handleLocationVoteReverted(ctx, e)
	case events.LocationChangelogsGenerated:
		return m.handleChangelogsGenerated(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleReminderDue(ctx context.Context, e events.ProposalReminderDue) error {
	recipients := m.recipientsFor(e.Audience, e.Recipients)
	if len(recipients) == 0 {
		m.log.Warn("reminder without recipients", "proposalId", e.ProposalID, "type", e.ReminderType, "audience", e.Audience)
		return nil
	}

	proposalURL := m.proposalURL(e.ProposalID)
	var errs []error
	for _, to := range recipients {
		var err error
		if e.ReminderType == summaryReminderType {
			err = m.sender.SendSummaryEmail(ctx, to, email.SummaryEmail{
				ProjectAbbreviation: e.ProjectAbbreviation,
				Entries:             summaryLines(e.Summary),
				ProposalURL:         proposalURL,
			})
		} else {
			err = m.sender.SendReminderEmail(ctx, to, email.ReminderEmail{
				ProjectAbbreviation: e.ProjectAbbreviation,
				ReminderType:        e.ReminderType,
				DueDate:             e.DueDate,
				Locations:           e.Locations,
				ProposalURL:         proposalURL,
			})
		}
		if err != nil {
			m.log.Error("failed to send reminder email", "error", err, "proposalId", e.ProposalID, "type", e.ReminderType)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	m.log.Info("reminder sent", "proposalId", e.ProposalID, "type", e.ReminderType, "recipients", len(recipients))
	return nil
}

func (m *Module) handleStatusChanged(ctx context.Context, e events.ProposalStatusChanged) error {
	if e.OwnerEmail == "" {
		return nil
	}
	err := m.sender.SendStatusChangedEmail(ctx, e.OwnerEmail, email.StatusChangedEmail{
		ProjectAbbreviation: e.ProjectAbbreviation,
		From:                e.From,
		To:                  e.To,
		ProposalURL:         m.proposalURL(e.ProposalID.String()),
	})
	if err != nil {
		m.log.Error("failed to send status email", "error", err, "proposalId", e.ProposalID)
		return err
	}
	return nil
}

func (m *Module) handleLocationVoteReverted(ctx context.Context, e events.LocationVoteReverted) error {
	mailbox := m.cfg.GetFdpgMailbox()
	if mailbox == "" {
		return nil
	}
	err := m.sender.SendLocationVoteRevertedEmail(ctx, mailbox, email.LocationVoteRevertedEmail{
		ProjectAbbreviation: e.ProjectAbbreviation,
		Location:            e.Location,
		ProposalURL:         m.proposalURL(e.ProposalID.String()),
	})
	if err != nil {
		m.log.Error("failed to send vote reverted email", "error", err, "proposalId", e.ProposalID, "location", e.Location)
		return err
	}
	return nil
}

func (m *Module) handleChangelogsGenerated(ctx context.Context, e events.LocationChangelogsGenerated) error {
	mailbox := m.cfg.GetFdpgMailbox()
	if mailbox == "" || e.Count == 0 {
		return nil
	}
	reviewURL := strings.TrimRight(m.cfg.GetAppBaseURL(), "/") + "/locations/sync-changelogs"
	if err := m.sender.SendChangelogReviewEmail(ctx, mailbox, e.Count, reviewURL); err != nil {
		m.log.Error("failed to send changelog review email", "error", err, "count", e.Count)
		return err
	}
	return nil
}

// recipientsFor resolves an audience to addresses. Location reminders go to
// the FDPG mailbox, which relays them to the sites.
func (m *Module) recipientsFor(audience string, explicit []string) []string {
	switch audience {
	case audienceResearchers:
		return uniqueNonEmpty(explicit)
	case audienceFdpg, audienceLocations:
		return uniqueNonEmpty([]string{m.cfg.GetFdpgMailbox()})
	case audienceDms:
		return uniqueNonEmpty([]string{m.cfg.GetDmsMailbox()})
	default:
		return nil
	}
}

func (m *Module) proposalURL(id string) string {
	return strings.TrimRight(m.cfg.GetAppBaseURL(), "/") + "/proposals/" + id
}

func summaryLines(entries []events.SummaryEntry) []email.SummaryLine {
	out := make([]email.SummaryLine, 0, len(entries))
	for _, e := range entries {
		out = append(out, email.SummaryLine{Type: e.Type, Location: e.Location, At: e.CreatedAt})
	}
	return out
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
