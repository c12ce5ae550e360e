// Package email renders and delivers proposal notification mails.
package email

import (
	"context"
	"time"
)

// Sender delivers rendered notification mails.
type Sender interface {
	SendReminderEmail(ctx context.Context, toEmail string, data ReminderEmail) error
	SendSummaryEmail(ctx context.Context, toEmail string, data SummaryEmail) error
	SendStatusChangedEmail(ctx context.Context, toEmail string, data StatusChangedEmail) error
	SendLocationVoteRevertedEmail(ctx context.Context, toEmail string, data LocationVoteRevertedEmail) error
	SendChangelogReviewEmail(ctx context.Context, toEmail string, count int, reviewURL string) error
}

// ReminderEmail is a deadline reminder for one audience.
type ReminderEmail struct {
	ProjectAbbreviation string
	ReminderType        string
	DueDate             *time.Time
	Locations           []string
	ProposalURL         string
}

// SummaryLine is one history entry in a participant digest.
type SummaryLine struct {
	Type     string
	Location string
	At       time.Time
}

// SummaryEmail is the daily digest for project participants.
type SummaryEmail struct {
	ProjectAbbreviation string
	Entries             []SummaryLine
	ProposalURL         string
}

// StatusChangedEmail tells the owner about a new proposal status.
type StatusChangedEmail struct {
	ProjectAbbreviation string
	From                string
	To                  string
	ProposalURL         string
}

// LocationVoteRevertedEmail asks a location to vote again.
type LocationVoteRevertedEmail struct {
	ProjectAbbreviation string
	Location            string
	ProposalURL         string
}

// NoopSender drops every mail. It is used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendReminderEmail(context.Context, string, ReminderEmail) error { return nil }
func (NoopSender) SendSummaryEmail(context.Context, string, SummaryEmail) error   { return nil }
func (NoopSender) SendStatusChangedEmail(context.Context, string, StatusChangedEmail) error {
	return nil
}
func (NoopSender) SendLocationVoteRevertedEmail(context.Context, string, LocationVoteRevertedEmail) error {
	return nil
}
func (NoopSender) SendChangelogReviewEmail(context.Context, string, int, string) error { return nil }

var _ Sender = NoopSender{}
