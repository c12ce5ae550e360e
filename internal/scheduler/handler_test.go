package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"fdpg_backend/internal/proposals/document"
	"fdpg_backend/internal/proposals/domain"
	"fdpg_backend/platform/apperr"
	"fdpg_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProposals struct {
	byID    map[uuid.UUID]*domain.Proposal
	removed []uuid.UUID
}

func (f *fakeProposals) GetByID(_ context.Context, id uuid.UUID) (*domain.Proposal, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("proposal not found")
	}
	return p, nil
}

func (f *fakeProposals) RemoveScheduledEvent(_ context.Context, _, scheduleID uuid.UUID) error {
	f.removed = append(f.removed, scheduleID)
	return nil
}

type recordingNotifier struct {
	sent []ReminderPayload
	err  error
}

func (n *recordingNotifier) NotifyReminder(_ context.Context, payload ReminderPayload) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, payload)
	return nil
}

func proposalInStatus(status domain.Status) *domain.Proposal {
	p := proposalWithDeadline(domain.DueDateLocationCheck, baseNow.AddDate(0, 0, 10))
	p.Status = status
	p.Participants = []document.Document{
		{"researcher": map[string]any{"email": "p1@example.org"}},
		{"researcher": map[string]any{"email": "p2@example.org"}},
	}
	return p
}

func scheduleFor(p *domain.Proposal, typ domain.ScheduleType) Schedule {
	id := p.ID
	return Schedule{ID: uuid.New(), Type: typ, ReferenceDocumentID: &id, DueAfter: baseNow, CreatedAt: baseNow}
}

func TestBuildReminderLocationCheckListsPendingLocations(t *testing.T) {
	p := proposalInStatus(domain.StatusLocationCheck)
	p.OpenDizChecks = []string{"UKL"}
	p.DizApprovedLocations = []string{"UKT"}
	p.OpenDizConditionChecks = []string{"UKF"}
	p.UacApprovedLocations = []string{"MRI"}

	payload, ok := BuildReminder(p, scheduleFor(p, domain.ScheduleReminderLocationCheck2))

	require.True(t, ok)
	assert.Equal(t, AudienceLocations, payload.Audience)
	assert.Equal(t, []string{"UKL", "UKT", "UKF"}, payload.Locations)
	require.NotNil(t, payload.DueDate)
	assert.Equal(t, baseNow.AddDate(0, 0, 10), *payload.DueDate)
}

func TestBuildReminderSkipsWhenNothingPending(t *testing.T) {
	p := proposalInStatus(domain.StatusLocationCheck)
	p.UacApprovedLocations = []string{"MRI"}

	_, ok := BuildReminder(p, scheduleFor(p, domain.ScheduleReminderLocationCheck3))
	assert.False(t, ok)
}

func TestBuildReminderRequiresMatchingStatus(t *testing.T) {
	cases := []struct {
		name   string
		status domain.Status
		typ    domain.ScheduleType
	}{
		{"fdpg check after leaving", domain.StatusLocationCheck, domain.ScheduleReminderFdpgCheck},
		{"location check after contracting", domain.StatusContracting, domain.ScheduleReminderLocationCheck1},
		{"contracting after delivery", domain.StatusExpectDataDelivery, domain.ScheduleReminderLocationContracting},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := proposalInStatus(tc.status)
			p.OpenDizChecks = []string{"UKL"}
			p.UacApprovedLocations = []string{"UKL"}
			_, ok := BuildReminder(p, scheduleFor(p, tc.typ))
			assert.False(t, ok)
		})
	}
}

func TestBuildReminderAudiences(t *testing.T) {
	fdpg := proposalInStatus(domain.StatusFdpgCheck)
	payload, ok := BuildReminder(fdpg, scheduleFor(fdpg, domain.ScheduleReminderFdpgCheck))
	require.True(t, ok)
	assert.Equal(t, AudienceFdpg, payload.Audience)

	dms := proposalInStatus(domain.StatusExpectDataDelivery)
	payload, ok = BuildReminder(dms, scheduleFor(dms, domain.ScheduleReminderExpectDataDelivery))
	require.True(t, ok)
	assert.Equal(t, AudienceDms, payload.Audience)

	research := proposalInStatus(domain.StatusDataResearch)
	payload, ok = BuildReminder(research, scheduleFor(research, domain.ScheduleReminderFinishedProject))
	require.True(t, ok)
	assert.Equal(t, AudienceResearchers, payload.Audience)
	assert.Equal(t, []string{"r1@example.org", "p1@example.org", "p2@example.org"}, payload.Recipients)
}

func TestBuildReminderSummaryCoversEventsOfTheDay(t *testing.T) {
	p := proposalInStatus(domain.StatusLocationCheck)
	p.History = []domain.HistoryEvent{
		{Type: domain.HistoryProposalFdpgCheck, CreatedAt: baseNow.Add(-48 * time.Hour)},
		{Type: domain.HistoryProposalLocationCheck, CreatedAt: baseNow.Add(-time.Hour)},
		{Type: domain.HistoryDizApprove, Location: "UKL", CreatedAt: baseNow},
	}

	payload, ok := BuildReminder(p, scheduleFor(p, domain.ScheduleParticipatingResearcherSummary))

	require.True(t, ok)
	assert.Equal(t, AudienceResearchers, payload.Audience)
	assert.Equal(t, []string{"p1@example.org", "p2@example.org"}, payload.Recipients)
	require.Len(t, payload.Summary, 1)
	assert.Equal(t, string(domain.HistoryProposalLocationCheck), payload.Summary[0].Type)
}

func TestBuildReminderSummaryWithoutParticipants(t *testing.T) {
	p := proposalInStatus(domain.StatusLocationCheck)
	p.Participants = nil
	p.History = append(p.History, domain.HistoryEvent{Type: domain.HistoryProposalLocationCheck, CreatedAt: baseNow})

	_, ok := BuildReminder(p, scheduleFor(p, domain.ScheduleParticipatingResearcherSummary))
	assert.False(t, ok)
}

func TestHandleEventNotifiesAndRemovesBackReference(t *testing.T) {
	p := proposalInStatus(domain.StatusFdpgCheck)
	proposals := &fakeProposals{byID: map[uuid.UUID]*domain.Proposal{p.ID: p}}
	notifier := &recordingNotifier{}
	h := NewReminderHandler(proposals, notifier, logger.Discard())
	s := scheduleFor(p, domain.ScheduleReminderFdpgCheck)

	require.NoError(t, h.HandleEvent(context.Background(), s))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, s.ID.String(), notifier.sent[0].ScheduleID)
	assert.Equal(t, []uuid.UUID{s.ID}, proposals.removed)
}

func TestHandleEventIsNoOpAfterStatusMoved(t *testing.T) {
	p := proposalInStatus(domain.StatusLocationCheck)
	proposals := &fakeProposals{byID: map[uuid.UUID]*domain.Proposal{p.ID: p}}
	notifier := &recordingNotifier{}
	h := NewReminderHandler(proposals, notifier, logger.Discard())
	s := scheduleFor(p, domain.ScheduleReminderFdpgCheck)

	require.NoError(t, h.HandleEvent(context.Background(), s))

	assert.Empty(t, notifier.sent)
	assert.Equal(t, []uuid.UUID{s.ID}, proposals.removed)
}

func TestHandleEventMissingProposal(t *testing.T) {
	proposals := &fakeProposals{byID: map[uuid.UUID]*domain.Proposal{}}
	notifier := &recordingNotifier{}
	h := NewReminderHandler(proposals, notifier, logger.Discard())
	id := uuid.New()

	require.NoError(t, h.HandleEvent(context.Background(), Schedule{ID: uuid.New(), Type: domain.ScheduleReminderFdpgCheck, ReferenceDocumentID: &id}))
	require.NoError(t, h.HandleEvent(context.Background(), Schedule{ID: uuid.New(), Type: domain.ScheduleReminderFdpgCheck}))

	assert.Empty(t, notifier.sent)
	assert.Empty(t, proposals.removed)
}

func TestHandleEventPropagatesNotifierFailure(t *testing.T) {
	p := proposalInStatus(domain.StatusFdpgCheck)
	proposals := &fakeProposals{byID: map[uuid.UUID]*domain.Proposal{p.ID: p}}
	h := NewReminderHandler(proposals, &recordingNotifier{err: errors.New("queue down")}, logger.Discard())

	err := h.HandleEvent(context.Background(), scheduleFor(p, domain.ScheduleReminderFdpgCheck))

	require.Error(t, err)
	assert.Empty(t, proposals.removed)
}
