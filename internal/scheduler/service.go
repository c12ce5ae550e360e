package scheduler

import (
	"context"
	"slices"
	"time"

	"fdpg_backend/internal/proposals/domain"
	"fdpg_backend/platform/logger"

	"github.com/google/uuid"
)

// Service creates and cancels the schedules of proposals and keeps
// proposal.scheduledEvents in sync. Callers persist the proposal.
type Service struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

// NewService creates a scheduler service.
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// CreateEvents persists one schedule per type whose due date can be derived.
// A pending summary is never duplicated.
func (s *Service) CreateEvents(ctx context.Context, p *domain.Proposal, types []domain.ScheduleType) error {
	now := s.now()
	var rows []Schedule
	for _, t := range types {
		if t == domain.ScheduleParticipatingResearcherSummary && p.HasScheduledEvent(t) {
			continue
		}
		due, ok := DueAfter(t, p, now)
		if !ok {
			continue
		}
		ref := p.ID
		rows = append(rows, Schedule{
			ID:                  uuid.New(),
			Type:                t,
			ReferenceDocumentID: &ref,
			DueAfter:            due,
			CreatedAt:           now,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	if err := s.store.Insert(ctx, rows...); err != nil {
		return err
	}
	for _, row := range rows {
		p.ScheduledEvents = append(p.ScheduledEvents, domain.ScheduledEvent{Type: row.Type, ScheduleID: row.ID})
	}
	s.log.Info("schedules created", "proposalId", p.ID, "count", len(rows))
	return nil
}

// CancelEventsForProposal removes every schedule of p.
func (s *Service) CancelEventsForProposal(ctx context.Context, p *domain.Proposal) error {
	return s.cancel(ctx, p, func(domain.ScheduledEvent) bool { return true })
}

// CancelEventsByTypesForProposal removes the schedules of p with the given types.
func (s *Service) CancelEventsByTypesForProposal(ctx context.Context, p *domain.Proposal, types []domain.ScheduleType) error {
	return s.cancel(ctx, p, func(ev domain.ScheduledEvent) bool { return slices.Contains(types, ev.Type) })
}

func (s *Service) cancel(ctx context.Context, p *domain.Proposal, match func(domain.ScheduledEvent) bool) error {
	var ids []uuid.UUID
	kept := p.ScheduledEvents[:0:0]
	for _, ev := range p.ScheduledEvents {
		if match(ev) {
			ids = append(ids, ev.ScheduleID)
			continue
		}
		kept = append(kept, ev)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.store.DeleteByIDs(ctx, ids); err != nil {
		return err
	}
	p.ScheduledEvents = kept
	return nil
}

// RemoveAndCreateEventsByChangeList regenerates only the reminders derived
// from the changed deadlines, limited to those relevant for the current status.
func (s *Service) RemoveAndCreateEventsByChangeList(ctx context.Context, p *domain.Proposal, changed []domain.DueDateField) error {
	var affected []domain.ScheduleType
	for _, field := range changed {
		affected = append(affected, TypesForDeadline(field)...)
	}
	if len(affected) == 0 {
		return nil
	}
	if err := s.CancelEventsByTypesForProposal(ctx, p, affected); err != nil {
		return err
	}

	var recreate []domain.ScheduleType
	for _, t := range RemindersFor(p.Status) {
		if slices.Contains(affected, t) {
			recreate = append(recreate, t)
		}
	}
	return s.CreateEvents(ctx, p, recreate)
}

// HandleStatusChange drops the reminders of the status that was left,
// schedules those of the new one and queues the participant digest.
func (s *Service) HandleStatusChange(ctx context.Context, p *domain.Proposal, from domain.Status) error {
	if err := s.CancelEventsByTypesForProposal(ctx, p, RemindersFor(from)); err != nil {
		return err
	}

	types := slices.Clone(RemindersFor(p.Status))
	if len(p.ParticipantEmails()) > 0 && len(p.History) > 0 && domain.IsSummaryEvent(p.History[len(p.History)-1].Type) {
		types = append(types, domain.ScheduleParticipatingResearcherSummary)
	}
	return s.CreateEvents(ctx, p, types)
}
