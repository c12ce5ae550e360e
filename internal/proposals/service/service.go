package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fdpg_backend/internal/events"
	"fdpg_backend/internal/proposals/document"
	"fdpg_backend/internal/proposals/domain"
	"fdpg_backend/internal/proposals/filter"
	"fdpg_backend/internal/proposals/merge"
	"fdpg_backend/internal/proposals/repository"
	"fdpg_backend/internal/proposals/transport"
	"fdpg_backend/platform/apperr"
	"fdpg_backend/platform/logger"
	"fdpg_backend/platform/sanitize"
)

const proposalNotFoundMessage = "proposal not found"

// Scheduler keeps the reminder schedule of a proposal in line with its
// status and deadlines.
type Scheduler interface {
	CancelEventsForProposal(ctx context.Context, p *domain.Proposal) error
	RemoveAndCreateEventsByChangeList(ctx context.Context, p *domain.Proposal, changed []domain.DueDateField) error
	HandleStatusChange(ctx context.Context, p *domain.Proposal, from domain.Status) error
}

// LocationValidator checks location codes against the registry.
type LocationValidator interface {
	ValidateCodes(ctx context.Context, codes []string) error
}

// Service provides the proposal lifecycle operations.
type Service struct {
	repo      repository.Repository
	scheduler Scheduler
	locations LocationValidator
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new proposals service.
func New(repo repository.Repository, scheduler Scheduler, locations LocationValidator, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, scheduler: scheduler, locations: locations, bus: bus, log: log, now: time.Now}
}

// Create starts a draft owned by the caller.
func (s *Service) Create(ctx context.Context, user domain.RequestUser, req transport.CreateProposalRequest) (transport.ProposalResponse, error) {
	var proposalType domain.ProposalType
	switch user.SingleKnownRole {
	case domain.RoleResearcher:
		proposalType = domain.TypeApplicationForm
	case domain.RoleRegisteringMember:
		proposalType = domain.TypeRegisteringForm
	default:
		return transport.ProposalResponse{}, apperr.Forbidden("only researchers may create proposals")
	}

	p := domain.NewDraft(sanitize.Text(req.ProjectAbbreviation), proposalType, user, s.now())
	p.Applicant = sanitizeDoc(req.Applicant)
	p.ProjectResponsible = sanitizeDoc(req.ProjectResponsible)
	p.UserProject = sanitizeDoc(req.UserProject)
	for _, participant := range req.Participants {
		p.Participants = append(p.Participants, sanitizeDoc(participant))
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return transport.ProposalResponse{}, err
	}

	s.log.Info("proposal created", "id", p.ID, "abbreviation", p.ProjectAbbreviation, "type", p.Type)
	return s.respond(p, user, true)
}

// Get returns one proposal projected for the caller.
func (s *Service) Get(ctx context.Context, user domain.RequestUser, id uuid.UUID) (transport.ProposalResponse, error) {
	p, err := s.load(ctx, user, id)
	if err != nil {
		return transport.ProposalResponse{}, err
	}
	return s.respond(p, user, true)
}

// List returns the proposals of a panel.
func (s *Service) List(ctx context.Context, user domain.RequestUser, req transport.ListProposalsRequest) (transport.ProposalListResponse, error) {
	pred, err := filter.Build(filter.Panel(req.Panel), user)
	if err != nil {
		return transport.ProposalListResponse{}, err
	}

	items, err := s.repo.Find(ctx, pred)
	if err != nil {
		return transport.ProposalListResponse{}, err
	}

	out := make([]transport.ProposalResponse, 0, len(items))
	for _, p := range items {
		resp, err := s.respond(p, user, false)
		if err != nil {
			return transport.ProposalListResponse{}, err
		}
		out = append(out, resp)
	}
	return transport.ProposalListResponse{Panel: req.Panel, Items: out, Total: len(out)}, nil
}

// Update merges a partial document onto the proposal. Fields the caller may
// not write are ignored.
func (s *Service) Update(ctx context.Context, user domain.RequestUser, id uuid.UUID, body document.Document) (transport.ProposalResponse, error) {
	p, err := s.load(ctx, user, id)
	if err != nil {
		return transport.ProposalResponse{}, err
	}
	if bodyID := document.IDOf(body); bodyID != "" && bodyID != id.String() {
		return transport.ProposalResponse{}, apperr.Validation("proposal id does not match the request path")
	}

	fields, err := writableFields(p, user)
	if err != nil {
		return transport.ProposalResponse{}, err
	}
	patch := document.Document{}
	for key, value := range body {
		if fields[key] {
			patch[key] = sanitize.Value(value)
		}
	}

	changes, err := merge.Proposal(p, patch)
	if err != nil {
		s.log.Error("proposal merge failed", "proposalId", id, "error", err)
		return transport.ProposalResponse{}, apperr.Wrap(apperr.KindValidation, "update does not fit the proposal", err)
	}
	if changes.Modified() {
		p.UpdatedAt = s.now()
		if err := s.repo.Save(ctx, p); err != nil {
			return transport.ProposalResponse{}, err
		}
		s.log.Info("proposal updated", "id", p.ID, "version", p.Version.String(), "paths", changes.Paths())
	}
	return s.respond(p, user, true)
}

// SetStatus performs a status transition and re-plans the reminders.
func (s *Service) SetStatus(ctx context.Context, user domain.RequestUser, id uuid.UUID, req transport.SetStatusRequest) (transport.ProposalResponse, error) {
	p, err := s.load(ctx, user, id)
	if err != nil {
		return transport.ProposalResponse{}, err
	}
	to := domain.Status(req.Status)
	if err := domain.CheckTransition(p, to, user); err != nil {
		return transport.ProposalResponse{}, err
	}

	if to == domain.StatusLocationCheck {
		locations := req.Locations
		if len(locations) == 0 {
			locations = p.DesiredLocations()
		}
		if err := s.locations.ValidateCodes(ctx, locations); err != nil {
			return transport.ProposalResponse{}, err
		}
	}

	from := p.Status
	if err := domain.ApplyStatus(p, to, user, req.Locations, s.now()); err != nil {
		return transport.ProposalResponse{}, err
	}
	if err := s.scheduler.HandleStatusChange(ctx, p, from); err != nil {
		return transport.ProposalResponse{}, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return transport.ProposalResponse{}, err
	}

	s.log.StatusTransition(p.ID.String(), string(from), string(to), string(user.SingleKnownRole))
	s.bus.Publish(ctx, events.ProposalStatusChanged{
		BaseEvent:           events.NewBaseEvent(),
		ProposalID:          p.ID,
		ProjectAbbreviation: p.ProjectAbbreviation,
		From:                string(from),
		To:                  string(to),
		OwnerEmail:          p.Owner.Email,
		ChangedBy:           user.UserID,
	})
	return s.respond(p, user, true)
}

// DizVote records the DIZ decision of the caller's location.
func (s *Service) DizVote(ctx context.Context, user domain.RequestUser, id uuid.UUID, req transport.VoteRequest) (transport.ProposalResponse, error) {
	return s.mutate(ctx, user, id, func(p *domain.Proposal, now time.Time) error {
		return domain.DizVote(p, user, voteInput(req), now)
	})
}

// UacVote records the UAC decision of the caller's location.
func (s *Service) UacVote(ctx context.Context, user domain.RequestUser, id uuid.UUID, req transport.VoteRequest) (transport.ProposalResponse, error) {
	return s.mutate(ctx, user, id, func(p *domain.Proposal, now time.Time) error {
		return domain.UacVote(p, user, voteInput(req), now)
	})
}

// SignContract records the contract decision of the caller's location.
func (s *Service) SignContract(ctx context.Context, user domain.RequestUser, id uuid.UUID, req transport.VoteRequest) (transport.ProposalResponse, error) {
	return s.mutate(ctx, user, id, func(p *domain.Proposal, now time.Time) error {
		return domain.SignContract(p, user, voteInput(req), now)
	})
}

// ReviewCondition resolves an open condition check on behalf of the
// location's DIZ or FDPG.
func (s *Service) ReviewCondition(ctx context.Context, user domain.RequestUser, id uuid.UUID, req transport.ConditionReviewRequest) (transport.ProposalResponse, error) {
	return s.mutate(ctx, user, id, func(p *domain.Proposal, now time.Time) error {
		return domain.ReviewCondition(p, user, req.Location, *req.Accept, now)
	})
}

// RevertLocationVote sends a location back to the DIZ check. Reverting a
// location that is already there changes nothing.
func (s *Service) RevertLocationVote(ctx context.Context, user domain.RequestUser, id uuid.UUID, req transport.RevertLocationVoteRequest) (transport.RevertLocationVoteResponse, error) {
	p, err := s.load(ctx, user, id)
	if err != nil {
		return transport.RevertLocationVoteResponse{}, err
	}
	reverted, err := domain.RevertLocationVote(p, user, req.Location, s.now())
	if err != nil {
		return transport.RevertLocationVoteResponse{}, err
	}
	if !reverted {
		return transport.RevertLocationVoteResponse{Reverted: false}, nil
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return transport.RevertLocationVoteResponse{}, err
	}

	s.log.Info("location vote reverted", "proposalId", p.ID, "location", req.Location, "by", user.UserID)
	s.bus.Publish(ctx, events.LocationVoteReverted{
		BaseEvent:           events.NewBaseEvent(),
		ProposalID:          p.ID,
		ProjectAbbreviation: p.ProjectAbbreviation,
		Location:            req.Location,
	})
	return transport.RevertLocationVoteResponse{Reverted: true}, nil
}

// SetDeadlines edits deadlines and regenerates the dependent reminders.
func (s *Service) SetDeadlines(ctx context.Context, user domain.RequestUser, id uuid.UUID, req transport.SetDeadlinesRequest) (transport.ProposalResponse, error) {
	p, err := s.load(ctx, user, id)
	if err != nil {
		return transport.ProposalResponse{}, err
	}
	changed, err := domain.UpdateDeadlines(p, user, req.Deadlines, s.now())
	if err != nil {
		return transport.ProposalResponse{}, err
	}
	if len(changed) == 0 {
		return s.respond(p, user, true)
	}

	if err := s.scheduler.RemoveAndCreateEventsByChangeList(ctx, p, changed); err != nil {
		return transport.ProposalResponse{}, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return transport.ProposalResponse{}, err
	}
	s.log.Info("proposal deadlines changed", "id", p.ID, "fields", changed)
	return s.respond(p, user, true)
}

// Delete removes a draft of the caller together with its schedule.
func (s *Service) Delete(ctx context.Context, user domain.RequestUser, id uuid.UUID) error {
	p, err := s.load(ctx, user, id)
	if err != nil {
		return err
	}
	if p.OwnerID != user.UserID {
		return apperr.Forbidden("only the owner may delete a proposal")
	}
	if p.Status != domain.StatusDraft {
		return apperr.Validation("only drafts can be deleted").
			WithDetails(apperr.TransitionDetails{Field: "status", From: string(p.Status)})
	}
	if err := s.scheduler.CancelEventsForProposal(ctx, p); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.log.Info("proposal deleted", "id", p.ID)
	return nil
}

func (s *Service) mutate(ctx context.Context, user domain.RequestUser, id uuid.UUID, apply func(*domain.Proposal, time.Time) error) (transport.ProposalResponse, error) {
	p, err := s.load(ctx, user, id)
	if err != nil {
		return transport.ProposalResponse{}, err
	}
	if err := apply(p, s.now()); err != nil {
		return transport.ProposalResponse{}, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return transport.ProposalResponse{}, err
	}
	return s.respond(p, user, true)
}

// load fetches a proposal the caller may see. Invisible proposals are
// reported as missing.
func (s *Service) load(ctx context.Context, user domain.RequestUser, id uuid.UUID) (*domain.Proposal, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	visible, err := Visible(p, user)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apperr.NotFound(proposalNotFoundMessage)
	}
	return p, nil
}

func (s *Service) respond(p *domain.Proposal, user domain.RequestUser, detailed bool) (transport.ProposalResponse, error) {
	doc, err := transport.Project(p, user)
	if err != nil {
		return transport.ProposalResponse{}, err
	}
	resp := transport.ProposalResponse{Proposal: doc}
	if state, ok := domain.MostAdvancedState(p, user); ok {
		resp.LocationState = state
	}
	if detailed {
		overview := domain.ComputeIsDoneOverview(doc)
		resp.IsDoneOverview = &overview
	}
	return resp, nil
}

func voteInput(req transport.VoteRequest) domain.VoteInput {
	return domain.VoteInput{
		Approve:    req.Approve != nil && *req.Approve,
		Condition:  sanitize.Text(req.Condition),
		DataAmount: req.DataAmount,
		Reason:     sanitize.Text(req.Reason),
	}
}

func sanitizeDoc(doc document.Document) document.Document {
	if doc == nil {
		return nil
	}
	sanitize.Value(doc)
	return doc
}
