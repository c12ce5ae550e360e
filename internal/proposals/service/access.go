package service

import (
	"fdpg_backend/internal/proposals/document"
	"fdpg_backend/internal/proposals/domain"
	"fdpg_backend/internal/proposals/filter"
	"fdpg_backend/internal/proposals/merge"
	"fdpg_backend/platform/apperr"
)

var researcherFields = []string{
	"applicant",
	"projectResponsible",
	"participants",
	"userProject",
	merge.KeepIDsKey,
}

var fdpgFields = []string{
	"fdpgChecklist",
	"openFdpgTasks",
	"fdpgCheckNotes",
}

// Visible reports whether any panel of the caller contains p. FDPG members
// see every submitted proposal.
func Visible(p *domain.Proposal, user domain.RequestUser) (bool, error) {
	if user.SingleKnownRole == domain.RoleFdpgMember {
		return p.Status != domain.StatusDraft, nil
	}
	doc, err := document.FromValue(p)
	if err != nil {
		return false, err
	}
	for _, panel := range filter.AllowedPanels(user.SingleKnownRole) {
		pred, err := filter.Build(panel, user)
		if err != nil {
			continue
		}
		if filter.Match(pred, doc) {
			return true, nil
		}
	}
	return false, nil
}

// writableFields lists the top-level fields the caller may merge.
func writableFields(p *domain.Proposal, user domain.RequestUser) (map[string]bool, error) {
	fields := map[string]bool{}
	switch user.SingleKnownRole {
	case domain.RoleResearcher, domain.RoleRegisteringMember:
		if p.OwnerID != user.UserID {
			return nil, apperr.Forbidden("only the owner may edit this proposal")
		}
		if p.IsLocked {
			return nil, apperr.Forbidden("proposal is locked while under review")
		}
		for _, f := range researcherFields {
			fields[f] = true
		}
	case domain.RoleFdpgMember:
		if p.Status == domain.StatusArchived {
			return nil, apperr.Forbidden("archived proposals cannot be edited")
		}
		for _, f := range researcherFields {
			fields[f] = true
		}
		for _, f := range fdpgFields {
			fields[f] = true
		}
	default:
		return nil, apperr.Forbidden("role may not edit proposals")
	}
	return fields, nil
}
