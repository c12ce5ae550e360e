package domain

import (
	"time"

	"fdpg_backend/platform/apperr"
)

// transitions lists the legal (from, to) pairs per role.
var transitions = map[Role]map[Status][]Status{
	RoleResearcher: {
		StatusDraft:        {StatusFdpgCheck},
		StatusRework:       {StatusFdpgCheck},
		StatusDataResearch: {StatusDataCorrupt, StatusFinishedProject},
		StatusDataCorrupt:  {StatusDataResearch},
	},
	RoleRegisteringMember: {
		StatusDraft:  {StatusFdpgCheck},
		StatusRework: {StatusFdpgCheck},
	},
	RoleFdpgMember: {
		StatusFdpgCheck:          {StatusRework, StatusLocationCheck, StatusRejected, StatusReadyToPublish},
		StatusLocationCheck:      {StatusContracting, StatusRejected},
		StatusContracting:        {StatusExpectDataDelivery},
		StatusExpectDataDelivery: {StatusDataResearch},
		StatusDataResearch:       {StatusFinishedProject},
		StatusDataCorrupt:        {StatusDataResearch},
		StatusFinishedProject:    {StatusReadyToArchive},
		StatusReadyToArchive:     {StatusArchived},
		StatusReadyToPublish:     {StatusPublished},
		StatusPublished:          {StatusArchived},
	},
	RoleDataManagementOffice: {
		StatusExpectDataDelivery: {StatusDataResearch},
		StatusDataCorrupt:        {StatusDataResearch},
	},
}

var registeringOnly = map[Status]bool{
	StatusReadyToPublish: true,
	StatusPublished:      true,
}

var applicationOnly = map[Status]bool{
	StatusLocationCheck:      true,
	StatusContracting:        true,
	StatusExpectDataDelivery: true,
	StatusDataResearch:       true,
	StatusDataCorrupt:        true,
	StatusFinishedProject:    true,
	StatusReadyToArchive:     true,
}

// defaultDueDays seeds a deadline when a status is entered without one.
var defaultDueDays = map[Status]struct {
	field DueDateField
	days  int
}{
	StatusFdpgCheck:          {DueDateFdpgCheck, 7},
	StatusLocationCheck:      {DueDateLocationCheck, 28},
	StatusContracting:        {DueDateLocationContracting, 28},
	StatusExpectDataDelivery: {DueDateExpectDataDelivery, 28},
	StatusDataResearch:       {DueDateFinishedProject, 365},
}

func allowedFor(role Role, from, to Status) bool {
	for _, candidate := range transitions[role][from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func allowedForAnyRole(from, to Status) bool {
	for role := range transitions {
		if allowedFor(role, from, to) {
			return true
		}
	}
	return false
}

// CheckTransition validates a status change. Pairs no role may perform are
// validation errors; pairs reserved for other roles or owners are forbidden.
func CheckTransition(p *Proposal, to Status, user RequestUser) error {
	from := p.Status
	if !to.IsValid() || from == to || !allowedForAnyRole(from, to) {
		return apperr.InvalidTransition("status", string(from), string(to))
	}
	if p.Type == TypeRegisteringForm && applicationOnly[to] {
		return apperr.InvalidTransition("status", string(from), string(to))
	}
	if p.Type == TypeApplicationForm && registeringOnly[to] {
		return apperr.InvalidTransition("status", string(from), string(to))
	}

	role := user.SingleKnownRole
	if !allowedFor(role, from, to) {
		return apperr.Forbidden("role may not perform this status change").
			WithDetails(apperr.TransitionDetails{Field: "status", From: string(from), To: string(to)})
	}
	if (role == RoleResearcher || role == RoleRegisteringMember) && p.OwnerID != user.UserID {
		return apperr.Forbidden("only the owner may change the status of this proposal")
	}
	return nil
}

// ApplyStatus validates and performs a status change, writing history,
// versions, location buckets and counters.
func ApplyStatus(p *Proposal, to Status, user RequestUser, locations []string, now time.Time) error {
	if err := CheckTransition(p, to, user); err != nil {
		return err
	}
	from := p.Status

	if to == StatusLocationCheck {
		if len(locations) == 0 {
			locations = p.DesiredLocations()
		}
		if len(locations) == 0 {
			return apperr.Validation("at least one location must be requested").
				WithDetails(apperr.TransitionDetails{Field: "openDizChecks", From: string(from), To: string(to)})
		}
	}

	if to == StatusFdpgCheck && (from == StatusDraft || from == StatusRework) {
		p.Version.Mayor++
		p.Version.Minor = 0
		p.SubmittedAt = &now
	} else {
		p.Version.Minor++
	}

	switch to {
	case StatusFdpgCheck:
		p.IsLocked = true
	case StatusRework:
		p.IsLocked = false
	case StatusLocationCheck:
		for _, location := range uniqueStrings(locations) {
			p.moveLocation(location, bucketOpenDizChecks)
		}
	case StatusContracting:
		p.excludeUndecidedLocations()
	}

	if seed, ok := defaultDueDays[to]; ok {
		if _, set := p.Deadline(seed.field); !set {
			due := now.AddDate(0, 0, seed.days)
			p.SetDeadline(seed.field, &due)
		}
	}

	p.Status = to
	p.UpdatedAt = now
	p.addHistory(statusHistory[to], "", user, map[string]any{"from": string(from)}, now)
	p.RecalculateCounters()
	return nil
}

// excludeUndecidedLocations drops locations without a UAC approval once
// contracting starts.
func (p *Proposal) excludeUndecidedLocations() {
	var undecided []string
	undecided = append(undecided, p.OpenDizChecks...)
	undecided = append(undecided, p.OpenDizConditionChecks...)
	undecided = append(undecided, p.DizApprovedLocations...)
	for _, location := range undecided {
		p.moveLocation(location, bucketExcluded)
	}
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
