package domain

import (
	"sort"
	"time"

	"fdpg_backend/platform/apperr"
)

var dueDateFields = map[DueDateField]bool{
	DueDateFdpgCheck:           true,
	DueDateLocationCheck:       true,
	DueDateLocationContracting: true,
	DueDateExpectDataDelivery:  true,
	DueDateFinishedProject:     true,
}

// IsValid reports whether f is a known deadline field.
func (f DueDateField) IsValid() bool {
	return dueDateFields[f]
}

// UpdateDeadlines applies deadline edits made by FDPG and returns the fields
// that actually changed, sorted. A nil value clears a deadline.
func UpdateDeadlines(p *Proposal, user RequestUser, deadlines map[DueDateField]*time.Time, now time.Time) ([]DueDateField, error) {
	if user.SingleKnownRole != RoleFdpgMember {
		return nil, apperr.Forbidden("only FDPG members may set deadlines")
	}
	for field := range deadlines {
		if !field.IsValid() {
			return nil, apperr.Validation("unknown deadline " + string(field)).
				WithDetails(apperr.TransitionDetails{Field: string(field)})
		}
	}

	var changed []DueDateField
	for field, at := range deadlines {
		current, set := p.Deadline(field)
		switch {
		case at == nil && !set:
			continue
		case at != nil && set && current.Equal(*at):
			continue
		}
		if at != nil {
			value := at.UTC()
			at = &value
		}
		p.SetDeadline(field, at)
		changed = append(changed, field)
	}
	if len(changed) == 0 {
		return nil, nil
	}

	sort.Slice(changed, func(i, j int) bool { return changed[i] < changed[j] })
	p.touch(now)
	return changed, nil
}
