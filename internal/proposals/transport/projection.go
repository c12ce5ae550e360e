package transport

import (
	"fdpg_backend/internal/proposals/document"
	"fdpg_backend/internal/proposals/domain"
)

// fieldAccess restricts a top-level proposal field to some roles. Location
// scoped fields are additionally cut down to the caller's own location for
// DIZ and UAC members.
type fieldAccess struct {
	roles          []domain.Role
	locationScoped bool
}

var (
	fdpgOnly  = []domain.Role{domain.RoleFdpgMember}
	reviewers = []domain.Role{domain.RoleFdpgMember, domain.RoleDataManagementOffice, domain.RoleDizMember, domain.RoleUacMember}
	insiders  = []domain.Role{domain.RoleFdpgMember, domain.RoleDataManagementOffice, domain.RoleDataSourceMember, domain.RoleDizMember, domain.RoleUacMember}
)

var projectionTable = map[string]fieldAccess{
	"fdpgChecklist":                 {roles: fdpgOnly},
	"openFdpgTasks":                 {roles: fdpgOnly},
	"fdpgCheckNotes":                {roles: fdpgOnly},
	"scheduledEvents":               {roles: fdpgOnly},
	"deadlines":                     {roles: insiders},
	"conditionalApprovals":          {roles: reviewers, locationScoped: true},
	"declineReasons":                {roles: reviewers, locationScoped: true},
	"locationConditionDraft":        {roles: reviewers, locationScoped: true},
	"uacApprovals":                  {roles: insiders, locationScoped: true},
	"additionalLocationInformation": {roles: insiders, locationScoped: true},
	"requestedButExcludedLocations": {roles: insiders},
}

// Project maps a proposal to the document the caller may see.
func Project(p *domain.Proposal, user domain.RequestUser) (document.Document, error) {
	doc, err := document.FromValue(p)
	if err != nil {
		return nil, err
	}

	role := user.SingleKnownRole
	for field, access := range projectionTable {
		if !allowed(access.roles, role) {
			delete(doc, field)
			continue
		}
		if access.locationScoped && role.IsLocationRole() {
			doc[field] = ownLocationOnly(doc[field], user.MiiLocation)
		}
	}
	return doc, nil
}

func allowed(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func ownLocationOnly(value any, location string) []any {
	items, _ := value.([]any)
	out := make([]any, 0, len(items))
	for _, item := range items {
		obj, ok := document.AsObject(item)
		if !ok {
			continue
		}
		if loc, _ := obj["location"].(string); loc == location {
			out = append(out, item)
		}
	}
	return out
}
