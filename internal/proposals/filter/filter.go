package filter

import (
	"sort"

	"fdpg_backend/internal/proposals/domain"
	"fdpg_backend/platform/apperr"
)

var panelsByRole = map[domain.Role]map[Panel]builder{
	domain.RoleResearcher:           researcherPanels(),
	domain.RoleRegisteringMember:    researcherPanels(),
	domain.RoleFdpgMember:           fdpgPanels(),
	domain.RoleDataSourceMember:     dataSourcePanels(),
	domain.RoleDizMember:            dizPanels(),
	domain.RoleUacMember:            uacPanels(),
	domain.RoleDataManagementOffice: dmsPanels(),
}

// Build returns the predicate scoping panel for user. Panels outside the
// caller's allow-list are forbidden.
func Build(panel Panel, user domain.RequestUser) (Predicate, error) {
	panels, ok := panelsByRole[user.SingleKnownRole]
	if !ok {
		return Predicate{}, apperr.Forbidden("no panels for role " + string(user.SingleKnownRole))
	}
	build, ok := panels[panel]
	if !ok {
		return Predicate{}, apperr.Forbidden("panel " + string(panel) + " is not available for role " + string(user.SingleKnownRole))
	}
	if user.SingleKnownRole.IsLocationRole() && user.MiiLocation == "" {
		return Predicate{}, apperr.Forbidden("location panels require a location")
	}
	return build(user), nil
}

// AllowedPanels lists the panels of role in sorted order.
func AllowedPanels(role domain.Role) []Panel {
	panels := panelsByRole[role]
	out := make([]Panel, 0, len(panels))
	for p := range panels {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllPanels lists every known panel.
func AllPanels() []Panel {
	seen := map[Panel]bool{}
	var out []Panel
	for _, panels := range panelsByRole {
		for p := range panels {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
