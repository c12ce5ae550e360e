package domain

// RequestUser is the authenticated caller as seen by the domain.
type RequestUser struct {
	UserID          string
	Email           string
	Roles           []Role
	SingleKnownRole Role
	MiiLocation     string
}

// NewRequestUser builds a RequestUser and resolves its single known role.
func NewRequestUser(userID, email string, roles []string, miiLocation string) RequestUser {
	typed := make([]Role, 0, len(roles))
	for _, r := range roles {
		typed = append(typed, Role(r))
	}
	return RequestUser{
		UserID:          userID,
		Email:           email,
		Roles:           typed,
		SingleKnownRole: singleKnownRole(typed),
		MiiLocation:     miiLocation,
	}
}

func singleKnownRole(roles []Role) Role {
	for _, candidate := range knownRolePriority {
		for _, r := range roles {
			if r == candidate {
				return candidate
			}
		}
	}
	return ""
}
