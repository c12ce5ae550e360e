package domain

import (
	"testing"
	"time"

	"fdpg_backend/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func researcher(id string) RequestUser {
	return NewRequestUser(id, id+"@example.org", []string{string(RoleResearcher)}, "")
}

func fdpg() RequestUser {
	return NewRequestUser("fdpg-1", "fdpg@example.org", []string{string(RoleFdpgMember)}, "")
}

func diz(location string) RequestUser {
	return NewRequestUser("diz-"+location, "diz@"+location, []string{string(RoleDizMember)}, location)
}

func uac(location string) RequestUser {
	return NewRequestUser("uac-"+location, "uac@"+location, []string{string(RoleUacMember)}, location)
}

func TestNewRequestUserPicksHighestPriorityRole(t *testing.T) {
	u := NewRequestUser("u", "", []string{"Researcher", "FdpgMember", "unknown"}, "")
	assert.Equal(t, RoleFdpgMember, u.SingleKnownRole)

	none := NewRequestUser("u", "", []string{"unknown"}, "")
	assert.Equal(t, Role(""), none.SingleKnownRole)
}

func TestSubmitBumpsMajorVersion(t *testing.T) {
	owner := researcher("r1")
	p := NewDraft("ABC", TypeApplicationForm, owner, testNow)
	p.Version.Minor = 4

	require.NoError(t, ApplyStatus(p, StatusFdpgCheck, owner, nil, testNow))

	assert.Equal(t, StatusFdpgCheck, p.Status)
	assert.Equal(t, Version{Mayor: 1, Minor: 0}, p.Version)
	assert.True(t, p.IsLocked)
	require.NotNil(t, p.SubmittedAt)
	due, ok := p.Deadline(DueDateFdpgCheck)
	require.True(t, ok)
	assert.Equal(t, testNow.AddDate(0, 0, 7), due)

	last := p.History[len(p.History)-1]
	assert.Equal(t, HistoryProposalFdpgCheck, last.Type)
	assert.Equal(t, "DRAFT", last.Data["from"])
}

func TestOtherTransitionsBumpMinorVersion(t *testing.T) {
	owner := researcher("r1")
	p := NewDraft("ABC", TypeApplicationForm, owner, testNow)
	require.NoError(t, ApplyStatus(p, StatusFdpgCheck, owner, nil, testNow))
	require.NoError(t, ApplyStatus(p, StatusRework, fdpg(), nil, testNow))

	assert.Equal(t, Version{Mayor: 1, Minor: 1}, p.Version)
	assert.False(t, p.IsLocked)

	require.NoError(t, ApplyStatus(p, StatusFdpgCheck, owner, nil, testNow))
	assert.Equal(t, Version{Mayor: 2, Minor: 0}, p.Version)
}

func TestCheckTransitionErrors(t *testing.T) {
	owner := researcher("r1")

	tests := []struct {
		name  string
		setup func() *Proposal
		to    Status
		user  RequestUser
		kind  apperr.Kind
	}{
		{
			name:  "pair no role may perform",
			setup: func() *Proposal { return NewDraft("A", TypeApplicationForm, owner, testNow) },
			to:    StatusArchived,
			user:  fdpg(),
			kind:  apperr.KindValidation,
		},
		{
			name:  "unknown status",
			setup: func() *Proposal { return NewDraft("A", TypeApplicationForm, owner, testNow) },
			to:    Status("NOPE"),
			user:  owner,
			kind:  apperr.KindValidation,
		},
		{
			name:  "pair reserved for another role",
			setup: func() *Proposal { return NewDraft("A", TypeApplicationForm, owner, testNow) },
			to:    StatusFdpgCheck,
			user:  fdpg(),
			kind:  apperr.KindForbidden,
		},
		{
			name:  "researcher who is not the owner",
			setup: func() *Proposal { return NewDraft("A", TypeApplicationForm, owner, testNow) },
			to:    StatusFdpgCheck,
			user:  researcher("someone-else"),
			kind:  apperr.KindForbidden,
		},
		{
			name: "publishing an application form",
			setup: func() *Proposal {
				p := NewDraft("A", TypeApplicationForm, owner, testNow)
				p.Status = StatusFdpgCheck
				return p
			},
			to:   StatusReadyToPublish,
			user: fdpg(),
			kind: apperr.KindValidation,
		},
		{
			name: "location check for a registering form",
			setup: func() *Proposal {
				p := NewDraft("A", TypeRegisteringForm, owner, testNow)
				p.Status = StatusFdpgCheck
				return p
			},
			to:   StatusLocationCheck,
			user: fdpg(),
			kind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.setup(), tt.to, tt.user)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.GetKind(err))
		})
	}
}

func TestRegisteringFormPublishes(t *testing.T) {
	owner := NewRequestUser("r1", "r1@example.org", []string{string(RoleRegisteringMember)}, "")
	p := NewDraft("REG", TypeRegisteringForm, owner, testNow)

	require.NoError(t, ApplyStatus(p, StatusFdpgCheck, owner, nil, testNow))
	require.NoError(t, ApplyStatus(p, StatusReadyToPublish, fdpg(), nil, testNow))
	require.NoError(t, ApplyStatus(p, StatusPublished, fdpg(), nil, testNow))
	assert.Equal(t, StatusPublished, p.Status)
}

func TestLocationCheckSeedsOpenDizChecks(t *testing.T) {
	p := inFdpgCheck(t)
	p.UserProject = map[string]any{
		"addressees": map[string]any{"desiredLocations": []any{"UKL", "UKR", "UKL"}},
	}

	require.NoError(t, ApplyStatus(p, StatusLocationCheck, fdpg(), nil, testNow))

	assert.Equal(t, []string{"UKL", "UKR"}, p.OpenDizChecks)
	assert.Equal(t, 2, p.NumberOfRequestedLocations)
}

func TestLocationCheckWithoutLocationsFails(t *testing.T) {
	p := inFdpgCheck(t)
	err := ApplyStatus(p, StatusLocationCheck, fdpg(), nil, testNow)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, StatusFdpgCheck, p.Status)
}

func TestContractingExcludesUndecidedLocations(t *testing.T) {
	p := inLocationCheck(t, "A", "B", "C")
	require.NoError(t, DizVote(p, diz("A"), VoteInput{Approve: true}, testNow))
	require.NoError(t, UacVote(p, uac("A"), VoteInput{Approve: true, DataAmount: 10}, testNow))
	require.NoError(t, DizVote(p, diz("B"), VoteInput{Approve: true}, testNow))

	require.NoError(t, ApplyStatus(p, StatusContracting, fdpg(), nil, testNow))

	assert.Equal(t, []string{"A"}, p.UacApprovedLocations)
	assert.ElementsMatch(t, []string{"B", "C"}, p.RequestedButExcludedLocations)
	assert.Empty(t, p.OpenDizChecks)
	assert.Empty(t, p.DizApprovedLocations)
}

func inFdpgCheck(t *testing.T) *Proposal {
	t.Helper()
	owner := researcher("r1")
	p := NewDraft("ABC", TypeApplicationForm, owner, testNow)
	require.NoError(t, ApplyStatus(p, StatusFdpgCheck, owner, nil, testNow))
	return p
}

func inLocationCheck(t *testing.T, locations ...string) *Proposal {
	t.Helper()
	p := inFdpgCheck(t)
	require.NoError(t, ApplyStatus(p, StatusLocationCheck, fdpg(), locations, testNow))
	return p
}
