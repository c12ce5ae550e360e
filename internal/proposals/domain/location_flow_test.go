package domain

import (
	"testing"

	"fdpg_backend/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationVotesKeepBucketsExclusive(t *testing.T) {
	p := inLocationCheck(t, "A", "B")

	require.NoError(t, DizVote(p, diz("A"), VoteInput{Approve: true}, testNow))
	require.NoError(t, UacVote(p, uac("A"), VoteInput{Approve: true, Condition: "only aggregated data", DataAmount: 40}, testNow))
	require.NoError(t, DizVote(p, diz("B"), VoteInput{Approve: false, Reason: "no capacity"}, testNow))

	assert.Equal(t, []string{"A"}, p.OpenDizConditionChecks)
	assert.Empty(t, p.DizApprovedLocations)
	assert.Equal(t, []string{"B"}, p.RequestedButExcludedLocations)
	require.Len(t, p.DeclineReasons, 1)
	assert.Equal(t, "no capacity", p.DeclineReasons[0].Reason)

	require.NoError(t, ReviewCondition(p, fdpg(), "A", true, testNow))
	assert.Equal(t, []string{"A"}, p.UacApprovedLocations)
	assert.Empty(t, p.OpenDizConditionChecks)
	require.Len(t, p.UacApprovals, 1)
	assert.True(t, p.UacApprovals[0].IsConditional)
	assert.Equal(t, 40, p.TotalPromisedDataAmount)
	assert.Equal(t, 1, p.NumberOfApprovedLocations)
	assert.Equal(t, 2, p.NumberOfRequestedLocations)
}

func TestVoteRequiresOwnLocationInBucket(t *testing.T) {
	p := inLocationCheck(t, "A")

	err := UacVote(p, uac("A"), VoteInput{Approve: true}, testNow)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = DizVote(p, diz("Z"), VoteInput{Approve: true}, testNow)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = DizVote(p, uac("A"), VoteInput{Approve: true}, testNow)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestSignContractCountsContractedAmount(t *testing.T) {
	p := inLocationCheck(t, "A", "B")
	for _, loc := range []string{"A", "B"} {
		require.NoError(t, DizVote(p, diz(loc), VoteInput{Approve: true}, testNow))
		require.NoError(t, UacVote(p, uac(loc), VoteInput{Approve: true, DataAmount: 25}, testNow))
	}
	require.NoError(t, ApplyStatus(p, StatusContracting, fdpg(), nil, testNow))

	require.NoError(t, SignContract(p, diz("A"), VoteInput{Approve: true}, testNow))
	require.NoError(t, SignContract(p, uac("B"), VoteInput{Approve: false, Reason: "legal"}, testNow))

	assert.Equal(t, []string{"A"}, p.SignedContracts)
	assert.Equal(t, []string{"B"}, p.RequestedButExcludedLocations)
	assert.Equal(t, 1, p.NumberOfSignedLocations)
	assert.Equal(t, 1, p.NumberOfApprovedLocations)
	assert.Equal(t, 25, p.TotalPromisedDataAmount)
	assert.Equal(t, 25, p.TotalContractedDataAmount)
}

func TestRevertLocationVote(t *testing.T) {
	p := inLocationCheck(t, "A")
	require.NoError(t, DizVote(p, diz("A"), VoteInput{Approve: true}, testNow))
	require.NoError(t, UacVote(p, uac("A"), VoteInput{Approve: true, DataAmount: 5}, testNow))

	reverted, err := RevertLocationVote(p, fdpg(), "A", testNow)
	require.NoError(t, err)
	assert.True(t, reverted)
	assert.Equal(t, []string{"A"}, p.OpenDizChecks)
	assert.Empty(t, p.UacApprovedLocations)
	assert.Len(t, p.UacApprovals, 1, "vote records are durable")

	last := p.History[len(p.History)-1]
	assert.Equal(t, HistoryFdpgLocationVoteReverted, last.Type)
	assert.Equal(t, "A", last.Location)

	historyLen := len(p.History)
	version := p.Version
	reverted, err = RevertLocationVote(p, fdpg(), "A", testNow)
	require.NoError(t, err)
	assert.False(t, reverted)
	assert.Len(t, p.History, historyLen)
	assert.Equal(t, version, p.Version)
}

func TestRevertLocationVoteGuards(t *testing.T) {
	p := inLocationCheck(t, "A")

	_, err := RevertLocationVote(p, diz("A"), "A", testNow)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = RevertLocationVote(p, fdpg(), "unknown", testNow)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRevertFromExcludedReopensDizCheck(t *testing.T) {
	p := inLocationCheck(t, "A")
	require.NoError(t, DizVote(p, diz("A"), VoteInput{Approve: false, Reason: "no capacity"}, testNow))
	require.Equal(t, []string{"A"}, p.RequestedButExcludedLocations)

	reverted, err := RevertLocationVote(p, fdpg(), "A", testNow)
	require.NoError(t, err)
	assert.True(t, reverted)
	assert.Equal(t, []string{"A"}, p.OpenDizChecks)
	assert.Empty(t, p.RequestedButExcludedLocations)
	require.Len(t, p.DeclineReasons, 1, "decline reasons are durable")

	last := p.History[len(p.History)-1]
	assert.Equal(t, string(LocationStateExcluded), last.Data["revertedFrom"])
}

func TestDizResolvesOwnConditionCheck(t *testing.T) {
	p := inLocationCheck(t, "A", "B")
	for _, loc := range []string{"A", "B"} {
		require.NoError(t, DizVote(p, diz(loc), VoteInput{Approve: true}, testNow))
		require.NoError(t, UacVote(p, uac(loc), VoteInput{Approve: true, Condition: "pseudonymised only", DataAmount: 10}, testNow))
	}

	err := ReviewCondition(p, diz("B"), "A", true, testNow)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	err = ReviewCondition(p, uac("A"), "A", true, testNow)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, ReviewCondition(p, diz("A"), "A", true, testNow))
	assert.Equal(t, []string{"A"}, p.UacApprovedLocations)
	assert.Equal(t, HistoryDizConditionAccepted, p.History[len(p.History)-1].Type)

	require.NoError(t, ReviewCondition(p, diz("B"), "B", false, testNow))
	assert.Equal(t, []string{"B"}, p.RequestedButExcludedLocations)
	assert.Empty(t, p.OpenDizConditionChecks)
	assert.Equal(t, HistoryDizConditionDeclined, p.History[len(p.History)-1].Type)

	for _, ca := range p.ConditionalApprovals {
		require.NotNil(t, ca.ReviewedAt)
		assert.Equal(t, "diz-"+ca.Location, ca.ReviewedBy)
	}
}

func TestMostAdvancedState(t *testing.T) {
	p := inLocationCheck(t, "A", "B")

	state, ok := MostAdvancedState(p, diz("A"))
	require.True(t, ok)
	assert.Equal(t, LocationStateDizCheck, state)

	require.NoError(t, DizVote(p, diz("A"), VoteInput{Approve: true}, testNow))
	state, _ = MostAdvancedState(p, uac("A"))
	assert.Equal(t, LocationStateDizApproved, state)

	// Audit copies in the excluded bucket do not hide a later disposition.
	p.RequestedButExcludedLocations = append(p.RequestedButExcludedLocations, "A")
	state, _ = MostAdvancedState(p, uac("A"))
	assert.Equal(t, LocationStateDizApproved, state)

	_, ok = MostAdvancedState(p, fdpg())
	assert.False(t, ok)
	_, ok = MostAdvancedState(p, diz("C"))
	assert.False(t, ok)
}
