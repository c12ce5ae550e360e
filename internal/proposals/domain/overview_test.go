package domain

import (
	"testing"
	"time"

	"fdpg_backend/internal/proposals/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDoneOverviewCountsNestedFlags(t *testing.T) {
	doc := document.Document{
		"applicant": map[string]any{"isDone": true},
		"participants": []any{
			map[string]any{"researcher": map[string]any{"isDone": false}},
			map[string]any{"researcher": map[string]any{"isDone": true}},
		},
		"userProject": map[string]any{
			"generalProjectInformation": map[string]any{"isDone": false},
			"ethicVote":                 map[string]any{"nested": map[string]any{"isDone": false}},
			"submittedAt":               time.Now(),
		},
		"isDone": "not a flag",
	}

	overview := ComputeIsDoneOverview(doc)

	assert.Equal(t, 5, overview.FieldCount)
	assert.Equal(t, 2, overview.IsDoneCount)
	paths := make([]string, 0, len(overview.Fields))
	for _, f := range overview.Fields {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, "participants[1].researcher.isDone")
	assert.Contains(t, paths, "userProject.ethicVote.nested.isDone")
}

func TestHistorySinceFiltersDigestEvents(t *testing.T) {
	owner := researcher("r1")
	p := NewDraft("ABC", TypeApplicationForm, owner, testNow)
	later := testNow.Add(time.Hour)
	require.NoError(t, ApplyStatus(p, StatusFdpgCheck, owner, nil, later))
	require.NoError(t, ApplyStatus(p, StatusLocationCheck, fdpg(), []string{"A"}, later))
	require.NoError(t, DizVote(p, diz("A"), VoteInput{Approve: true}, later))

	events := HistorySince(p, testNow)
	require.Len(t, events, 2)
	assert.Equal(t, HistoryProposalFdpgCheck, events[0].Type)
	assert.Equal(t, HistoryProposalLocationCheck, events[1].Type)

	assert.Empty(t, HistorySince(p, later))
}
