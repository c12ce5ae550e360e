package domain

import (
	"testing"
	"time"

	"fdpg_backend/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateDeadlinesReportsOnlyChangedFields(t *testing.T) {
	p := NewDraft("DL", TypeApplicationForm, researcher("r1"), testNow)
	existing := testNow.AddDate(0, 0, 10)
	p.SetDeadline(DueDateLocationCheck, &existing)
	same := existing
	moved := testNow.AddDate(0, 0, 3)

	changed, err := UpdateDeadlines(p, fdpg(), map[DueDateField]*time.Time{
		DueDateLocationCheck:   &same,
		DueDateFdpgCheck:       &moved,
		DueDateFinishedProject: nil,
	}, testNow)

	require.NoError(t, err)
	assert.Equal(t, []DueDateField{DueDateFdpgCheck}, changed)
	assert.Equal(t, 1, p.Version.Minor)
	got, ok := p.Deadline(DueDateFdpgCheck)
	require.True(t, ok)
	assert.Equal(t, moved, got)
}

func TestUpdateDeadlinesWithoutChangesKeepsVersion(t *testing.T) {
	p := NewDraft("DL", TypeApplicationForm, researcher("r1"), testNow)

	changed, err := UpdateDeadlines(p, fdpg(), map[DueDateField]*time.Time{DueDateFdpgCheck: nil}, testNow)

	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Zero(t, p.Version.Minor)
}

func TestUpdateDeadlinesGuards(t *testing.T) {
	p := NewDraft("DL", TypeApplicationForm, researcher("r1"), testNow)
	at := testNow

	_, err := UpdateDeadlines(p, researcher("r1"), map[DueDateField]*time.Time{DueDateFdpgCheck: &at}, testNow)
	assert.Equal(t, apperr.KindForbidden, apperr.GetKind(err))

	_, err = UpdateDeadlines(p, fdpg(), map[DueDateField]*time.Time{"DUE_DAYS_NOPE": &at}, testNow)
	assert.Equal(t, apperr.KindValidation, apperr.GetKind(err))
}
