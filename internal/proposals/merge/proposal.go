package merge

import (
	"fmt"

	"fdpg_backend/internal/proposals/document"
	"fdpg_backend/internal/proposals/domain"

	"github.com/google/go-cmp/cmp"
)

const variableSelectionPath = "userProject.variableSelection"

// Proposal merges a partial update onto target. target is replaced only when
// the whole merge succeeds; version.minor grows by one when anything changed.
func Proposal(target *domain.Proposal, source document.Document) (*Changes, error) {
	current, err := document.FromValue(target)
	if err != nil {
		return nil, fmt.Errorf("normalise proposal: %w", err)
	}
	patch, err := document.FromValue(source)
	if err != nil {
		return nil, fmt.Errorf("normalise update: %w", err)
	}
	delete(patch, document.IDField)

	changes := &Changes{}
	before, hadBefore := document.Lookup(current, "userProject", "variableSelection")
	after, hasAfter := document.Lookup(patch, "userProject", "variableSelection")
	if hadBefore && hasAfter && !cmp.Equal(before, after) {
		changes.MarkModified(variableSelectionPath)
	}
	if v, ok := patch[KeepIDsKey]; ok && v != nil {
		changes.MarkModified(KeepIDsKey)
	}

	Deep(current, patch, changes)
	if !changes.Modified() {
		return changes, nil
	}

	var merged domain.Proposal
	if err := document.Decode(current, &merged); err != nil {
		return nil, fmt.Errorf("decode merged proposal: %w", err)
	}
	merged.Version.Minor++
	*target = merged
	return changes, nil
}
