package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromValueNormalisesNestedSequences(t *testing.T) {
	doc, err := FromValue(struct {
		Items []map[string]any `json:"items"`
	}{Items: []map[string]any{{"_id": "a"}}})
	require.NoError(t, err)

	items, ok := doc["items"].([]any)
	require.True(t, ok)
	first, ok := AsObject(items[0])
	require.True(t, ok)
	assert.Equal(t, "a", IDOf(first))
}

func TestCloneIsDeep(t *testing.T) {
	src := Document{"nested": map[string]any{"list": []any{map[string]any{"x": 1.0}}}}
	cp := Clone(src)

	list := cp["nested"].(map[string]any)["list"].([]any)
	list[0].(map[string]any)["x"] = 2.0

	orig := src["nested"].(map[string]any)["list"].([]any)
	assert.Equal(t, 1.0, orig[0].(map[string]any)["x"])
}

func TestAssignMissingIDsOnlyTouchesSequenceMembers(t *testing.T) {
	doc := Document{
		"applicant": map[string]any{"name": "x"},
		"participants": []any{
			map[string]any{"_id": "keep"},
			map[string]any{"researcher": map[string]any{"email": "a@b.c"}},
		},
	}
	AssignMissingIDs(doc)

	_, hasID := doc["applicant"].(map[string]any)[IDField]
	assert.False(t, hasID)

	parts := doc["participants"].([]any)
	assert.Equal(t, "keep", IDOf(parts[0].(map[string]any)))
	assert.NotEmpty(t, IDOf(parts[1].(map[string]any)))
	_, nestedHasID := parts[1].(map[string]any)["researcher"].(map[string]any)[IDField]
	assert.False(t, nestedHasID)
}

func TestLookup(t *testing.T) {
	doc := Document{"userProject": map[string]any{"variableSelection": map[string]any{"a": true}}}
	v, ok := Lookup(doc, "userProject", "variableSelection", "a")
	require.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = Lookup(doc, "userProject", "missing")
	assert.False(t, ok)
}
