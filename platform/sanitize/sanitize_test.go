package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "only aggregated data", StripHTML("  <b>only</b> aggregated data "))
	assert.Equal(t, "alert(1)", StripHTML("&lt;script&gt;alert(1)&lt;/script&gt;"))
	assert.Equal(t, "a & b", StripHTML("a &amp; b"))
}

func TestValueWalksNestedDocuments(t *testing.T) {
	doc := map[string]any{
		"title": "<i>Study</i>",
		"participants": []any{
			map[string]any{"name": "<b>Ada</b>", "age": 36.0},
		},
		"isDone": true,
	}

	Value(doc)

	assert.Equal(t, "Study", doc["title"])
	participant := doc["participants"].([]any)[0].(map[string]any)
	assert.Equal(t, "Ada", participant["name"])
	assert.Equal(t, 36.0, participant["age"])
	assert.Equal(t, true, doc["isDone"])
}
