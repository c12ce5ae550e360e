package domain

import (
	"sort"
	"strconv"
	"time"

	"fdpg_backend/internal/proposals/document"
)

// IsDoneField is one completion flag found in the form content.
type IsDoneField struct {
	Path   string `json:"path"`
	IsDone bool   `json:"isDone"`
}

// IsDoneOverview aggregates every nested isDone flag of a document.
type IsDoneOverview struct {
	Fields      []IsDoneField `json:"fields"`
	FieldCount  int           `json:"fieldCount"`
	IsDoneCount int           `json:"isDoneCount"`
}

// ComputeIsDoneOverview scans doc recursively for boolean isDone keys.
// Time values are leaves.
func ComputeIsDoneOverview(doc document.Document) IsDoneOverview {
	var overview IsDoneOverview
	collectIsDone(doc, "", &overview)
	return overview
}

func collectIsDone(value any, path string, out *IsDoneOverview) {
	switch v := value.(type) {
	case time.Time, *time.Time:
		return
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := joinPath(path, k)
			if k == "isDone" {
				if done, ok := v[k].(bool); ok {
					out.Fields = append(out.Fields, IsDoneField{Path: child, IsDone: done})
					out.FieldCount++
					if done {
						out.IsDoneCount++
					}
					continue
				}
			}
			collectIsDone(v[k], child, out)
		}
	case []any:
		for i, item := range v {
			collectIsDone(item, path+"["+strconv.Itoa(i)+"]", out)
		}
	case []map[string]any:
		for i, item := range v {
			collectIsDone(item, path+"["+strconv.Itoa(i)+"]", out)
		}
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
