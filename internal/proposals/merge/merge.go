// Package merge applies partial client updates onto a persisted proposal
// while keeping the identifiers of untouched sub-documents stable.
package merge

import (
	"strconv"

	"fdpg_backend/internal/proposals/document"

	"github.com/google/go-cmp/cmp"
)

// KeepIDsKey names the collection whose new members keep their supplied
// identifiers. Those ids reference external data sources.
const KeepIDsKey = "selectedDataSources"

// Deep merges source onto target in place and records every modified path.
func Deep(target, source document.Document, changes *Changes) {
	deep(target, source, "", changes)
}

func deep(target, source document.Document, prefix string, changes *Changes) {
	for key, value := range source {
		path := join(prefix, key)
		current, exists := target[key]

		if srcObj, ok := document.AsObject(value); ok {
			if dstObj, ok := document.AsObject(current); ok {
				deep(dstObj, srcObj, path, changes)
				continue
			}
		}

		if srcArr, ok := identifiedSequence(value); ok {
			dstArr, ok := current.([]any)
			if ok || current == nil {
				target[key] = mergeSequence(dstArr, srcArr, key == KeepIDsKey, path, changes)
				continue
			}
		}

		if !exists || !cmp.Equal(current, value) {
			target[key] = document.CloneValue(value)
			changes.MarkModified(path)
		}
	}
}

// identifiedSequence reports whether v is a non-empty sequence of objects of
// which at least one carries an identifier.
func identifiedSequence(v any) ([]any, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	hasID := false
	for _, item := range arr {
		obj, ok := document.AsObject(item)
		if !ok {
			return nil, false
		}
		if document.IDOf(obj) != "" {
			hasID = true
		}
	}
	return arr, hasID
}

func mergeSequence(target, source []any, keepIDs bool, path string, changes *Changes) []any {
	wanted := make(map[string]bool, len(source))
	for _, item := range source {
		obj, _ := document.AsObject(item)
		if id := document.IDOf(obj); id != "" {
			wanted[id] = true
		}
	}

	result := make([]any, 0, len(source))
	byID := make(map[string]document.Document, len(target))
	for _, item := range target {
		obj, ok := document.AsObject(item)
		id := document.IDOf(obj)
		if !ok || !wanted[id] {
			changes.MarkModified(path)
			continue
		}
		byID[id] = obj
		result = append(result, obj)
	}

	for _, item := range source {
		obj, _ := document.AsObject(item)
		if existing, ok := byID[document.IDOf(obj)]; ok {
			idx := indexOf(result, existing)
			patch := document.Clone(obj)
			delete(patch, document.IDField)
			deep(existing, patch, path+"["+strconv.Itoa(idx)+"]", changes)
			continue
		}
		added := document.Clone(obj)
		if !keepIDs {
			delete(added, document.IDField)
		}
		result = append(result, added)
		changes.MarkModified(path)
	}
	return result
}

func indexOf(items []any, target document.Document) int {
	id := document.IDOf(target)
	for i, item := range items {
		if obj, ok := document.AsObject(item); ok && document.IDOf(obj) == id {
			return i
		}
	}
	return -1
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
