// Package document provides the loosely typed tree representation of a
// proposal used by the merge engine, the filter evaluator and the
// completion overview.
package document

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IDField is the sub-document identifier key.
const IDField = "_id"

// Document is a JSON-shaped object tree.
type Document = map[string]any

// FromValue converts any JSON-serialisable value into a normalised Document.
// Nested objects become map[string]any and sequences become []any.
func FromValue(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

// Decode writes the document onto out, which must be a pointer.
func Decode(doc Document, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// AsObject reports whether v is a plain object. Date-like values are leaves.
func AsObject(v any) (Document, bool) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, true
	case time.Time, *time.Time:
		return nil, false
	default:
		return nil, false
	}
}

// Clone returns a deep copy of doc.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies maps and slices and returns scalars as-is.
func CloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return Clone(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Lookup walks a key path through nested objects.
func Lookup(doc Document, path ...string) (any, bool) {
	var current any = doc
	for _, key := range path {
		obj, ok := AsObject(current)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// IDOf returns the identifier of a sub-document, or "" when it has none.
func IDOf(doc Document) string {
	switch id := doc[IDField].(type) {
	case nil:
		return ""
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// AssignMissingIDs gives every object nested in a sequence that lacks an
// identifier a fresh one, the way a document store assigns sub-document ids.
func AssignMissingIDs(doc Document) {
	for _, v := range doc {
		assignValue(v, false)
	}
}

func assignValue(v any, inSequence bool) {
	switch typed := v.(type) {
	case map[string]any:
		if inSequence && IDOf(typed) == "" {
			typed[IDField] = uuid.NewString()
		}
		for _, child := range typed {
			assignValue(child, false)
		}
	case []any:
		for _, item := range typed {
			assignValue(item, true)
		}
	}
}
