// Package sanitize strips markup from user-provided text before it is stored.
package sanitize

import (
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
)

// StripHTML removes tags, decodes the common entities and strips again so
// encoded tags do not survive.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes free text such as vote reasons and conditions.
func Text(s string) string {
	return StripHTML(s)
}

// Value sanitizes every string inside a decoded JSON value in place and
// returns it. Keys are left untouched.
func Value(v any) any {
	switch typed := v.(type) {
	case string:
		return Text(typed)
	case map[string]any:
		for k, child := range typed {
			typed[k] = Value(child)
		}
		return typed
	case []any:
		for i, child := range typed {
			typed[i] = Value(child)
		}
		return typed
	default:
		return v
	}
}
