// Package reconcile compares the codesystem with the location registry and
// records the differences as reviewable changelogs.
package reconcile

import (
	"slices"

	"fdpg_backend/internal/locations/client"
)

// ResolveReplacementChains collapses replacement chains A -> B -> C into an
// entry keyed by A that carries C's data with ReplacedBy pointing at C.
// Intermediate codes are dropped and the terminal record is kept as is.
// Links are read from both replacedBy and replaces. An explicit replacedBy
// wins over a link inferred from another record's replaces, and codes are
// visited in sorted order so conflicting links always resolve the same way.
func ResolveReplacementChains(records map[string]client.ExternalRecord) map[string]client.ExternalRecord {
	codes := make([]string, 0, len(records))
	for code := range records {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	next := make(map[string]string, len(records))
	hasPredecessor := make(map[string]bool, len(records))
	link := func(from, to string) {
		if from == "" || to == "" || from == to {
			return
		}
		if _, ok := records[from]; !ok {
			return
		}
		if _, ok := records[to]; !ok {
			return
		}
		if _, exists := next[from]; exists {
			return
		}
		next[from] = to
		hasPredecessor[to] = true
	}
	for _, code := range codes {
		link(code, records[code].ReplacedBy)
	}
	for _, code := range codes {
		link(records[code].Replaces, code)
	}

	out := make(map[string]client.ExternalRecord, len(records))
	for code, r := range records {
		_, hasNext := next[code]
		switch {
		case !hasNext:
			out[code] = r
		case hasPredecessor[code]:
			// intermediate link, represented by its chain start
		default:
			terminal := walk(code, next)
			collapsed := records[terminal]
			collapsed.Code = code
			collapsed.Replaces = ""
			collapsed.ReplacedBy = terminal
			out[code] = collapsed
		}
	}
	return out
}

// walk follows next from start and returns the last code, stopping on cycles.
func walk(start string, next map[string]string) string {
	seen := map[string]bool{start: true}
	current := start
	for {
		n, ok := next[current]
		if !ok || seen[n] {
			return current
		}
		seen[n] = true
		current = n
	}
}
