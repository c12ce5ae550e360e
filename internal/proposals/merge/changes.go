package merge

import "sort"

// Changes records the paths modified by a merge.
type Changes struct {
	paths map[string]struct{}
}

// MarkModified flags path as changed even when value comparison would not
// detect it.
func (c *Changes) MarkModified(path string) {
	if c.paths == nil {
		c.paths = make(map[string]struct{})
	}
	c.paths[path] = struct{}{}
}

// Modified reports whether any path changed.
func (c *Changes) Modified() bool {
	return c != nil && len(c.paths) > 0
}

// Paths returns the modified paths in sorted order.
func (c *Changes) Paths() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.paths))
	for p := range c.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
