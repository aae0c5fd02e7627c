package catalog

import "strings"

// PathSeparator joins node names in a subcategory path.
const PathSeparator = " > "

// PathEntry is one row of the flattened tree used by the catalog sidebar.
type PathEntry struct {
	ID    uint   `json:"id"`
	Path  string `json:"path"`
	Depth int    `json:"depth"`
}

// JoinPath joins trimmed names with PathSeparator, skipping empty names.
func JoinPath(names ...string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, PathSeparator)
}

// SplitPath splits a path on '>' and trims each segment, so
// "A>B" and "A  >  B" both yield [A B].
func SplitPath(path string) []string {
	var out []string
	for _, p := range strings.Split(path, ">") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizePath rewrites a path in canonical spacing.
func NormalizePath(path string) string {
	return JoinPath(SplitPath(path)...)
}

// Paths flattens a forest depth-first, parents before children.
func Paths(forest []*Node) []PathEntry {
	out := []PathEntry{}
	var walk func(nodes []*Node, prefix []string)
	walk = func(nodes []*Node, prefix []string) {
		for _, n := range nodes {
			names := append(append([]string{}, prefix...), n.Name)
			out = append(out, PathEntry{ID: n.ID, Path: JoinPath(names...), Depth: len(names) - 1})
			walk(n.Children, names)
		}
	}
	walk(forest, nil)
	return out
}

// PathIndex maps every node id of the forest to its path.
func PathIndex(forest []*Node) map[uint]string {
	entries := Paths(forest)
	idx := make(map[uint]string, len(entries))
	for _, e := range entries {
		idx[e.ID] = e.Path
	}
	return idx
}

// Resolve finds the node addressed by path inside the forest.
// Name comparison is case-insensitive.
func Resolve(forest []*Node, path string) (uint, bool) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return 0, false
	}

	level := forest
	var found *Node
	for _, seg := range segments {
		found = nil
		for _, n := range level {
			if strings.EqualFold(n.Name, seg) {
				found = n
				break
			}
		}
		if found == nil {
			return 0, false
		}
		level = found.Children
	}
	return found.ID, true
}
