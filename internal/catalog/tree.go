// Package catalog holds the pure rules of the product catalog: the
// subcategory tree and its path encoding, product filtering and the
// admin rank batch.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/01moynul/calibration-catalog/internal/models"
)

// ErrInvalidTree is returned by ValidateTree for malformed submitted trees.
var ErrInvalidTree = errors.New("invalid subcategory tree")

// Node is one subcategory in a reconstructed tree.
type Node struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Children []*Node `json:"children"`
}

// BuildForest reconstructs the nested subcategory forest from flat rows.
// Siblings are ordered by Position, then ID. Rows whose parent is missing
// are treated as roots.
func BuildForest(rows []models.Subcategory) []*Node {
	sorted := make([]models.Subcategory, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].ID < sorted[j].ID
	})

	// 1. One node per row, keyed by id.
	nodes := make(map[uint]*Node, len(sorted))
	for _, r := range sorted {
		nodes[r.ID] = &Node{ID: r.ID, Name: r.Name, Children: []*Node{}}
	}

	// 2. Attach each node to its parent (pointer magic: the parent's slice
	// holds the same *Node we keep filling in).
	roots := []*Node{}
	for _, r := range sorted {
		n := nodes[r.ID]
		if r.ParentID != nil && *r.ParentID != r.ID {
			if parent, ok := nodes[*r.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// ValidateTree checks a submitted tree before it is persisted.
func ValidateTree(nodes []models.SubcategoryNode) error {
	return validateLevel(nodes, nil)
}

func validateLevel(nodes []models.SubcategoryNode, prefix []string) error {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		name := strings.TrimSpace(n.Name)
		where := JoinPath(append(append([]string{}, prefix...), name)...)
		switch {
		case name == "":
			if len(prefix) == 0 {
				return fmt.Errorf("%w: empty subcategory name", ErrInvalidTree)
			}
			return fmt.Errorf("%w: empty subcategory name under %q", ErrInvalidTree, JoinPath(prefix...))
		case strings.Contains(name, ">"):
			return fmt.Errorf("%w: name %q must not contain '>'", ErrInvalidTree, name)
		case seen[strings.ToLower(name)]:
			return fmt.Errorf("%w: duplicate subcategory %q", ErrInvalidTree, where)
		}
		seen[strings.ToLower(name)] = true

		if err := validateLevel(n.Children, append(append([]string{}, prefix...), name)); err != nil {
			return err
		}
	}
	return nil
}
