package category

import (
	"sort"
	"strings"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description,omitempty"`
	ParentID     *string   `json:"parentId,omitempty"`
	Status       Status    `json:"status"`
	SortOrder    int       `json:"sortOrder"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Input is the writable part of a Category.
type Input struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	ParentID    *string `json:"parentId"`
	Status      Status  `json:"status"`
	SortOrder   int     `json:"sortOrder"`
}

type Node struct {
	Category
	Children []*Node `json:"children"`
}

// BuildTree nests categories under their parents. Categories whose parent is
// not in the list become roots. Siblings are ordered by sortOrder then name.
func BuildTree(cats []Category) []*Node {
	nodes := make(map[string]*Node, len(cats))
	for _, c := range cats {
		nodes[c.ID] = &Node{Category: c, Children: []*Node{}}
	}

	roots := make([]*Node, 0)
	for _, c := range cats {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// pruneInactive drops inactive nodes together with everything below them.
func pruneInactive(nodes []*Node) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Status != StatusActive {
			continue
		}
		n.Children = pruneInactive(n.Children)
		out = append(out, n)
	}
	return out
}

func find(nodes []*Node, slug string) *Node {
	for _, n := range nodes {
		if n.Slug == slug {
			return n
		}
		if found := find(n.Children, slug); found != nil {
			return found
		}
	}
	return nil
}
