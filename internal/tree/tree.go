// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree holds the pure bookkeeping logic for the hierarchical
// service catalog: nesting a flat row set into a tree, and recomputing
// materialized depth/path values when a subtree moves. Database access
// stays in the store layer; everything here is deterministic and
// testable without a database.
package tree

import (
	"sort"

	"github.com/google/uuid"

	"shopadmin/internal/models"
)

// BuildOptions controls tree assembly.
type BuildOptions struct {
	// IncludeInactive keeps nodes with IsActive == false in the tree.
	IncludeInactive bool

	// MaxDepth limits the tree to nodes with Depth <= MaxDepth.
	// Negative means unlimited.
	MaxDepth int
}

// Build nests a flat list of services into a tree. Children are grouped
// under their parent and ordered by (position, name). Nodes whose parent
// is absent from the input set (filtered out, e.g. inactive) are
// orphans and are dropped; they don't surface as roots.
func Build(flat []models.Service, opts BuildOptions) []models.Service {
	byParent := make(map[uuid.UUID][]models.Service)
	var roots []models.Service

	for _, s := range flat {
		if !opts.IncludeInactive && !s.IsActive {
			continue
		}
		if opts.MaxDepth >= 0 && s.Depth > opts.MaxDepth {
			continue
		}
		if s.ParentID == nil {
			roots = append(roots, s)
		} else {
			byParent[*s.ParentID] = append(byParent[*s.ParentID], s)
		}
	}

	sortSiblings(roots)
	for i := range roots {
		attachChildren(&roots[i], byParent)
	}
	return roots
}

// attachChildren recursively fills in the Children slices from the
// parent-id index.
func attachChildren(node *models.Service, byParent map[uuid.UUID][]models.Service) {
	children := byParent[node.ID]
	sortSiblings(children)
	for i := range children {
		attachChildren(&children[i], byParent)
	}
	node.Children = children
	node.ChildCount = len(children)
}

// sortSiblings orders a sibling group by position, falling back to name
// for equal positions (positions are an ordering hint, not unique by
// construction across historical data).
func sortSiblings(siblings []models.Service) {
	sort.SliceStable(siblings, func(i, j int) bool {
		if siblings[i].Position != siblings[j].Position {
			return siblings[i].Position < siblings[j].Position
		}
		return siblings[i].Name < siblings[j].Name
	})
}

// Flatten walks a service tree depth-first, appending every node to a
// flat display list. Useful for parent <select> dropdowns.
func Flatten(nodes []models.Service) []models.Service {
	var result []models.Service
	var walk func([]models.Service)
	walk = func(items []models.Service) {
		for _, n := range items {
			children := n.Children
			n.Children = nil
			result = append(result, n)
			walk(children)
		}
	}
	walk(nodes)
	return result
}

// ChildPath returns the materialized path for a child of the given
// parent: the parent's own path with the parent's id appended. A nil
// parent yields the empty root path.
func ChildPath(parent *models.Service) []uuid.UUID {
	if parent == nil {
		return []uuid.UUID{}
	}
	path := make([]uuid.UUID, 0, len(parent.Path)+1)
	path = append(path, parent.Path...)
	path = append(path, parent.ID)
	return path
}

// ChildDepth returns the depth for a child of the given parent.
func ChildDepth(parent *models.Service) int {
	if parent == nil {
		return 0
	}
	return parent.Depth + 1
}

// Fixup holds the recomputed depth and path for one node after a move.
type Fixup struct {
	ID    uuid.UUID
	Depth int
	Path  []uuid.UUID
}

// RecomputeSubtree computes the depth/path fix-ups for a node that moved
// under a new parent, and for every one of its descendants. moved must
// be the node's state BEFORE the move; descendants is the full set of
// nodes whose stored path contains moved.ID. The walk is breadth-first
// over parent edges so a parent's new path is always computed before its
// children's.
func RecomputeSubtree(moved models.Service, newParent *models.Service, descendants []models.Service) []Fixup {
	newDepth := ChildDepth(newParent)
	newPath := ChildPath(newParent)

	fixups := []Fixup{{ID: moved.ID, Depth: newDepth, Path: newPath}}

	// Index the recomputed values so children can extend them.
	depthByID := map[uuid.UUID]int{moved.ID: newDepth}
	pathByID := map[uuid.UUID][]uuid.UUID{moved.ID: newPath}

	byParent := make(map[uuid.UUID][]models.Service)
	for _, d := range descendants {
		if d.ParentID != nil {
			byParent[*d.ParentID] = append(byParent[*d.ParentID], d)
		}
	}

	queue := []uuid.UUID{moved.ID}
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]

		parentDepth := depthByID[parentID]
		parentPath := pathByID[parentID]

		for _, child := range byParent[parentID] {
			childPath := make([]uuid.UUID, 0, len(parentPath)+1)
			childPath = append(childPath, parentPath...)
			childPath = append(childPath, parentID)

			depthByID[child.ID] = parentDepth + 1
			pathByID[child.ID] = childPath
			fixups = append(fixups, Fixup{ID: child.ID, Depth: parentDepth + 1, Path: childPath})
			queue = append(queue, child.ID)
		}
	}

	return fixups
}
