// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Service represents one node in the hierarchical service catalog.
// The hierarchy is self-referencing through ParentID. Depth and Path are
// materialized at write time: Depth is the distance from a root node and
// Path is the ordered ancestor chain from root to the immediate parent
// (the node itself is excluded). Both are recomputed for the whole
// subtree whenever a node is re-parented.
type Service struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Slug            string      `json:"slug"`
	Description     string      `json:"description"`
	ImageURL        *string     `json:"image_url,omitempty"`
	ParentID        *uuid.UUID  `json:"parent_id"`
	Position        int         `json:"position"`
	Depth           int         `json:"depth"`
	Path            []uuid.UUID `json:"path"`
	IsActive        bool        `json:"is_active"`
	MetaDescription *string     `json:"meta_description,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	// Virtual fields populated by store/tree methods.
	Children      []Service `json:"children,omitempty"`
	ChildCount    int       `json:"child_count"`
	ComponentList []PageComponent `json:"components,omitempty"`
}

// IsRoot returns true if the service has no parent.
func (s *Service) IsRoot() bool {
	return s.ParentID == nil
}

// HasAncestor reports whether the given id appears in the node's
// materialized ancestor chain.
func (s *Service) HasAncestor(id uuid.UUID) bool {
	for _, a := range s.Path {
		if a == id {
			return true
		}
	}
	return false
}
