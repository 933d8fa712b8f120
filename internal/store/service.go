// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shopadmin/internal/models"
	"shopadmin/internal/tree"
)

// ServiceStore manages the hierarchical service catalog and the page
// components attached to each service.
type ServiceStore struct {
	db *sql.DB
}

// NewServiceStore returns a new ServiceStore.
func NewServiceStore(db *sql.DB) *ServiceStore {
	return &ServiceStore{db: db}
}

const serviceColumns = `id, name, slug, description, image_url, parent_id, position, depth, path, is_active, meta_description, created_at, updated_at`

// encodePath marshals an ancestor chain for the jsonb path column.
func encodePath(path []uuid.UUID) []byte {
	if path == nil {
		path = []uuid.UUID{}
	}
	b, _ := json.Marshal(path)
	return b
}

// scanService scans a row into a Service struct, decoding the jsonb path.
func scanService(scanner interface{ Scan(...any) error }) (*models.Service, error) {
	var s models.Service
	var rawPath []byte
	err := scanner.Scan(
		&s.ID, &s.Name, &s.Slug, &s.Description, &s.ImageURL,
		&s.ParentID, &s.Position, &s.Depth, &rawPath,
		&s.IsActive, &s.MetaDescription, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawPath, &s.Path); err != nil {
		return nil, fmt.Errorf("decode service path: %w", err)
	}
	return &s, nil
}

// querier abstracts *sql.DB and *sql.Tx so lookups work inside and
// outside transactions.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

// findByID retrieves a service through the given querier. Returns
// (nil, nil) if not found.
func findServiceByID(q querier, id uuid.UUID) (*models.Service, error) {
	row := q.QueryRow(`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	s, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find service by id: %w", err)
	}
	return s, nil
}

// FindByID retrieves a service by ID. Returns nil if not found.
func (s *ServiceStore) FindByID(id uuid.UUID) (*models.Service, error) {
	return findServiceByID(s.db, id)
}

// FindBySlug retrieves a service by slug. Returns nil if not found.
func (s *ServiceStore) FindBySlug(slug string) (*models.Service, error) {
	row := s.db.QueryRow(`SELECT `+serviceColumns+` FROM services WHERE slug = $1`, slug)
	svc, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find service by slug: %w", err)
	}
	return svc, nil
}

// SlugExists reports whether any service already uses the given slug.
func (s *ServiceStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM services WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check service slug: %w", err)
	}
	return exists, nil
}

// All returns every service ordered by (depth, position, name), with
// child counts. Input for tree assembly.
func (s *ServiceStore) All() ([]models.Service, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.name, s.slug, s.description, s.image_url, s.parent_id,
		       s.position, s.depth, s.path, s.is_active, s.meta_description,
		       s.created_at, s.updated_at,
		       COUNT(c.id) AS child_count
		FROM services s
		LEFT JOIN services c ON c.parent_id = s.id
		GROUP BY s.id
		ORDER BY s.depth, s.position, s.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var items []models.Service
	for rows.Next() {
		var svc models.Service
		var rawPath []byte
		err := rows.Scan(
			&svc.ID, &svc.Name, &svc.Slug, &svc.Description, &svc.ImageURL,
			&svc.ParentID, &svc.Position, &svc.Depth, &rawPath,
			&svc.IsActive, &svc.MetaDescription, &svc.CreatedAt, &svc.UpdatedAt,
			&svc.ChildCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		if err := json.Unmarshal(rawPath, &svc.Path); err != nil {
			return nil, fmt.Errorf("decode service path: %w", err)
		}
		items = append(items, svc)
	}
	return items, rows.Err()
}

// ListParams filters and paginates the flat service listing.
type ListParams struct {
	Page       int
	Limit      int
	Search     string // matches name or slug, case-insensitive
	Status     string // "active", "inactive", or "" for all
	ParentOnly bool   // root services only
}

// List returns a filtered page of services plus the total row count for
// pagination.
func (s *ServiceStore) List(p ListParams) ([]models.Service, int, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > 100 {
		p.Limit = 20
	}

	var where []string
	var args []any
	if p.Search != "" {
		args = append(args, "%"+strings.ToLower(p.Search)+"%")
		where = append(where, fmt.Sprintf("(LOWER(s.name) LIKE $%d OR LOWER(s.slug) LIKE $%d)", len(args), len(args)))
	}
	switch p.Status {
	case "active":
		where = append(where, "s.is_active")
	case "inactive":
		where = append(where, "NOT s.is_active")
	}
	if p.ParentOnly {
		where = append(where, "s.parent_id IS NULL")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM services s ` + whereClause
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count services: %w", err)
	}

	args = append(args, p.Limit, (p.Page-1)*p.Limit)
	query := fmt.Sprintf(`
		SELECT s.id, s.name, s.slug, s.description, s.image_url, s.parent_id,
		       s.position, s.depth, s.path, s.is_active, s.meta_description,
		       s.created_at, s.updated_at,
		       COUNT(c.id) AS child_count
		FROM services s
		LEFT JOIN services c ON c.parent_id = s.id
		%s
		GROUP BY s.id
		ORDER BY s.depth, s.position, s.name
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)-1, len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var items []models.Service
	for rows.Next() {
		var svc models.Service
		var rawPath []byte
		err := rows.Scan(
			&svc.ID, &svc.Name, &svc.Slug, &svc.Description, &svc.ImageURL,
			&svc.ParentID, &svc.Position, &svc.Depth, &rawPath,
			&svc.IsActive, &svc.MetaDescription, &svc.CreatedAt, &svc.UpdatedAt,
			&svc.ChildCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan service: %w", err)
		}
		if err := json.Unmarshal(rawPath, &svc.Path); err != nil {
			return nil, 0, fmt.Errorf("decode service path: %w", err)
		}
		items = append(items, svc)
	}
	return items, total, rows.Err()
}

// Create inserts a new service, computing position, depth, and path from
// the parent inside a single transaction. An optional component list is
// persisted in the same transaction, so the whole operation succeeds or
// rolls back atomically.
//
// The slug pre-check and parent lookup both run before the insert; the
// unique constraint on slug remains the authoritative guard, and a
// violation that slips past the pre-check maps to the same ErrSlugTaken.
// Position is assigned by a subselect in the INSERT itself so concurrent
// creators under the same parent cannot read a stale maximum.
func (s *ServiceStore) Create(svc *models.Service, comps []models.PageComponent) (*models.Service, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM services WHERE slug = $1)`, svc.Slug).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check service slug: %w", err)
	}
	if exists {
		return nil, ErrSlugTaken
	}

	var parent *models.Service
	if svc.ParentID != nil {
		parent, err = findServiceByID(tx, *svc.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrParentNotFound
		}
	}

	svc.Depth = tree.ChildDepth(parent)
	svc.Path = tree.ChildPath(parent)

	row := tx.QueryRow(`
		INSERT INTO services (name, slug, description, image_url, parent_id, position, depth, path, is_active, meta_description)
		VALUES ($1, $2, $3, $4, $5,
		        COALESCE((SELECT MAX(position) + 1 FROM services WHERE parent_id IS NOT DISTINCT FROM $5), 0),
		        $6, $7, $8, $9)
		RETURNING `+serviceColumns,
		svc.Name, svc.Slug, svc.Description, svc.ImageURL, svc.ParentID,
		svc.Depth, encodePath(svc.Path), svc.IsActive, svc.MetaDescription,
	)
	created, err := scanService(row)
	if err != nil {
		if isUniqueViolation(err, "services_slug_key") {
			return nil, ErrSlugTaken
		}
		if isPositionConflict(err) {
			return nil, ErrPositionConflict
		}
		return nil, fmt.Errorf("create service: %w", err)
	}

	if len(comps) > 0 {
		if err := insertComponents(tx, created.ID, comps); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create service: %w", err)
	}
	return created, nil
}

// updateServiceFields rewrites a service's own columns through the
// given querier.
func updateServiceFields(q querier, svc *models.Service) error {
	_, err := q.Exec(`
		UPDATE services SET
			name = $1, slug = $2, description = $3, image_url = $4,
			is_active = $5, meta_description = $6, updated_at = NOW()
		WHERE id = $7
	`, svc.Name, svc.Slug, svc.Description, svc.ImageURL,
		svc.IsActive, svc.MetaDescription, svc.ID)
	if err != nil {
		if isUniqueViolation(err, "services_slug_key") {
			return ErrSlugTaken
		}
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

// Update modifies a service's own fields (name, slug, description,
// image, visibility, metadata). Parent changes go through Move or
// UpdateAndMove, which also fix up the descendants' materialized
// depth/path.
func (s *ServiceStore) Update(svc *models.Service) error {
	return updateServiceFields(s.db, svc)
}

// Move re-parents a service inside its own transaction. Passing a nil
// newParentID promotes the service to a root.
func (s *ServiceStore) Move(id uuid.UUID, newParentID *uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := moveService(tx, id, newParentID); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateAndMove applies field edits and a re-parent as one atomic
// operation: a rejected move (circular reference, missing parent) rolls
// the field edits back too, leaving the row exactly as it was.
func (s *ServiceStore) UpdateAndMove(svc *models.Service, newParentID *uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := updateServiceFields(tx, svc); err != nil {
		return err
	}
	if err := moveService(tx, svc.ID, newParentID); err != nil {
		return err
	}
	return tx.Commit()
}

// moveService re-parents a service inside an existing transaction. It:
//  1. rejects moves that would make the service its own ancestor,
//  2. assigns the next position under the new parent,
//  3. recomputes depth and path for the moved service AND every
//     descendant (their stored values go stale otherwise).
func moveService(tx *sql.Tx, id uuid.UUID, newParentID *uuid.UUID) error {
	node, err := findServiceByID(tx, id)
	if err != nil {
		return err
	}
	if node == nil {
		return ErrNotFound
	}

	var parent *models.Service
	if newParentID != nil {
		if *newParentID == node.ID {
			return ErrCircularReference
		}
		parent, err = findServiceByID(tx, *newParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return ErrParentNotFound
		}
		// The new parent's materialized path is the ancestor chain to
		// walk: if the moved node appears in it, the parent is a
		// descendant of the node.
		if parent.HasAncestor(node.ID) {
			return ErrCircularReference
		}
	}

	descendants, err := listDescendants(tx, node.ID)
	if err != nil {
		return err
	}

	fixups := tree.RecomputeSubtree(*node, parent, descendants)

	// Position under the new parent, atomically with the update.
	_, err = tx.Exec(`
		UPDATE services SET
			parent_id = $1,
			position = COALESCE((SELECT MAX(position) + 1 FROM services WHERE parent_id IS NOT DISTINCT FROM $1 AND id <> $2), 0),
			updated_at = NOW()
		WHERE id = $2
	`, newParentID, node.ID)
	if err != nil {
		if isPositionConflict(err) {
			return ErrPositionConflict
		}
		return fmt.Errorf("move service: %w", err)
	}

	stmt, err := tx.Prepare(`UPDATE services SET depth = $1, path = $2, updated_at = NOW() WHERE id = $3`)
	if err != nil {
		return fmt.Errorf("prepare subtree fixup: %w", err)
	}
	defer stmt.Close()

	for _, f := range fixups {
		if _, err := stmt.Exec(f.Depth, encodePath(f.Path), f.ID); err != nil {
			return fmt.Errorf("fixup service %s: %w", f.ID, err)
		}
	}

	return nil
}

// listDescendants returns every service whose stored path contains the
// given id, i.e. the full subtree below it.
func listDescendants(q querier, id uuid.UUID) ([]models.Service, error) {
	needle, _ := json.Marshal([]uuid.UUID{id})
	rows, err := q.Query(`SELECT `+serviceColumns+` FROM services WHERE path @> $1::jsonb`, needle)
	if err != nil {
		return nil, fmt.Errorf("list descendants: %w", err)
	}
	defer rows.Close()

	var items []models.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan descendant: %w", err)
		}
		items = append(items, *svc)
	}
	return items, rows.Err()
}

// CountChildren returns the number of direct children of a service.
func (s *ServiceStore) CountChildren(id uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM services WHERE parent_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return count, nil
}

// Delete removes a service. Services with children are rejected so no
// subtree is orphaned. Sibling positions are NOT compacted; they are an
// ordering hint and gaps are fine.
func (s *ServiceStore) Delete(id uuid.UUID) error {
	count, err := s.CountChildren(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasChildren
	}

	result, err := s.db.Exec(`DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		// ON DELETE RESTRICT fires when a child appeared after the
		// pre-check above; same answer either way.
		if isForeignKeyViolation(err) {
			return ErrHasChildren
		}
		return fmt.Errorf("delete service: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
