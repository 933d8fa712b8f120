// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// component.go persists the page-builder component list attached to a
// service. The list is replaced wholesale on save (the editor owns the
// authoritative in-memory array), never patched per component.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"shopadmin/internal/models"
)

// insertComponents writes a component list (with carousel sub-lists)
// inside an existing transaction. Orders are persisted as given; the
// caller normalizes them to dense 0..N-1 first.
func insertComponents(tx *sql.Tx, serviceID uuid.UUID, comps []models.PageComponent) error {
	compStmt, err := tx.Prepare(`
		INSERT INTO page_components (id, service_id, type, content, style_variant, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("prepare insert component: %w", err)
	}
	defer compStmt.Close()

	imgStmt, err := tx.Prepare(`
		INSERT INTO carousel_images (id, component_id, image_url, alt_text, caption, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("prepare insert carousel image: %w", err)
	}
	defer imgStmt.Close()

	for _, c := range comps {
		content, err := json.Marshal(c.Content)
		if err != nil {
			return fmt.Errorf("encode component content: %w", err)
		}
		if _, err := compStmt.Exec(c.ID, serviceID, c.Type, content, c.StyleVariant, c.Order); err != nil {
			return fmt.Errorf("insert component %s: %w", c.ID, err)
		}
		for _, img := range c.CarouselImages {
			if _, err := imgStmt.Exec(img.ID, c.ID, img.ImageURL, img.AltText, img.Caption, img.Order); err != nil {
				return fmt.Errorf("insert carousel image %s: %w", img.ID, err)
			}
		}
	}
	return nil
}

// ReplaceComponents swaps a service's entire component list in one
// transaction: existing components (and their carousel images, via FK
// cascade) are deleted and the new list inserted.
func (s *ServiceStore) ReplaceComponents(serviceID uuid.UUID, comps []models.PageComponent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM services WHERE id = $1)`, serviceID).Scan(&exists); err != nil {
		return fmt.Errorf("check service: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM page_components WHERE service_id = $1`, serviceID); err != nil {
		return fmt.Errorf("clear components: %w", err)
	}

	if err := insertComponents(tx, serviceID, comps); err != nil {
		return err
	}

	return tx.Commit()
}

// ListComponents returns a service's components ordered by sort_order,
// carousel images attached to their parent component.
func (s *ServiceStore) ListComponents(serviceID uuid.UUID) ([]models.PageComponent, error) {
	rows, err := s.db.Query(`
		SELECT id, service_id, type, content, style_variant, sort_order, created_at, updated_at
		FROM page_components
		WHERE service_id = $1
		ORDER BY sort_order
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	var comps []models.PageComponent
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var c models.PageComponent
		var rawContent []byte
		err := rows.Scan(&c.ID, &c.ServiceID, &c.Type, &rawContent, &c.StyleVariant, &c.Order, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		if err := json.Unmarshal(rawContent, &c.Content); err != nil {
			return nil, fmt.Errorf("decode component content: %w", err)
		}
		index[c.ID] = len(comps)
		comps = append(comps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(comps) == 0 {
		return comps, nil
	}

	imgRows, err := s.db.Query(`
		SELECT ci.id, ci.component_id, ci.image_url, ci.alt_text, ci.caption, ci.sort_order
		FROM carousel_images ci
		JOIN page_components pc ON pc.id = ci.component_id
		WHERE pc.service_id = $1
		ORDER BY ci.sort_order
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list carousel images: %w", err)
	}
	defer imgRows.Close()

	for imgRows.Next() {
		var img models.CarouselImage
		err := imgRows.Scan(&img.ID, &img.ComponentID, &img.ImageURL, &img.AltText, &img.Caption, &img.Order)
		if err != nil {
			return nil, fmt.Errorf("scan carousel image: %w", err)
		}
		if i, ok := index[img.ComponentID]; ok {
			comps[i].CarouselImages = append(comps[i].CarouselImages, img)
		}
	}
	return comps, imgRows.Err()
}
