// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"shopadmin/internal/models"
)

// DiscountStore handles discount code database operations.
type DiscountStore struct {
	db *sql.DB
}

// NewDiscountStore returns a new DiscountStore.
func NewDiscountStore(db *sql.DB) *DiscountStore {
	return &DiscountStore{db: db}
}

const discountColumns = `id, code, description, kind, value, min_order_cents, starts_at, ends_at, max_uses, used_count, is_active, created_at, updated_at`

// scanDiscount scans a row into a Discount struct.
func scanDiscount(scanner interface{ Scan(...any) error }) (*models.Discount, error) {
	var d models.Discount
	err := scanner.Scan(
		&d.ID, &d.Code, &d.Description, &d.Kind, &d.Value, &d.MinOrderCents,
		&d.StartsAt, &d.EndsAt, &d.MaxUses, &d.UsedCount, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns all discounts, newest first.
func (s *DiscountStore) List() ([]models.Discount, error) {
	rows, err := s.db.Query(`SELECT ` + discountColumns + ` FROM discounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	defer rows.Close()

	var items []models.Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan discount: %w", err)
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

// FindByID retrieves a discount by ID. Returns nil if not found.
func (s *DiscountStore) FindByID(id uuid.UUID) (*models.Discount, error) {
	row := s.db.QueryRow(`SELECT `+discountColumns+` FROM discounts WHERE id = $1`, id)
	d, err := scanDiscount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find discount by id: %w", err)
	}
	return d, nil
}

// FindByCode retrieves a discount by its code, case-insensitively.
// Returns nil if not found.
func (s *DiscountStore) FindByCode(code string) (*models.Discount, error) {
	row := s.db.QueryRow(`SELECT `+discountColumns+` FROM discounts WHERE code = $1`, strings.ToUpper(code))
	d, err := scanDiscount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find discount by code: %w", err)
	}
	return d, nil
}

// Create inserts a new discount. Codes are stored uppercased.
func (s *DiscountStore) Create(d *models.Discount) (*models.Discount, error) {
	row := s.db.QueryRow(`
		INSERT INTO discounts (code, description, kind, value, min_order_cents, starts_at, ends_at, max_uses, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+discountColumns,
		strings.ToUpper(d.Code), d.Description, d.Kind, d.Value, d.MinOrderCents,
		d.StartsAt, d.EndsAt, d.MaxUses, d.IsActive,
	)
	result, err := scanDiscount(row)
	if err != nil {
		if isUniqueViolation(err, "discounts_code_key") {
			return nil, ErrCodeTaken
		}
		return nil, fmt.Errorf("create discount: %w", err)
	}
	return result, nil
}

// Update modifies an existing discount. The code itself is immutable
// after creation; used_count only moves through IncrementUsage.
func (s *DiscountStore) Update(d *models.Discount) error {
	result, err := s.db.Exec(`
		UPDATE discounts SET
			description = $1, kind = $2, value = $3, min_order_cents = $4,
			starts_at = $5, ends_at = $6, max_uses = $7, is_active = $8, updated_at = NOW()
		WHERE id = $9
	`, d.Description, d.Kind, d.Value, d.MinOrderCents, d.StartsAt, d.EndsAt, d.MaxUses, d.IsActive, d.ID)
	if err != nil {
		return fmt.Errorf("update discount: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementUsage bumps used_count by one, but only while the discount
// still has uses left. Returns ErrNotFound when the discount is
// missing or exhausted.
func (s *DiscountStore) IncrementUsage(id uuid.UUID) error {
	result, err := s.db.Exec(`
		UPDATE discounts SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND (max_uses IS NULL OR used_count < max_uses)
	`, id)
	if err != nil {
		return fmt.Errorf("increment discount usage: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a discount by ID.
func (s *DiscountStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete discount: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
