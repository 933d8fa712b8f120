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

// ProductStore handles catalog product database operations.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, slug, description, price_cents, compare_at_cents, sku, stock, status, image_url, meta_description, created_at, updated_at`

// scanProduct scans a row into a Product struct.
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.PriceCents,
		&p.CompareAtCents, &p.SKU, &p.Stock, &p.Status,
		&p.ImageURL, &p.MetaDescription, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductListParams filters and paginates the product listing.
type ProductListParams struct {
	Page   int
	Limit  int
	Search string // matches name, slug, or SKU, case-insensitive
	Status string // one of the product statuses, or "" for all
}

// List returns a filtered page of products plus the total row count.
func (s *ProductStore) List(p ProductListParams) ([]models.Product, int, error) {
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
		where = append(where, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(slug) LIKE $%d OR LOWER(COALESCE(sku, '')) LIKE $%d)", len(args), len(args), len(args)))
	}
	if p.Status != "" {
		args = append(args, p.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args = append(args, p.Limit, (p.Page-1)*p.Limit)
	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, len(args)-1, len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		prod, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *prod)
	}
	return items, total, rows.Err()
}

// FindByID retrieves a product by ID. Returns nil if not found.
func (s *ProductStore) FindByID(id uuid.UUID) (*models.Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// SlugExists reports whether any product already uses the given slug.
func (s *ProductStore) SlugExists(slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new product and returns it.
func (s *ProductStore) Create(p *models.Product) (*models.Product, error) {
	row := s.db.QueryRow(`
		INSERT INTO products (name, slug, description, price_cents, compare_at_cents, sku, stock, status, image_url, meta_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+productColumns,
		p.Name, p.Slug, p.Description, p.PriceCents, p.CompareAtCents,
		p.SKU, p.Stock, p.Status, p.ImageURL, p.MetaDescription,
	)
	result, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err, "products_slug_key") {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return result, nil
}

// Update modifies an existing product.
func (s *ProductStore) Update(p *models.Product) error {
	_, err := s.db.Exec(`
		UPDATE products SET
			name = $1, slug = $2, description = $3, price_cents = $4,
			compare_at_cents = $5, sku = $6, stock = $7, status = $8,
			image_url = $9, meta_description = $10, updated_at = NOW()
		WHERE id = $11
	`, p.Name, p.Slug, p.Description, p.PriceCents, p.CompareAtCents,
		p.SKU, p.Stock, p.Status, p.ImageURL, p.MetaDescription, p.ID)
	if err != nil {
		if isUniqueViolation(err, "products_slug_key") {
			return ErrSlugTaken
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete removes a product by ID.
func (s *ProductStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
