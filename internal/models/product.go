// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus represents the lifecycle state of a catalog product.
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// ValidProductStatus reports whether the status is one of the known states.
func ValidProductStatus(s ProductStatus) bool {
	return s == ProductStatusDraft || s == ProductStatusActive || s == ProductStatusArchived
}

// Product represents one item in the shop catalog. Prices are stored in
// cents to avoid floating point rounding.
type Product struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	Slug            string        `json:"slug"`
	Description     string        `json:"description"`
	PriceCents      int64         `json:"price_cents"`
	CompareAtCents  *int64        `json:"compare_at_cents,omitempty"`
	SKU             *string       `json:"sku,omitempty"`
	Stock           int           `json:"stock"`
	Status          ProductStatus `json:"status"`
	ImageURL        *string       `json:"image_url,omitempty"`
	MetaDescription *string       `json:"meta_description,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
