// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DiscountKind distinguishes percentage discounts from fixed-amount ones.
type DiscountKind string

const (
	DiscountPercent DiscountKind = "percent"
	DiscountFixed   DiscountKind = "fixed"
)

// Discount represents a coupon code rule. Value is a percentage (1-100)
// for percent discounts and an amount in cents for fixed discounts.
type Discount struct {
	ID            uuid.UUID    `json:"id"`
	Code          string       `json:"code"`
	Description   string       `json:"description"`
	Kind          DiscountKind `json:"kind"`
	Value         int64        `json:"value"`
	MinOrderCents int64        `json:"min_order_cents"`
	StartsAt      *time.Time   `json:"starts_at,omitempty"`
	EndsAt        *time.Time   `json:"ends_at,omitempty"`
	MaxUses       *int         `json:"max_uses,omitempty"`
	UsedCount     int          `json:"used_count"`
	IsActive      bool         `json:"is_active"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Usable reports whether the discount can currently be applied: active,
// inside its validity window, and under its usage cap.
func (d *Discount) Usable(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && now.After(*d.EndsAt) {
		return false
	}
	if d.MaxUses != nil && d.UsedCount >= *d.MaxUses {
		return false
	}
	return true
}
