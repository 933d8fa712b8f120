// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopadmin/internal/models"
	"shopadmin/internal/store"
)

// Discounts groups the coupon code HTTP handlers.
type Discounts struct {
	store *store.DiscountStore
}

// NewDiscounts creates a new Discounts handler group.
func NewDiscounts(s *store.DiscountStore) *Discounts {
	return &Discounts{store: s}
}

type discountRequest struct {
	Code          *string              `json:"code"`
	Description   *string              `json:"description"`
	Kind          *models.DiscountKind `json:"kind"`
	Value         *int64               `json:"value"`
	MinOrderCents *int64               `json:"minOrderCents"`
	StartsAt      *time.Time           `json:"startsAt"`
	EndsAt        *time.Time           `json:"endsAt"`
	MaxUses       *int                 `json:"maxUses"`
	IsActive      *bool                `json:"isActive"`
}

func validDiscountValue(kind models.DiscountKind, value int64) string {
	switch kind {
	case models.DiscountPercent:
		if value < 1 || value > 100 {
			return "percent value must be between 1 and 100"
		}
	case models.DiscountFixed:
		if value < 1 {
			return "fixed value must be a positive amount in cents"
		}
	default:
		return "kind must be percent or fixed"
	}
	return ""
}

// List returns every discount, newest first.
func (h *Discounts) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.Discount{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Get returns one discount.
func (h *Discounts) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid discount id")
		return
	}

	d, err := h.store.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if d == nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// Create adds a discount. Codes are normalized to uppercase and must be
// unique case-insensitively.
func (h *Discounts) Create(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == nil {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}
	if msg := validateDiscountCode(*req.Code); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Kind == nil || req.Value == nil {
		respondError(w, http.StatusBadRequest, "kind and value are required")
		return
	}
	if msg := validDiscountValue(*req.Kind, *req.Value); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	d := models.Discount{
		Code:     *req.Code,
		Kind:     *req.Kind,
		Value:    *req.Value,
		IsActive: true,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		MaxUses:  req.MaxUses,
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.MinOrderCents != nil {
		if *req.MinOrderCents < 0 {
			respondError(w, http.StatusBadRequest, "minOrderCents must be non-negative")
			return
		}
		d.MinOrderCents = *req.MinOrderCents
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	if req.MaxUses != nil && *req.MaxUses < 1 {
		respondError(w, http.StatusBadRequest, "maxUses must be positive")
		return
	}
	if d.StartsAt != nil && d.EndsAt != nil && d.EndsAt.Before(*d.StartsAt) {
		respondError(w, http.StatusBadRequest, "endsAt must be after startsAt")
		return
	}

	created, err := h.store.Create(&d)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("discount created", "id", created.ID, "code", created.Code)
	respondJSON(w, http.StatusCreated, created)
}

// Update patches a discount. The code itself is immutable once created.
func (h *Discounts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid discount id")
		return
	}

	d, err := h.store.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if d == nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	var req discountRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Kind != nil {
		d.Kind = *req.Kind
	}
	if req.Value != nil {
		d.Value = *req.Value
	}
	if msg := validDiscountValue(d.Kind, d.Value); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.MinOrderCents != nil {
		if *req.MinOrderCents < 0 {
			respondError(w, http.StatusBadRequest, "minOrderCents must be non-negative")
			return
		}
		d.MinOrderCents = *req.MinOrderCents
	}
	if req.StartsAt != nil {
		d.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		d.EndsAt = req.EndsAt
	}
	if req.MaxUses != nil {
		if *req.MaxUses < 1 {
			respondError(w, http.StatusBadRequest, "maxUses must be positive")
			return
		}
		d.MaxUses = req.MaxUses
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	if d.StartsAt != nil && d.EndsAt != nil && d.EndsAt.Before(*d.StartsAt) {
		respondError(w, http.StatusBadRequest, "endsAt must be after startsAt")
		return
	}

	if err := h.store.Update(d); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// Delete removes a discount.
func (h *Discounts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid discount id")
		return
	}
	if err := h.store.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
