// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopadmin/internal/models"
	"shopadmin/internal/slug"
	"shopadmin/internal/store"
)

// Products groups the catalog product HTTP handlers.
type Products struct {
	store *store.ProductStore
}

// NewProducts creates a new Products handler group.
func NewProducts(s *store.ProductStore) *Products {
	return &Products{store: s}
}

type productRequest struct {
	Name            *string               `json:"name"`
	Slug            *string               `json:"slug"`
	Description     *string               `json:"description"`
	PriceCents      *int64                `json:"priceCents"`
	CompareAtCents  *int64                `json:"compareAtCents"`
	SKU             *string               `json:"sku"`
	Stock           *int                  `json:"stock"`
	Status          *models.ProductStatus `json:"status"`
	ImageURL        *string               `json:"imageUrl"`
	MetaDescription *string               `json:"metaDescription"`
}

// List returns a paginated product listing with search and status filters.
func (h *Products) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	params := store.ProductListParams{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
		Status: q.Get("status"),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 20
	}

	items, total, err := h.store.List(params)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.Product{}
	}
	respondJSON(w, http.StatusOK, listResponse{
		Items:      items,
		Pagination: newPagination(params.Page, params.Limit, total),
	})
}

// Get returns one product.
func (h *Products) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.store.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Create adds a product. New products default to draft status.
func (h *Products) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if msg := validateName(*req.Name); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.PriceCents == nil || *req.PriceCents < 0 {
		respondError(w, http.StatusBadRequest, "priceCents must be a non-negative integer")
		return
	}

	p := models.Product{
		Name:       *req.Name,
		PriceCents: *req.PriceCents,
		Status:     models.ProductStatusDraft,
	}
	if req.Slug != nil && *req.Slug != "" {
		if !slug.Valid(*req.Slug) {
			respondError(w, http.StatusBadRequest, "slug may only contain lowercase letters, digits, and dashes")
			return
		}
		p.Slug = *req.Slug
	} else {
		base := slug.Generate(*req.Name)
		p.Slug = base
		for n := 2; ; n++ {
			taken, err := h.store.SlugExists(p.Slug)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			if !taken {
				break
			}
			p.Slug = slug.WithSuffix(base, n)
		}
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		if !models.ValidProductStatus(*req.Status) {
			respondError(w, http.StatusBadRequest, "invalid product status")
			return
		}
		p.Status = *req.Status
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			respondError(w, http.StatusBadRequest, "stock must be non-negative")
			return
		}
		p.Stock = *req.Stock
	}
	p.CompareAtCents = req.CompareAtCents
	p.SKU = req.SKU
	p.ImageURL = req.ImageURL
	p.MetaDescription = req.MetaDescription

	created, err := h.store.Create(&p)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("product created", "id", created.ID, "slug", created.Slug)
	respondJSON(w, http.StatusCreated, created)
}

// Update patches a product's fields.
func (h *Products) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.store.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		if msg := validateName(*req.Name); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		p.Name = *req.Name
	}
	if req.Slug != nil {
		if !slug.Valid(*req.Slug) {
			respondError(w, http.StatusBadRequest, "slug may only contain lowercase letters, digits, and dashes")
			return
		}
		p.Slug = *req.Slug
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			respondError(w, http.StatusBadRequest, "priceCents must be a non-negative integer")
			return
		}
		p.PriceCents = *req.PriceCents
	}
	if req.CompareAtCents != nil {
		p.CompareAtCents = req.CompareAtCents
	}
	if req.SKU != nil {
		p.SKU = req.SKU
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			respondError(w, http.StatusBadRequest, "stock must be non-negative")
			return
		}
		p.Stock = *req.Stock
	}
	if req.Status != nil {
		if !models.ValidProductStatus(*req.Status) {
			respondError(w, http.StatusBadRequest, "invalid product status")
			return
		}
		p.Status = *req.Status
	}
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}
	if req.MetaDescription != nil {
		p.MetaDescription = req.MetaDescription
	}

	if err := h.store.Update(p); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Delete removes a product.
func (h *Products) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.store.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
