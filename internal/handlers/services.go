// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopadmin/internal/cache"
	"shopadmin/internal/components"
	"shopadmin/internal/models"
	"shopadmin/internal/slug"
	"shopadmin/internal/store"
	"shopadmin/internal/tree"
)

// Services groups the service-catalog HTTP handlers: the hierarchy, the
// per-service page component lists, and the cached tree view.
type Services struct {
	store     *store.ServiceStore
	treeCache *cache.TreeCache // may be nil when Valkey is disabled
}

// NewServices creates a new Services handler group.
func NewServices(s *store.ServiceStore, tc *cache.TreeCache) *Services {
	return &Services{store: s, treeCache: tc}
}

// serviceRequest is the create/update payload. Pointer fields
// distinguish absent from zero on PATCH.
type serviceRequest struct {
	Name            *string            `json:"name"`
	Slug            *string            `json:"slug"`
	Description     *string            `json:"description"`
	ImageURL        *string            `json:"imageUrl"`
	ParentID        *uuid.UUID         `json:"parentId"`
	IsActive        *bool              `json:"isActive"`
	MetaDescription *string            `json:"metaDescription"`
	Components      []componentRequest `json:"components"`
}

// componentRequest mirrors one page component in request bodies.
type componentRequest struct {
	ID             *uuid.UUID             `json:"id"`
	Type           models.ComponentType   `json:"type"`
	Content        map[string]any         `json:"content"`
	StyleVariant   *string                `json:"styleVariant"`
	CarouselImages []carouselImageRequest `json:"carouselImages"`
}

type carouselImageRequest struct {
	ID       *uuid.UUID `json:"id"`
	ImageURL string     `json:"imageUrl"`
	AltText  string     `json:"altText"`
	Caption  string     `json:"caption"`
}

// toModels converts request components into model values. IDs and dense
// orders are assigned by components.Normalize afterwards.
func toModels(reqs []componentRequest) []models.PageComponent {
	out := make([]models.PageComponent, 0, len(reqs))
	for i, cr := range reqs {
		comp := models.PageComponent{
			Type:         cr.Type,
			Content:      cr.Content,
			StyleVariant: cr.StyleVariant,
			Order:        i,
		}
		if cr.ID != nil {
			comp.ID = *cr.ID
		}
		for j, ir := range cr.CarouselImages {
			img := models.CarouselImage{
				ImageURL: ir.ImageURL,
				AltText:  ir.AltText,
				Caption:  ir.Caption,
				Order:    j,
			}
			if ir.ID != nil {
				img.ID = *ir.ID
			}
			comp.CarouselImages = append(comp.CarouselImages, img)
		}
		out = append(out, comp)
	}
	return out
}

// List returns either a paginated flat listing (when any list parameter
// is present) or the nested tree.
func (h *Services) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("page") || q.Has("limit") || q.Has("search") || q.Has("status") || q.Has("parentOnly") {
		h.listFlat(w, r)
		return
	}
	h.listTree(w, r)
}

func (h *Services) listFlat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	params := store.ListParams{
		Page:       page,
		Limit:      limit,
		Search:     q.Get("search"),
		Status:     q.Get("status"),
		ParentOnly: q.Get("parentOnly") == "true",
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
		items = []models.Service{}
	}
	respondJSON(w, http.StatusOK, listResponse{
		Items:      items,
		Pagination: newPagination(params.Page, params.Limit, total),
	})
}

func (h *Services) listTree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includeInactive := q.Get("includeInactive") == "true"
	maxDepth := -1
	if v := q.Get("maxDepth"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			maxDepth = n
		}
	}

	key := cache.Key(includeInactive, maxDepth)
	if h.treeCache != nil {
		if payload, ok := h.treeCache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(payload)
			return
		}
	}

	flat, err := h.store.All()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	nodes := tree.Build(flat, tree.BuildOptions{
		IncludeInactive: includeInactive,
		MaxDepth:        maxDepth,
	})
	if nodes == nil {
		nodes = []models.Service{}
	}

	body := map[string]any{"tree": nodes}
	if h.treeCache != nil {
		if payload, err := json.Marshal(body); err == nil {
			h.treeCache.Set(r.Context(), key, payload)
		}
	}
	respondJSON(w, http.StatusOK, body)
}

// Get returns one service with its ordered component list.
func (h *Services) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	svc, err := h.store.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if svc == nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	comps, err := h.store.ListComponents(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	svc.ComponentList = comps
	if svc.ComponentList == nil {
		svc.ComponentList = []models.PageComponent{}
	}

	respondJSON(w, http.StatusOK, svc)
}

// Create adds a service, optionally with an initial component list, in
// one transaction. The slug is derived from the name unless supplied.
func (h *Services) Create(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
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

	svc := models.Service{
		Name:     *req.Name,
		ParentID: req.ParentID,
	}
	if req.Slug != nil && *req.Slug != "" {
		if !slug.Valid(*req.Slug) {
			respondError(w, http.StatusBadRequest, "slug may only contain lowercase letters, digits, and dashes")
			return
		}
		svc.Slug = *req.Slug
	} else {
		// A derived slug the client never saw should not 409; probe for a
		// free suffix instead. Explicit slugs still conflict normally.
		base := slug.Generate(*req.Name)
		svc.Slug = base
		for n := 2; ; n++ {
			taken, err := h.store.SlugExists(svc.Slug)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			if !taken {
				break
			}
			svc.Slug = slug.WithSuffix(base, n)
		}
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	svc.ImageURL = req.ImageURL
	svc.MetaDescription = req.MetaDescription
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	comps := toModels(req.Components)
	if err := components.Normalize(comps); err != nil {
		if errors.Is(err, components.ErrUnknownType) {
			respondError(w, http.StatusBadRequest, "unknown component type")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.Create(&svc, comps)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.invalidateTree(r)
	slog.Info("service created", "id", created.ID, "slug", created.Slug)
	respondJSON(w, http.StatusCreated, created)
}

// Update patches a service's own fields and, when parentId changes,
// re-parents it with the full subtree depth/path fix-up.
func (h *Services) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	svc, err := h.store.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if svc == nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	// Field presence matters on PATCH: decode both into the typed request
	// and a key set, so "parentId": null (promote to root) is
	// distinguishable from parentId absent (no move).
	var raw map[string]json.RawMessage
	if err := decodeBody(r, &raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var req serviceRequest
	buf, _ := json.Marshal(raw)
	if err := json.Unmarshal(buf, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		if msg := validateName(*req.Name); msg != "" {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		svc.Name = *req.Name
	}
	if req.Slug != nil {
		if !slug.Valid(*req.Slug) {
			respondError(w, http.StatusBadRequest, "slug may only contain lowercase letters, digits, and dashes")
			return
		}
		svc.Slug = *req.Slug
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if _, ok := raw["imageUrl"]; ok {
		svc.ImageURL = req.ImageURL
	}
	if _, ok := raw["metaDescription"]; ok {
		svc.MetaDescription = req.MetaDescription
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	// Field edits and a parent change land in one store transaction, so
	// a rejected move (circular reference, unknown parent) leaves the
	// row byte-for-byte as it was.
	_, moveRequested := raw["parentId"]
	moveRequested = moveRequested && !sameParent(svc.ParentID, req.ParentID)

	if moveRequested {
		err = h.store.UpdateAndMove(svc, req.ParentID)
	} else {
		err = h.store.Update(svc)
	}
	if err != nil {
		respondStoreError(w, err)
		return
	}

	updated, err := h.store.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	h.invalidateTree(r)
	respondJSON(w, http.StatusOK, updated)
}

// Delete removes a childless service. Sibling positions keep their gaps.
func (h *Services) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	if err := h.store.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}

	h.invalidateTree(r)
	respondJSON(w, http.StatusNoContent, nil)
}

// ReplaceComponents swaps a service's entire component list in one
// transaction, validating each component's content against its type.
func (h *Services) ReplaceComponents(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	var req struct {
		Components []componentRequest `json:"components"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comps := toModels(req.Components)
	if err := components.Normalize(comps); err != nil {
		if errors.Is(err, components.ErrUnknownType) {
			respondError(w, http.StatusBadRequest, "unknown component type")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.ReplaceComponents(id, comps); err != nil {
		respondStoreError(w, err)
		return
	}

	saved, err := h.store.ListComponents(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if saved == nil {
		saved = []models.PageComponent{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"components": saved})
}

// invalidateTree drops every cached tree variant after a mutation.
func (h *Services) invalidateTree(r *http.Request) {
	if h.treeCache != nil {
		h.treeCache.Invalidate(r.Context())
	}
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
