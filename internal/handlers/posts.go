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

	"shopadmin/internal/markdown"
	"shopadmin/internal/middleware"
	"shopadmin/internal/models"
	"shopadmin/internal/slug"
	"shopadmin/internal/store"
)

// Posts groups the blog post HTTP handlers, including the editor's
// autosave and markdown preview endpoints.
type Posts struct {
	store *store.PostStore
}

// NewPosts creates a new Posts handler group.
func NewPosts(s *store.PostStore) *Posts {
	return &Posts{store: s}
}

type postRequest struct {
	Title           *string            `json:"title"`
	Slug            *string            `json:"slug"`
	Body            *string            `json:"body"`
	BodyFormat      *models.BodyFormat `json:"bodyFormat"`
	Excerpt         *string            `json:"excerpt"`
	Status          *models.PostStatus `json:"status"`
	MetaDescription *string            `json:"metaDescription"`
}

// List returns a paginated post listing with search and status filters.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	params := store.PostListParams{
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
		items = []models.BlogPost{}
	}
	respondJSON(w, http.StatusOK, listResponse{
		Items:      items,
		Pagination: newPagination(params.Page, params.Limit, total),
	})
}

// Get returns one post.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
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

// Create adds a post authored by the session user. Posts start as
// drafts unless published explicitly; publishing stamps published_at.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == nil {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if msg := validatePostFields(*req.Title, strOr(req.Body)); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateMetadata(strOr(req.Excerpt), strOr(req.MetaDescription)); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	p := models.BlogPost{
		Title:      *req.Title,
		BodyFormat: models.BodyFormatMarkdown,
		Status:     models.PostStatusDraft,
		AuthorID:   sess.UserID,
	}
	if req.Slug != nil && *req.Slug != "" {
		if !slug.Valid(*req.Slug) {
			respondError(w, http.StatusBadRequest, "slug may only contain lowercase letters, digits, and dashes")
			return
		}
		p.Slug = *req.Slug
	} else {
		base := slug.Generate(*req.Title)
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
	if req.Body != nil {
		p.Body = *req.Body
	}
	if req.BodyFormat != nil {
		if *req.BodyFormat != models.BodyFormatMarkdown && *req.BodyFormat != models.BodyFormatHTML {
			respondError(w, http.StatusBadRequest, "invalid body format")
			return
		}
		p.BodyFormat = *req.BodyFormat
	}
	if req.Status != nil {
		if *req.Status != models.PostStatusDraft && *req.Status != models.PostStatusPublished {
			respondError(w, http.StatusBadRequest, "invalid post status")
			return
		}
		p.Status = *req.Status
	}
	p.Excerpt = req.Excerpt
	p.MetaDescription = req.MetaDescription

	created, err := h.store.Create(&p)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("post created", "id", created.ID, "slug", created.Slug)
	respondJSON(w, http.StatusCreated, created)
}

// Update patches a post's fields. Publishing a draft stamps
// published_at; re-publishing keeps the original timestamp.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
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

	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Slug != nil {
		if !slug.Valid(*req.Slug) {
			respondError(w, http.StatusBadRequest, "slug may only contain lowercase letters, digits, and dashes")
			return
		}
		p.Slug = *req.Slug
	}
	if req.Body != nil {
		p.Body = *req.Body
	}
	if req.BodyFormat != nil {
		if *req.BodyFormat != models.BodyFormatMarkdown && *req.BodyFormat != models.BodyFormatHTML {
			respondError(w, http.StatusBadRequest, "invalid body format")
			return
		}
		p.BodyFormat = *req.BodyFormat
	}
	if req.Excerpt != nil {
		p.Excerpt = req.Excerpt
	}
	if req.Status != nil {
		if *req.Status != models.PostStatusDraft && *req.Status != models.PostStatusPublished {
			respondError(w, http.StatusBadRequest, "invalid post status")
			return
		}
		p.Status = *req.Status
	}
	if req.MetaDescription != nil {
		p.MetaDescription = req.MetaDescription
	}
	if msg := validatePostFields(p.Title, p.Body); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateMetadata(strOr(p.Excerpt), strOr(p.MetaDescription)); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Update(p); err != nil {
		respondStoreError(w, err)
		return
	}

	updated, err := h.store.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Autosave updates title and body only. The editor calls this every few
// seconds, so validation is lenient and nothing else is touched.
func (h *Posts) Autosave(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.Autosave(id, req.Title, req.Body); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"saved": true})
}

// Preview renders markdown to HTML for the editor's preview pane.
func (h *Posts) Preview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	html, err := markdown.ToHTML(req.Body)
	if err != nil {
		slog.Error("markdown preview failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"html": html})
}

// Delete removes a post.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	if err := h.store.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
