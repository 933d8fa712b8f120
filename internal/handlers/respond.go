// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API of the admin server.
// Handlers are grouped per resource in structs holding their store
// dependencies; every response body is JSON and errors are always
// {"error": "..."} with a status from the shared taxonomy.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"shopadmin/internal/store"
)

// respondJSON writes a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// respondError writes the {"error": msg} body every failure path uses.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondStoreError maps store sentinel errors to their HTTP status.
// Unrecognized errors are logged and become an opaque 500 so internal
// detail never reaches the client.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrParentNotFound):
		respondError(w, http.StatusNotFound, "parent not found")
	case errors.Is(err, store.ErrSlugTaken):
		respondError(w, http.StatusConflict, "slug already in use")
	case errors.Is(err, store.ErrCodeTaken):
		respondError(w, http.StatusConflict, "code already in use")
	case errors.Is(err, store.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email already in use")
	case errors.Is(err, store.ErrCircularReference):
		respondError(w, http.StatusConflict, "cannot move a service under its own descendant")
	case errors.Is(err, store.ErrHasChildren):
		respondError(w, http.StatusConflict, "service has children")
	case errors.Is(err, store.ErrPositionConflict):
		respondError(w, http.StatusConflict, "concurrent update, retry the request")
	case errors.Is(err, store.ErrInvitationInvalid):
		respondError(w, http.StatusBadRequest, "invitation is invalid or expired")
	default:
		slog.Error("unhandled store error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pagination is the envelope list endpoints attach next to their items.
type pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// newPagination derives the page metadata from a total row count.
func newPagination(page, limit, total int) pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// listResponse is the standard paginated list body.
type listResponse struct {
	Items      any        `json:"items"`
	Pagination pagination `json:"pagination"`
}

// decodeBody decodes a JSON request body into dst, rejecting payloads
// larger than 1 MiB.
func decodeBody(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}
