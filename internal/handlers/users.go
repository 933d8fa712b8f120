// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopadmin/internal/middleware"
	"shopadmin/internal/models"
	"shopadmin/internal/store"
)

// Users groups the admin-only user management HTTP handlers.
type Users struct {
	store *store.UserStore
}

// NewUsers creates a new Users handler group.
func NewUsers(s *store.UserStore) *Users {
	return &Users{store: s}
}

// List returns every user account.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.User{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Update changes a user's role.
func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.ValidRole(req.Role) {
		respondError(w, http.StatusBadRequest, "role must be admin or editor")
		return
	}

	if err := h.store.UpdateRole(id, req.Role); err != nil {
		respondStoreError(w, err)
		return
	}

	u, err := h.store.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("user role changed", "id", id, "role", req.Role)
	respondJSON(w, http.StatusOK, u)
}

// Reset2FA clears a user's TOTP enrollment so they re-enroll on next
// login. Used when someone loses their authenticator device.
func (h *Users) Reset2FA(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.store.ResetTOTP(id); err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("user 2fa reset", "id", id)
	respondJSON(w, http.StatusOK, map[string]any{"reset": true})
}

// Delete removes a user account. Admins cannot delete themselves.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == id {
		respondError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := h.store.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("user deleted", "id", id)
	respondJSON(w, http.StatusNoContent, nil)
}
