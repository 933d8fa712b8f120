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

// Invitations groups the user invitation HTTP handlers. List, Create,
// and Delete are admin-only; Accept is the single unauthenticated entry
// point where an invited person redeems their token.
type Invitations struct {
	store *store.InvitationStore
}

// NewInvitations creates a new Invitations handler group.
func NewInvitations(s *store.InvitationStore) *Invitations {
	return &Invitations{store: s}
}

// invitationWithToken exposes the raw token exactly once, in the Create
// response, for out-of-band delivery. Everywhere else the model's own
// serialization hides it.
type invitationWithToken struct {
	models.Invitation
	Token string `json:"token"`
}

// List returns all invitations. Tokens are never included.
func (h *Invitations) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List()
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.Invitation{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Create issues an invitation and returns it with the raw token.
func (h *Invitations) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Email string      `json:"email"`
		Role  models.Role `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateEmail(req.Email); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleEditor
	}
	if !models.ValidRole(req.Role) {
		respondError(w, http.StatusBadRequest, "role must be admin or editor")
		return
	}

	inv, err := h.store.Create(req.Email, req.Role, sess.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("invitation created", "email", inv.Email, "role", inv.Role, "invited_by", sess.UserID)
	respondJSON(w, http.StatusCreated, invitationWithToken{Invitation: *inv, Token: inv.Token})
}

// Accept redeems an invitation token and creates the account. This
// endpoint is unauthenticated; the token is the credential.
func (h *Invitations) Accept(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Token == "" {
		respondError(w, http.StatusBadRequest, "token is required")
		return
	}
	if msg := validatePassword(req.Password); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.DisplayName == "" {
		respondError(w, http.StatusBadRequest, "displayName is required")
		return
	}

	u, err := h.store.Accept(req.Token, req.Password, req.DisplayName)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	slog.Info("invitation accepted", "user_id", u.ID, "email", u.Email)
	respondJSON(w, http.StatusCreated, u)
}

// Delete revokes a pending invitation.
func (h *Invitations) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid invitation id")
		return
	}
	if err := h.store.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
