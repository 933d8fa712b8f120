// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shopadmin/internal/models"
)

// invitationTTL is how long an invitation stays redeemable.
const invitationTTL = 7 * 24 * time.Hour

// InvitationStore manages user invitations.
type InvitationStore struct {
	db *sql.DB
}

// NewInvitationStore returns a new InvitationStore.
func NewInvitationStore(db *sql.DB) *InvitationStore {
	return &InvitationStore{db: db}
}

const invitationColumns = `id, email, role, token, invited_by, expires_at, accepted_at, created_at`

// scanInvitation scans a row into an Invitation struct.
func scanInvitation(scanner interface{ Scan(...any) error }) (*models.Invitation, error) {
	var i models.Invitation
	err := scanner.Scan(
		&i.ID, &i.Email, &i.Role, &i.Token, &i.InvitedBy,
		&i.ExpiresAt, &i.AcceptedAt, &i.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// List returns all invitations, newest first.
func (s *InvitationStore) List() ([]models.Invitation, error) {
	rows, err := s.db.Query(`SELECT ` + invitationColumns + ` FROM invitations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var items []models.Invitation
	for rows.Next() {
		i, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

// Create issues a new invitation with a random token and a 7-day expiry.
// The raw token is returned on the model for out-of-band delivery; it is
// never exposed through list endpoints. A colliding token (the only
// unique column on the table) just means regenerating and retrying.
func (s *InvitationStore) Create(email string, role models.Role, invitedBy uuid.UUID) (*models.Invitation, error) {
	for attempt := 0; attempt < 3; attempt++ {
		token, err := generateToken()
		if err != nil {
			return nil, fmt.Errorf("generate invitation token: %w", err)
		}

		row := s.db.QueryRow(`
			INSERT INTO invitations (email, role, token, invited_by, expires_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+invitationColumns,
			email, role, token, invitedBy, time.Now().Add(invitationTTL),
		)
		i, err := scanInvitation(row)
		if err == nil {
			return i, nil
		}
		if !isUniqueViolation(err, "invitations_token_key") {
			return nil, fmt.Errorf("create invitation: %w", err)
		}
	}
	return nil, fmt.Errorf("create invitation: token kept colliding")
}

// Accept redeems an invitation: it validates the token against a
// pending, unexpired invitation, creates the user with the invited role,
// and marks the invitation accepted, all in one transaction.
func (s *InvitationStore) Accept(token, password, displayName string) (*models.User, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token)
	inv, err := scanInvitation(row)
	if err == sql.ErrNoRows {
		return nil, ErrInvitationInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	if !inv.Pending(time.Now()) {
		return nil, ErrInvitationInvalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userRow := tx.QueryRow(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		inv.Email, string(hash), displayName, inv.Role,
	)
	u, err := scanUser(userRow)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user from invitation: %w", err)
	}

	if _, err := tx.Exec(`UPDATE invitations SET accepted_at = NOW() WHERE id = $1`, inv.ID); err != nil {
		return nil, fmt.Errorf("mark invitation accepted: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit accept invitation: %w", err)
	}
	return u, nil
}

// Delete revokes an invitation by ID.
func (s *InvitationStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invitation: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// generateToken creates a cryptographically random invitation token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
