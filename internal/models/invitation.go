package models

import (
	"time"

	"github.com/google/uuid"
)

// Invitation represents a pending invite for a new admin panel user.
// The token is a random secret delivered out of band; accepting a valid
// invitation creates the user account with the invited role.
type Invitation struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Token      string     `json:"-"` // Never serialize the raw token
	InvitedBy  uuid.UUID  `json:"invited_by"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Pending returns true if the invitation has not been accepted and has
// not expired.
func (i *Invitation) Pending(now time.Time) bool {
	return i.AcceptedAt == nil && now.Before(i.ExpiresAt)
}
