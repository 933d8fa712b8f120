// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by store methods. Handlers map these to HTTP
// statuses; anything else is treated as internal.
var (
	// ErrNotFound is returned when the requested row doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrParentNotFound is returned when a referenced parent service
	// doesn't resolve.
	ErrParentNotFound = errors.New("parent service not found")

	// ErrSlugTaken is returned when a slug collides with an existing row.
	ErrSlugTaken = errors.New("slug already in use")

	// ErrCodeTaken is returned when a discount code collides.
	ErrCodeTaken = errors.New("discount code already in use")

	// ErrEmailTaken is returned when a user email collides.
	ErrEmailTaken = errors.New("email already in use")

	// ErrCircularReference is returned when a re-parent would make a
	// service its own ancestor.
	ErrCircularReference = errors.New("circular parent reference")

	// ErrHasChildren is returned when deleting a service that still has
	// child services.
	ErrHasChildren = errors.New("service has child services")

	// ErrInvitationInvalid is returned when an invitation token doesn't
	// resolve to a pending, unexpired invitation.
	ErrInvitationInvalid = errors.New("invitation is invalid or expired")

	// ErrPositionConflict is returned when concurrent writers race for
	// the same sibling position. The request is safe to retry.
	ErrPositionConflict = errors.New("concurrent position assignment")
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations. The unique constraints are the authoritative guard against
// check-then-write races; the friendly pre-checks in the stores only
// exist for better error messages.
const pgUniqueViolation = "23505"

// pgForeignKeyViolation is the PostgreSQL error code for foreign key
// constraint violations.
const pgForeignKeyViolation = "23503"

// isUniqueViolation reports whether err is a unique constraint violation,
// optionally on a specific constraint name.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isPositionConflict reports whether err is a unique violation on one of
// the sibling-position indexes.
func isPositionConflict(err error) bool {
	return isUniqueViolation(err, "uniq_services_sibling_position") ||
		isUniqueViolation(err, "uniq_services_root_position")
}

// isForeignKeyViolation reports whether err is a foreign key violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
