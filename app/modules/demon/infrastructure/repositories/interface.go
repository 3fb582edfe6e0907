package demondb

import (
	"context"
	"time"
)

// DemonPatch carries the fields of a demon edit. Nil fields are left
// untouched.
type DemonPatch struct {
	Name        *string
	Position    *int
	Requirement *int
	Video       *string
	VerifierID  *int64
	PublisherID *int64
	Rated       *bool
}

// Repository is the demon module's storage contract.
type Repository interface {
	GetDemon(ctx context.Context, id int64) (*Demon, error)
	CurrentList(ctx context.Context) ([]Demon, error)

	// AddDemon inserts the demon at demon.Position, shifting every demon
	// at or below that position down the list by one. Shifted demons get
	// audit entries recording their previous positions.
	AddDemon(ctx context.Context, demon *Demon, actingUserID int64) error

	// PatchDemon applies the patch inside one transaction, appending
	// exactly one audit entry for the edited demon (previous values of
	// changed fields only) plus one entry per demon shifted by a position
	// move. Returns the updated demon and the fields that actually
	// changed.
	PatchDemon(ctx context.Context, id int64, patch DemonPatch, actingUserID int64) (*Demon, *AuditLogEntry, error)

	// RemoveDemon soft-removes the demon and closes the position gap.
	RemoveDemon(ctx context.Context, id int64, actingUserID int64) (*Demon, error)

	// AuditLog returns the demon's log entries, oldest first.
	AuditLog(ctx context.Context, demonID int64) ([]AuditLogEntry, error)

	// DemonsAsOf returns demons that existed at ts: created at or before
	// it and not yet removed.
	DemonsAsOf(ctx context.Context, ts time.Time) ([]Demon, error)

	// ChangesAfter returns audit entries recorded strictly after ts that
	// carry a previous position or name, ordered by creation time
	// ascending. Used by historical reconstruction.
	ChangesAfter(ctx context.Context, ts time.Time) ([]AuditLogEntry, error)
}
