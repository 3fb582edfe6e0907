package demondb

import (
	"time"

	"github.com/uptrace/bun"
)

// Demon is a list entry. Position is dense and unique among non-removed
// demons; it shifts whenever demons are inserted, moved or removed.
type Demon struct {
	bun.BaseModel `bun:"table:demons,alias:d"`

	ID          int64      `bun:"id,pk,autoincrement"`
	Name        string     `bun:"name,notnull"`
	Position    int        `bun:"position,notnull"`
	Requirement int        `bun:"requirement,notnull"`
	Video       string     `bun:"video,nullzero"`
	VerifierID  int64      `bun:"verifier_id,notnull"`
	PublisherID int64      `bun:"publisher_id,notnull"`
	Rated       bool       `bun:"rated,notnull,default:true"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	RemovedAt   *time.Time `bun:"removed_at"`
}

// AuditLogEntry is one row of the append-only modification log. Every
// non-nil field holds the value the demon had *before* the edit; nil means
// the field did not change in that edit. Entries are never updated or
// deleted.
type AuditLogEntry struct {
	bun.BaseModel `bun:"table:demon_audit_log,alias:dal"`

	ID          int64     `bun:"id,pk,autoincrement"`
	DemonID     int64     `bun:"demon_id,notnull"`
	Name        *string   `bun:"name"`
	Position    *int      `bun:"position"`
	Requirement *int      `bun:"requirement"`
	Video       *string   `bun:"video"`
	VerifierID  *int64    `bun:"verifier_id"`
	PublisherID *int64    `bun:"publisher_id"`
	Rated       *bool     `bun:"rated"`
	UserID      int64     `bun:"user_id,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// changed reports whether the entry records any previous value at all.
func (e *AuditLogEntry) changed() bool {
	return e.Name != nil || e.Position != nil || e.Requirement != nil ||
		e.Video != nil || e.VerifierID != nil || e.PublisherID != nil || e.Rated != nil
}
