package demondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// DemonDBImpl handles database operations for demons and their audit log.
type DemonDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*DemonDBImpl)(nil)

// GetDemon retrieves a demon by id.
func (db *DemonDBImpl) GetDemon(ctx context.Context, id int64) (*Demon, error) {
	demon := new(Demon)
	err := db.DB.NewSelect().
		Model(demon).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDemonNotFound
		}
		return nil, fmt.Errorf("failed to get demon %d: %w", id, err)
	}
	return demon, nil
}

// CurrentList returns all non-removed demons ordered by position.
func (db *DemonDBImpl) CurrentList(ctx context.Context) ([]Demon, error) {
	var demons []Demon
	err := db.DB.NewSelect().
		Model(&demons).
		Where("removed_at IS NULL").
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load current list: %w", err)
	}
	return demons, nil
}

// AddDemon inserts a demon at its position, shifting the rest of the list.
func (db *DemonDBImpl) AddDemon(ctx context.Context, demon *Demon, actingUserID int64) error {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	listSize, err := activeListSize(ctx, tx)
	if err != nil {
		return err
	}
	if demon.Position < 1 || demon.Position > listSize+1 {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrPositionOutOfRange, demon.Position, listSize+1)
	}

	if err := shiftRange(ctx, tx, demon.Position, listSize, +1, actingUserID, 0); err != nil {
		return err
	}

	if _, err := tx.NewInsert().Model(demon).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert demon: %w", err)
	}

	// Creation entry: no previous values, it just records who added the
	// demon and when. Reconstruction keys off created_at, not this row.
	entry := &AuditLogEntry{DemonID: demon.ID, UserID: actingUserID}
	if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append creation audit entry for demon %d: %w", demon.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction during AddDemon: %w", err)
	}
	return nil
}

// PatchDemon applies field updates and a possible position move in one
// transaction, appending one audit entry for the edited demon.
func (db *DemonDBImpl) PatchDemon(ctx context.Context, id int64, patch DemonPatch, actingUserID int64) (*Demon, *AuditLogEntry, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	demon := new(Demon)
	err = tx.NewSelect().
		Model(demon).
		Where("id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrDemonNotFound
		}
		return nil, nil, fmt.Errorf("failed to load demon %d for update: %w", id, err)
	}
	if demon.RemovedAt != nil {
		return nil, nil, ErrDemonRemoved
	}

	entry := &AuditLogEntry{DemonID: demon.ID, UserID: actingUserID}

	if patch.Name != nil && *patch.Name != demon.Name {
		prev := demon.Name
		entry.Name = &prev
		demon.Name = *patch.Name
	}
	if patch.Requirement != nil && *patch.Requirement != demon.Requirement {
		prev := demon.Requirement
		entry.Requirement = &prev
		demon.Requirement = *patch.Requirement
	}
	if patch.Video != nil && *patch.Video != demon.Video {
		prev := demon.Video
		entry.Video = &prev
		demon.Video = *patch.Video
	}
	if patch.VerifierID != nil && *patch.VerifierID != demon.VerifierID {
		prev := demon.VerifierID
		entry.VerifierID = &prev
		demon.VerifierID = *patch.VerifierID
	}
	if patch.PublisherID != nil && *patch.PublisherID != demon.PublisherID {
		prev := demon.PublisherID
		entry.PublisherID = &prev
		demon.PublisherID = *patch.PublisherID
	}
	if patch.Rated != nil && *patch.Rated != demon.Rated {
		prev := demon.Rated
		entry.Rated = &prev
		demon.Rated = *patch.Rated
	}

	if patch.Position != nil && *patch.Position != demon.Position {
		listSize, err := activeListSize(ctx, tx)
		if err != nil {
			return nil, nil, err
		}
		newPos := *patch.Position
		if newPos < 1 || newPos > listSize {
			return nil, nil, fmt.Errorf("%w: %d not in [1, %d]", ErrPositionOutOfRange, newPos, listSize)
		}

		oldPos := demon.Position
		if newPos < oldPos {
			err = shiftRange(ctx, tx, newPos, oldPos-1, +1, actingUserID, demon.ID)
		} else {
			err = shiftRange(ctx, tx, oldPos+1, newPos, -1, actingUserID, demon.ID)
		}
		if err != nil {
			return nil, nil, err
		}

		prev := oldPos
		entry.Position = &prev
		demon.Position = newPos
	}

	if !entry.changed() {
		if err := tx.Commit(); err != nil {
			return nil, nil, fmt.Errorf("failed to commit transaction during PatchDemon: %w", err)
		}
		return demon, nil, nil
	}

	if _, err := tx.NewUpdate().
		Model(demon).
		WherePK().
		Exec(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to update demon %d: %w", id, err)
	}

	if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to append audit entry for demon %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction during PatchDemon: %w", err)
	}
	return demon, entry, nil
}

// RemoveDemon soft-removes the demon and closes the gap it leaves.
func (db *DemonDBImpl) RemoveDemon(ctx context.Context, id int64, actingUserID int64) (*Demon, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	demon := new(Demon)
	err = tx.NewSelect().
		Model(demon).
		Where("id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDemonNotFound
		}
		return nil, fmt.Errorf("failed to load demon %d for removal: %w", id, err)
	}
	if demon.RemovedAt != nil {
		return nil, ErrDemonRemoved
	}

	listSize, err := activeListSize(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	demon.RemovedAt = &now
	if _, err := tx.NewUpdate().
		Model(demon).
		Column("removed_at").
		WherePK().
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to mark demon %d removed: %w", id, err)
	}

	prev := demon.Position
	entry := &AuditLogEntry{DemonID: demon.ID, Position: &prev, UserID: actingUserID}
	if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to append removal audit entry for demon %d: %w", id, err)
	}

	if err := shiftRange(ctx, tx, demon.Position+1, listSize, -1, actingUserID, demon.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction during RemoveDemon: %w", err)
	}
	return demon, nil
}

// AuditLog returns all log entries for a demon, oldest first.
func (db *DemonDBImpl) AuditLog(ctx context.Context, demonID int64) ([]AuditLogEntry, error) {
	var entries []AuditLogEntry
	err := db.DB.NewSelect().
		Model(&entries).
		Where("demon_id = ?", demonID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit log for demon %d: %w", demonID, err)
	}
	return entries, nil
}

// DemonsAsOf returns the demons that existed at ts.
func (db *DemonDBImpl) DemonsAsOf(ctx context.Context, ts time.Time) ([]Demon, error) {
	var demons []Demon
	err := db.DB.NewSelect().
		Model(&demons).
		Where("created_at <= ?", ts).
		Where("removed_at IS NULL OR removed_at > ?", ts).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load demons as of %s: %w", ts, err)
	}
	return demons, nil
}

// ChangesAfter returns position- or name-bearing audit entries recorded
// strictly after ts, oldest first.
func (db *DemonDBImpl) ChangesAfter(ctx context.Context, ts time.Time) ([]AuditLogEntry, error) {
	var entries []AuditLogEntry
	err := db.DB.NewSelect().
		Model(&entries).
		Where("created_at > ?", ts).
		Where("position IS NOT NULL OR name IS NOT NULL").
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit entries after %s: %w", ts, err)
	}
	return entries, nil
}

// activeListSize counts non-removed demons inside the current transaction.
func activeListSize(ctx context.Context, tx bun.Tx) (int, error) {
	count, err := tx.NewSelect().
		Model((*Demon)(nil)).
		Where("removed_at IS NULL").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count active demons: %w", err)
	}
	return count, nil
}

// shiftRange moves every non-removed demon with position in [lo, hi] by
// delta, appending one audit entry per shifted demon so historical
// reconstruction can replay the move. excludeID skips the demon that is
// itself being repositioned.
func shiftRange(ctx context.Context, tx bun.Tx, lo, hi, delta int, actingUserID, excludeID int64) error {
	if lo > hi {
		return nil
	}

	var affected []Demon
	q := tx.NewSelect().
		Model(&affected).
		Where("removed_at IS NULL").
		Where("position BETWEEN ? AND ?", lo, hi)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Scan(ctx); err != nil {
		return fmt.Errorf("failed to load demons in positions [%d, %d]: %w", lo, hi, err)
	}
	if len(affected) == 0 {
		return nil
	}

	entries := make([]AuditLogEntry, 0, len(affected))
	for _, d := range affected {
		prev := d.Position
		entries = append(entries, AuditLogEntry{
			DemonID:  d.ID,
			Position: &prev,
			UserID:   actingUserID,
		})
	}
	if _, err := tx.NewInsert().Model(&entries).Exec(ctx); err != nil {
		return fmt.Errorf("failed to append shift audit entries: %w", err)
	}

	update := tx.NewUpdate().
		Model((*Demon)(nil)).
		Set("position = position + ?", delta).
		Where("removed_at IS NULL").
		Where("position BETWEEN ? AND ?", lo, hi)
	if excludeID != 0 {
		update = update.Where("id != ?", excludeID)
	}
	if _, err := update.Exec(ctx); err != nil {
		return fmt.Errorf("failed to shift positions [%d, %d] by %d: %w", lo, hi, delta, err)
	}
	return nil
}
