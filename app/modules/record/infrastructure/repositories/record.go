package recorddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// RecordDBImpl handles database operations for records.
type RecordDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*RecordDBImpl)(nil)

// GetRecord retrieves a record by id.
func (db *RecordDBImpl) GetRecord(ctx context.Context, id int64) (*Record, error) {
	record := new(Record)
	err := db.DB.NewSelect().
		Model(record).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record %d: %w", id, err)
	}
	return record, nil
}

// SubmitRecord inserts a new record in submitted state.
func (db *RecordDBImpl) SubmitRecord(ctx context.Context, record *Record) error {
	if record.Progress < 0 || record.Progress > 100 {
		return fmt.Errorf("%w: %d", ErrProgressOutOfRange, record.Progress)
	}
	if record.Status == "" {
		record.Status = StatusSubmitted
	}
	if _, err := db.DB.NewInsert().Model(record).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// TransitionStatus moves a record through the lifecycle state machine.
func (db *RecordDBImpl) TransitionStatus(ctx context.Context, id int64, to Status) (*Record, Status, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	record := new(Record)
	err = tx.NewSelect().
		Model(record).
		Where("id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrRecordNotFound
		}
		return nil, "", fmt.Errorf("failed to load record %d for update: %w", id, err)
	}

	from := record.Status
	if !CanTransition(from, to) {
		return nil, "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	record.Status = to
	record.UpdatedAt = time.Now().UTC()
	if _, err := tx.NewUpdate().
		Model(record).
		Column("status", "updated_at").
		WherePK().
		Exec(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to update record %d status: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("failed to commit transaction during TransitionStatus: %w", err)
	}
	return record, from, nil
}

// RecordsForDemon returns all records on a demon, newest first.
func (db *RecordDBImpl) RecordsForDemon(ctx context.Context, demonID int64) ([]Record, error) {
	var records []Record
	err := db.DB.NewSelect().
		Model(&records).
		Where("demon_id = ?", demonID).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for demon %d: %w", demonID, err)
	}
	return records, nil
}

// RecordsForPlayer returns all records by a player, newest first.
func (db *RecordDBImpl) RecordsForPlayer(ctx context.Context, playerID int64) ([]Record, error) {
	var records []Record
	err := db.DB.NewSelect().
		Model(&records).
		Where("player_id = ?", playerID).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records for player %d: %w", playerID, err)
	}
	return records, nil
}
