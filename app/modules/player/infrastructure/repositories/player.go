package playerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// PlayerDBImpl handles database operations for players and their residency.
type PlayerDBImpl struct {
	DB *bun.DB
}

var _ Repository = (*PlayerDBImpl)(nil)

// GetPlayer retrieves a player by id.
func (db *PlayerDBImpl) GetPlayer(ctx context.Context, id int64) (*Player, error) {
	player := new(Player)
	err := db.DB.NewSelect().
		Model(player).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return player, nil
}

// CreatePlayer inserts a new player.
func (db *PlayerDBImpl) CreatePlayer(ctx context.Context, player *Player) error {
	if player.SubdivisionID != nil && player.NationalityID == nil {
		return ErrSubdivisionWithoutNation
	}
	if _, err := db.DB.NewInsert().Model(player).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// SetBanned flips the ban flag without touching stored totals.
func (db *PlayerDBImpl) SetBanned(ctx context.Context, id int64, banned bool) (*Player, error) {
	player, err := db.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	player.Banned = banned
	if _, err := db.DB.NewUpdate().
		Model(player).
		Column("banned").
		WherePK().
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to update ban state of player %d: %w", id, err)
	}
	return player, nil
}

// SetResidency updates nationality and subdivision together.
func (db *PlayerDBImpl) SetResidency(ctx context.Context, id int64, nationalityID, subdivisionID *string) (*Player, error) {
	if subdivisionID != nil && nationalityID == nil {
		return nil, ErrSubdivisionWithoutNation
	}

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	player := new(Player)
	err = tx.NewSelect().
		Model(player).
		Where("id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load player %d for update: %w", id, err)
	}

	if nationalityID != nil {
		exists, err := tx.NewSelect().
			Model((*Nationality)(nil)).
			Where("id = ?", *nationalityID).
			Exists(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check nationality %q: %w", *nationalityID, err)
		}
		if !exists {
			return nil, ErrNationalityNotFound
		}
	}
	if subdivisionID != nil {
		exists, err := tx.NewSelect().
			Model((*Subdivision)(nil)).
			Where("nationality_id = ?", *nationalityID).
			Where("id = ?", *subdivisionID).
			Exists(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check subdivision %q: %w", *subdivisionID, err)
		}
		if !exists {
			return nil, ErrSubdivisionNotFound
		}
	}

	player.NationalityID = nationalityID
	player.SubdivisionID = subdivisionID

	if _, err := tx.NewUpdate().
		Model(player).
		Column("nationality_id", "subdivision_id").
		WherePK().
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to update residency of player %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction during SetResidency: %w", err)
	}
	return player, nil
}

// GetNationality retrieves a nationality by ISO code.
func (db *PlayerDBImpl) GetNationality(ctx context.Context, id string) (*Nationality, error) {
	nationality := new(Nationality)
	err := db.DB.NewSelect().
		Model(nationality).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNationalityNotFound
		}
		return nil, fmt.Errorf("failed to get nationality %q: %w", id, err)
	}
	return nationality, nil
}

// GetSubdivision retrieves a subdivision by its composite key.
func (db *PlayerDBImpl) GetSubdivision(ctx context.Context, nationalityID, id string) (*Subdivision, error) {
	subdivision := new(Subdivision)
	err := db.DB.NewSelect().
		Model(subdivision).
		Where("nationality_id = ?", nationalityID).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubdivisionNotFound
		}
		return nil, fmt.Errorf("failed to get subdivision %q/%q: %w", nationalityID, id, err)
	}
	return subdivision, nil
}
