package scoredb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	scoredomain "github.com/demonlist-club/demonlist-backend/app/modules/score/domain"
	"github.com/uptrace/bun"
)

// ScoreDBImpl implements Repository using bun.
type ScoreDBImpl struct {
	DB *bun.DB
}

// NewScoreDBImpl creates a new ScoreDBImpl.
func NewScoreDBImpl(db *bun.DB) *ScoreDBImpl {
	return &ScoreDBImpl{DB: db}
}

type demonRow struct {
	ID          int64 `bun:"id"`
	Position    int   `bun:"position"`
	Requirement int   `bun:"requirement"`
	Rated       bool  `bun:"rated"`
	VerifierID  int64 `bun:"verifier_id"`
}

type playerRow struct {
	ID            int64   `bun:"id"`
	Banned        bool    `bun:"banned"`
	NationalityID *string `bun:"nationality_id"`
	SubdivisionID *string `bun:"subdivision_id"`
}

type recordRow struct {
	ID       int64 `bun:"id"`
	PlayerID int64 `bun:"player_id"`
	DemonID  int64 `bun:"demon_id"`
	Progress int   `bun:"progress"`
}

// LoadScoringSnapshot reads demons, players and approved records in one
// transaction and assembles the domain snapshot.
func (db *ScoreDBImpl) LoadScoringSnapshot(ctx context.Context, window int, curve scoredomain.Curve) (*scoredomain.Snapshot, error) {
	tx, err := db.DB.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var demons []demonRow
	err = tx.NewSelect().
		Table("demons").
		Column("id", "position", "requirement", "rated", "verifier_id").
		Where("removed_at IS NULL").
		Order("position ASC").
		Scan(ctx, &demons)
	if err != nil {
		return nil, fmt.Errorf("failed to load demons: %w", err)
	}

	var players []playerRow
	err = tx.NewSelect().
		Table("players").
		Column("id", "banned", "nationality_id", "subdivision_id").
		Order("id ASC").
		Scan(ctx, &players)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}

	var records []recordRow
	err = tx.NewSelect().
		Table("records").
		Column("id", "player_id", "demon_id", "progress").
		Where("status = ?", "approved").
		Order("id ASC").
		Scan(ctx, &records)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	snapshot := &scoredomain.Snapshot{
		Window:  window,
		Curve:   curve,
		Demons:  make([]scoredomain.Demon, 0, len(demons)),
		Players: make([]scoredomain.Player, 0, len(players)),
		Records: make([]scoredomain.Record, 0, len(records)),
	}
	for _, d := range demons {
		snapshot.Demons = append(snapshot.Demons, scoredomain.Demon{
			ID:          d.ID,
			Position:    d.Position,
			Requirement: d.Requirement,
			Rated:       d.Rated,
			VerifierID:  d.VerifierID,
		})
	}
	for _, p := range players {
		player := scoredomain.Player{ID: p.ID, Banned: p.Banned}
		if p.NationalityID != nil {
			player.NationalityID = *p.NationalityID
		}
		if p.SubdivisionID != nil {
			player.SubdivisionID = *p.SubdivisionID
		}
		snapshot.Players = append(snapshot.Players, player)
	}
	for _, r := range records {
		snapshot.Records = append(snapshot.Records, scoredomain.Record{
			ID:       r.ID,
			PlayerID: r.PlayerID,
			DemonID:  r.DemonID,
			Progress: r.Progress,
		})
	}
	return snapshot, nil
}

// UpdatePlayerTotals writes the computed totals back onto the players table.
func (db *ScoreDBImpl) UpdatePlayerTotals(ctx context.Context, totals map[int64]scoredomain.Totals) error {
	tx, err := db.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for playerID, t := range totals {
		_, err := tx.NewUpdate().
			Table("players").
			Set("score = ?", t.Score).
			Set("unrated_score = ?", t.UnratedScore).
			Where("id = ?", playerID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update player %d totals: %w", playerID, err)
		}
	}
	return tx.Commit()
}

// UpdateNationTotals writes nation totals. Nations absent from the map are
// zeroed, so a nation whose last scoring resident was banned drops out.
func (db *ScoreDBImpl) UpdateNationTotals(ctx context.Context, totals map[string]scoredomain.Totals) error {
	tx, err := db.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NewUpdate().
		Table("nationalities").
		Set("score = 0").
		Set("unrated_score = 0").
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset nation totals: %w", err)
	}

	for nationalityID, t := range totals {
		_, err := tx.NewUpdate().
			Table("nationalities").
			Set("score = ?", t.Score).
			Set("unrated_score = ?", t.UnratedScore).
			Where("id = ?", nationalityID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update nation %s totals: %w", nationalityID, err)
		}
	}
	return tx.Commit()
}

// UpdateSubdivisionTotals writes subdivision totals with the same
// reset-then-write semantics as nations.
func (db *ScoreDBImpl) UpdateSubdivisionTotals(ctx context.Context, totals map[scoredomain.SubdivisionKey]scoredomain.Totals) error {
	tx, err := db.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NewUpdate().
		Table("subdivisions").
		Set("score = 0").
		Set("unrated_score = 0").
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset subdivision totals: %w", err)
	}

	for key, t := range totals {
		_, err := tx.NewUpdate().
			Table("subdivisions").
			Set("score = ?", t.Score).
			Set("unrated_score = ?", t.UnratedScore).
			Where("nationality_id = ?", key.NationalityID).
			Where("id = ?", key.SubdivisionID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update subdivision %s/%s totals: %w", key.NationalityID, key.SubdivisionID, err)
		}
	}
	return tx.Commit()
}

func poolColumn(pool Pool) (string, error) {
	switch pool {
	case PoolRated:
		return "score", nil
	case PoolUnrated:
		return "unrated_score", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPool, pool)
	}
}

// LoadPlayerStandings returns non-banned players with their stored totals.
func (db *ScoreDBImpl) LoadPlayerStandings(ctx context.Context, pool Pool) ([]scoredomain.Standing[int64], error) {
	column, err := poolColumn(pool)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID    int64   `bun:"id"`
		Score float64 `bun:"score"`
	}
	err = db.DB.NewSelect().
		Table("players").
		ColumnExpr("id, ? AS score", bun.Ident(column)).
		Where("banned = FALSE").
		Order("id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load player standings: %w", err)
	}

	standings := make([]scoredomain.Standing[int64], len(rows))
	for i, r := range rows {
		standings[i] = scoredomain.Standing[int64]{ID: r.ID, Score: r.Score}
	}
	return standings, nil
}

// LoadNationStandings returns nations with their stored totals.
func (db *ScoreDBImpl) LoadNationStandings(ctx context.Context, pool Pool) ([]scoredomain.Standing[string], error) {
	column, err := poolColumn(pool)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID    string  `bun:"id"`
		Score float64 `bun:"score"`
	}
	err = db.DB.NewSelect().
		Table("nationalities").
		ColumnExpr("id, ? AS score", bun.Ident(column)).
		Order("id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load nation standings: %w", err)
	}

	standings := make([]scoredomain.Standing[string], len(rows))
	for i, r := range rows {
		standings[i] = scoredomain.Standing[string]{ID: r.ID, Score: r.Score}
	}
	return standings, nil
}

// LoadSubdivisionStandings returns subdivisions keyed by the composite
// standing id (see SubdivisionStandingID).
func (db *ScoreDBImpl) LoadSubdivisionStandings(ctx context.Context, pool Pool) ([]scoredomain.Standing[string], error) {
	column, err := poolColumn(pool)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		NationalityID string  `bun:"nationality_id"`
		ID            string  `bun:"id"`
		Score         float64 `bun:"score"`
	}
	err = db.DB.NewSelect().
		Table("subdivisions").
		ColumnExpr("nationality_id, id, ? AS score", bun.Ident(column)).
		Order("nationality_id ASC").
		Order("id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load subdivision standings: %w", err)
	}

	standings := make([]scoredomain.Standing[string], len(rows))
	for i, r := range rows {
		standings[i] = scoredomain.Standing[string]{
			ID:    SubdivisionStandingID(r.NationalityID, r.ID),
			Score: r.Score,
		}
	}
	return standings, nil
}

// ReplacePlayerRanks swaps one pool's player ranking atomically.
func (db *ScoreDBImpl) ReplacePlayerRanks(ctx context.Context, pool Pool, ranks []*PlayerRank) error {
	tx, err := db.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NewDelete().Model((*PlayerRank)(nil)).Where("pool = ?", pool).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear player ranks: %w", err)
	}
	if len(ranks) > 0 {
		if _, err := tx.NewInsert().Model(&ranks).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert player ranks: %w", err)
		}
	}
	return tx.Commit()
}

// ReplaceNationRanks swaps one pool's nation ranking atomically.
func (db *ScoreDBImpl) ReplaceNationRanks(ctx context.Context, pool Pool, ranks []*NationRank) error {
	tx, err := db.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NewDelete().Model((*NationRank)(nil)).Where("pool = ?", pool).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear nation ranks: %w", err)
	}
	if len(ranks) > 0 {
		if _, err := tx.NewInsert().Model(&ranks).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert nation ranks: %w", err)
		}
	}
	return tx.Commit()
}

// ReplaceSubdivisionRanks swaps one pool's subdivision ranking atomically.
func (db *ScoreDBImpl) ReplaceSubdivisionRanks(ctx context.Context, pool Pool, ranks []*SubdivisionRank) error {
	tx, err := db.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NewDelete().Model((*SubdivisionRank)(nil)).Where("pool = ?", pool).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear subdivision ranks: %w", err)
	}
	if len(ranks) > 0 {
		if _, err := tx.NewInsert().Model(&ranks).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert subdivision ranks: %w", err)
		}
	}
	return tx.Commit()
}

// RankedPlayers pages the player ranking by display index.
func (db *ScoreDBImpl) RankedPlayers(ctx context.Context, pool Pool, limit, offset int) ([]*PlayerRank, error) {
	var ranks []*PlayerRank
	err := db.DB.NewSelect().
		Model(&ranks).
		Where("pool = ?", pool).
		Order("display_index ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player ranking page: %w", err)
	}
	return ranks, nil
}

// RankedNations pages the nation ranking by display index.
func (db *ScoreDBImpl) RankedNations(ctx context.Context, pool Pool, limit, offset int) ([]*NationRank, error) {
	var ranks []*NationRank
	err := db.DB.NewSelect().
		Model(&ranks).
		Where("pool = ?", pool).
		Order("display_index ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nation ranking page: %w", err)
	}
	return ranks, nil
}

// RankedSubdivisions pages the subdivision ranking, optionally restricted to
// one nation.
func (db *ScoreDBImpl) RankedSubdivisions(ctx context.Context, pool Pool, nationalityID string, limit, offset int) ([]*SubdivisionRank, error) {
	var ranks []*SubdivisionRank
	query := db.DB.NewSelect().
		Model(&ranks).
		Where("pool = ?", pool)
	if nationalityID != "" {
		query = query.Where("nationality_id = ?", nationalityID)
	}

	err := query.
		Order("display_index ASC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subdivision ranking page: %w", err)
	}
	return ranks, nil
}

// PlayerRankOf returns a single player's ranking row.
func (db *ScoreDBImpl) PlayerRankOf(ctx context.Context, pool Pool, playerID int64) (*PlayerRank, error) {
	rank := new(PlayerRank)
	err := db.DB.NewSelect().
		Model(rank).
		Where("pool = ?", pool).
		Where("player_id = ?", playerID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotRanked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player rank: %w", err)
	}
	return rank, nil
}

// NationRankOf returns a single nation's ranking row.
func (db *ScoreDBImpl) NationRankOf(ctx context.Context, pool Pool, nationalityID string) (*NationRank, error) {
	rank := new(NationRank)
	err := db.DB.NewSelect().
		Model(rank).
		Where("pool = ?", pool).
		Where("nationality_id = ?", nationalityID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotRanked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nation rank: %w", err)
	}
	return rank, nil
}

// SubdivisionRankOf returns a single subdivision's ranking row.
func (db *ScoreDBImpl) SubdivisionRankOf(ctx context.Context, pool Pool, nationalityID, subdivisionID string) (*SubdivisionRank, error) {
	rank := new(SubdivisionRank)
	err := db.DB.NewSelect().
		Model(rank).
		Where("pool = ?", pool).
		Where("nationality_id = ?", nationalityID).
		Where("subdivision_id = ?", subdivisionID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotRanked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subdivision rank: %w", err)
	}
	return rank, nil
}
