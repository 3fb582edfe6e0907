package scoredb

import (
	"context"

	scoredomain "github.com/demonlist-club/demonlist-backend/app/modules/score/domain"
)

// Repository persists aggregation results and feeds the scoring engine.
type Repository interface {
	// LoadScoringSnapshot reads every active demon, every player and every
	// approved record inside a single transaction, so all rollups derive
	// from one consistent state.
	LoadScoringSnapshot(ctx context.Context, window int, curve scoredomain.Curve) (*scoredomain.Snapshot, error)

	// UpdatePlayerTotals writes player totals back atomically. Players
	// absent from the map are left untouched.
	UpdatePlayerTotals(ctx context.Context, totals map[int64]scoredomain.Totals) error
	UpdateNationTotals(ctx context.Context, totals map[string]scoredomain.Totals) error
	UpdateSubdivisionTotals(ctx context.Context, totals map[scoredomain.SubdivisionKey]scoredomain.Totals) error

	// LoadPlayerStandings returns the standings the ranking is built from:
	// non-banned players with their stored totals for the given pool.
	LoadPlayerStandings(ctx context.Context, pool Pool) ([]scoredomain.Standing[int64], error)
	LoadNationStandings(ctx context.Context, pool Pool) ([]scoredomain.Standing[string], error)
	LoadSubdivisionStandings(ctx context.Context, pool Pool) ([]scoredomain.Standing[string], error)

	// ReplacePlayerRanks swaps the materialized ranking for one pool in a
	// single transaction.
	ReplacePlayerRanks(ctx context.Context, pool Pool, ranks []*PlayerRank) error
	ReplaceNationRanks(ctx context.Context, pool Pool, ranks []*NationRank) error
	ReplaceSubdivisionRanks(ctx context.Context, pool Pool, ranks []*SubdivisionRank) error

	// RankedPlayers pages through a materialized ranking by display index.
	RankedPlayers(ctx context.Context, pool Pool, limit, offset int) ([]*PlayerRank, error)
	RankedNations(ctx context.Context, pool Pool, limit, offset int) ([]*NationRank, error)
	RankedSubdivisions(ctx context.Context, pool Pool, nationalityID string, limit, offset int) ([]*SubdivisionRank, error)

	// PlayerRankOf returns a single player's row in a pool's ranking.
	PlayerRankOf(ctx context.Context, pool Pool, playerID int64) (*PlayerRank, error)
	NationRankOf(ctx context.Context, pool Pool, nationalityID string) (*NationRank, error)
	SubdivisionRankOf(ctx context.Context, pool Pool, nationalityID, subdivisionID string) (*SubdivisionRank, error)
}
