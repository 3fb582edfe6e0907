package scoreservice

import (
	"context"

	scoredomain "github.com/demonlist-club/demonlist-backend/app/modules/score/domain"
	scoredb "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/repositories"
)

// RankedPlayers returns one page of the materialized player ranking.
func (s *ScoreService) RankedPlayers(ctx context.Context, pool scoredb.Pool, limit, offset int) ([]*scoredb.PlayerRank, error) {
	return withTelemetry(s, ctx, "RankedPlayers", func(ctx context.Context) ([]*scoredb.PlayerRank, error) {
		return s.repo.RankedPlayers(ctx, pool, limit, offset)
	})
}

// RankedNations returns one page of the materialized nation ranking.
func (s *ScoreService) RankedNations(ctx context.Context, pool scoredb.Pool, limit, offset int) ([]*scoredb.NationRank, error) {
	return withTelemetry(s, ctx, "RankedNations", func(ctx context.Context) ([]*scoredb.NationRank, error) {
		return s.repo.RankedNations(ctx, pool, limit, offset)
	})
}

// RankedSubdivisions returns one page of the materialized subdivision
// ranking, optionally restricted to one nation.
func (s *ScoreService) RankedSubdivisions(ctx context.Context, pool scoredb.Pool, nationalityID string, limit, offset int) ([]*scoredb.SubdivisionRank, error) {
	return withTelemetry(s, ctx, "RankedSubdivisions", func(ctx context.Context) ([]*scoredb.SubdivisionRank, error) {
		return s.repo.RankedSubdivisions(ctx, pool, nationalityID, limit, offset)
	})
}

// PlayerRankOf returns one player's row in a pool's ranking.
func (s *ScoreService) PlayerRankOf(ctx context.Context, pool scoredb.Pool, playerID int64) (*scoredb.PlayerRank, error) {
	return withTelemetry(s, ctx, "PlayerRankOf", func(ctx context.Context) (*scoredb.PlayerRank, error) {
		return s.repo.PlayerRankOf(ctx, pool, playerID)
	})
}

// ScoreOfNation recomputes one nation's totals directly from live data.
// Unlike the materialized ranking this sees mutations that have not been
// aggregated yet, which makes it the drilldown behind moderation tooling.
func (s *ScoreService) ScoreOfNation(ctx context.Context, nationalityID string) (scoredomain.Totals, error) {
	return withTelemetry(s, ctx, "ScoreOfNation", func(ctx context.Context) (scoredomain.Totals, error) {
		snapshot, err := s.snapshot(ctx)
		if err != nil {
			return scoredomain.Totals{}, err
		}
		return snapshot.RollupNations()[nationalityID], nil
	})
}

// ScoreOfSubdivision recomputes one subdivision's totals directly from live
// data.
func (s *ScoreService) ScoreOfSubdivision(ctx context.Context, nationalityID, subdivisionID string) (scoredomain.Totals, error) {
	return withTelemetry(s, ctx, "ScoreOfSubdivision", func(ctx context.Context) (scoredomain.Totals, error) {
		snapshot, err := s.snapshot(ctx)
		if err != nil {
			return scoredomain.Totals{}, err
		}
		key := scoredomain.SubdivisionKey{NationalityID: nationalityID, SubdivisionID: subdivisionID}
		return snapshot.RollupSubdivisions()[key], nil
	})
}
