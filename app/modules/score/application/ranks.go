package scoreservice

import (
	"context"
	"time"

	scoredomain "github.com/demonlist-club/demonlist-backend/app/modules/score/domain"
	scoredb "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/repositories"
	"github.com/demonlist-club/demonlist-backend/internal/observability/attr"
	"github.com/google/uuid"
)

// RematerializeRanks rebuilds every ranking table from the stored totals.
// Each pool's swap carries a fresh update id so one refresh pass is
// distinguishable from the next.
func (s *ScoreService) RematerializeRanks(ctx context.Context) error {
	_, err := withTelemetry(s, ctx, "RematerializeRanks", func(ctx context.Context) (struct{}, error) {
		for _, pool := range scoredb.Pools {
			if err := s.rematerializePool(ctx, pool); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	return err
}

func (s *ScoreService) rematerializePool(ctx context.Context, pool scoredb.Pool) error {
	updateID := uuid.NewString()
	refreshedAt := time.Now().UTC()

	playerStandings, err := s.repo.LoadPlayerStandings(ctx, pool)
	if err != nil {
		return err
	}
	playerRanks := make([]*scoredb.PlayerRank, 0, len(playerStandings))
	for _, r := range scoredomain.Rank(playerStandings) {
		playerRanks = append(playerRanks, &scoredb.PlayerRank{
			Pool:         pool,
			PlayerID:     r.ID,
			Rank:         r.Rank,
			DisplayIndex: r.Index,
			Score:        r.Score,
			UpdateID:     updateID,
			RefreshedAt:  refreshedAt,
		})
	}
	if err := s.repo.ReplacePlayerRanks(ctx, pool, playerRanks); err != nil {
		return err
	}

	nationStandings, err := s.repo.LoadNationStandings(ctx, pool)
	if err != nil {
		return err
	}
	nationRanks := make([]*scoredb.NationRank, 0, len(nationStandings))
	for _, r := range scoredomain.Rank(nationStandings) {
		nationRanks = append(nationRanks, &scoredb.NationRank{
			Pool:          pool,
			NationalityID: r.ID,
			Rank:          r.Rank,
			DisplayIndex:  r.Index,
			Score:         r.Score,
			UpdateID:      updateID,
			RefreshedAt:   refreshedAt,
		})
	}
	if err := s.repo.ReplaceNationRanks(ctx, pool, nationRanks); err != nil {
		return err
	}

	subdivisionStandings, err := s.repo.LoadSubdivisionStandings(ctx, pool)
	if err != nil {
		return err
	}
	subdivisionRanks := make([]*scoredb.SubdivisionRank, 0, len(subdivisionStandings))
	for _, r := range scoredomain.Rank(subdivisionStandings) {
		nationalityID, subdivisionID := scoredb.SplitSubdivisionStandingID(r.ID)
		subdivisionRanks = append(subdivisionRanks, &scoredb.SubdivisionRank{
			Pool:          pool,
			NationalityID: nationalityID,
			SubdivisionID: subdivisionID,
			Rank:          r.Rank,
			DisplayIndex:  r.Index,
			Score:         r.Score,
			UpdateID:      updateID,
			RefreshedAt:   refreshedAt,
		})
	}
	if err := s.repo.ReplaceSubdivisionRanks(ctx, pool, subdivisionRanks); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Rankings rematerialized",
		attr.String("pool", string(pool)),
		attr.String("update_id", updateID),
		attr.Int("players", len(playerRanks)),
		attr.Int("nations", len(nationRanks)),
		attr.Int("subdivisions", len(subdivisionRanks)),
	)
	return nil
}
