package scoreservice

import (
	"context"

	"github.com/demonlist-club/demonlist-backend/internal/observability/attr"
)

// RecomputePlayerScores recalculates every player's totals from scratch and
// writes them back. Full recomputes are idempotent, so a lost or duplicated
// trigger never corrupts totals.
func (s *ScoreService) RecomputePlayerScores(ctx context.Context) error {
	_, err := withTelemetry(s, ctx, "RecomputePlayerScores", func(ctx context.Context) (struct{}, error) {
		snapshot, err := s.snapshot(ctx)
		if err != nil {
			return struct{}{}, err
		}
		totals := snapshot.RollupPlayers()
		if err := s.repo.UpdatePlayerTotals(ctx, totals); err != nil {
			return struct{}{}, err
		}
		s.logger.InfoContext(ctx, "Player totals recomputed",
			attr.Int("players", len(totals)),
		)
		return struct{}{}, nil
	})
	return err
}

// RecomputeNationScores recalculates every nation's totals from scratch.
func (s *ScoreService) RecomputeNationScores(ctx context.Context) error {
	_, err := withTelemetry(s, ctx, "RecomputeNationScores", func(ctx context.Context) (struct{}, error) {
		snapshot, err := s.snapshot(ctx)
		if err != nil {
			return struct{}{}, err
		}
		totals := snapshot.RollupNations()
		if err := s.repo.UpdateNationTotals(ctx, totals); err != nil {
			return struct{}{}, err
		}
		s.logger.InfoContext(ctx, "Nation totals recomputed",
			attr.Int("nations", len(totals)),
		)
		return struct{}{}, nil
	})
	return err
}

// RecomputeSubdivisionScores recalculates every subdivision's totals from
// scratch.
func (s *ScoreService) RecomputeSubdivisionScores(ctx context.Context) error {
	_, err := withTelemetry(s, ctx, "RecomputeSubdivisionScores", func(ctx context.Context) (struct{}, error) {
		snapshot, err := s.snapshot(ctx)
		if err != nil {
			return struct{}{}, err
		}
		totals := snapshot.RollupSubdivisions()
		if err := s.repo.UpdateSubdivisionTotals(ctx, totals); err != nil {
			return struct{}{}, err
		}
		s.logger.InfoContext(ctx, "Subdivision totals recomputed",
			attr.Int("subdivisions", len(totals)),
		)
		return struct{}{}, nil
	})
	return err
}

// RecomputeAll runs every aggregate recompute and then rematerializes all
// rankings. This is the coalesced reaction to any scoring-relevant mutation.
func (s *ScoreService) RecomputeAll(ctx context.Context) error {
	_, err := withTelemetry(s, ctx, "RecomputeAll", func(ctx context.Context) (struct{}, error) {
		if err := s.RecomputePlayerScores(ctx); err != nil {
			return struct{}{}, err
		}
		if err := s.RecomputeNationScores(ctx); err != nil {
			return struct{}{}, err
		}
		if err := s.RecomputeSubdivisionScores(ctx); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.RematerializeRanks(ctx)
	})
	return err
}
