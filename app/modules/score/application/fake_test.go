package scoreservice

import (
	"context"
	"sync"

	scoredomain "github.com/demonlist-club/demonlist-backend/app/modules/score/domain"
	scoredb "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/repositories"
)

// FakeScoreRepository is a programmable fake for scoredb.Repository. The
// default behavior acts as an in-memory store: totals written by Update*
// feed the standings returned by Load*Standings, and Replace*Ranks keeps
// the last written ranking per pool.
type FakeScoreRepository struct {
	mu    sync.Mutex
	trace []string

	Snapshot *scoredomain.Snapshot

	PlayerTotals      map[int64]scoredomain.Totals
	NationTotals      map[string]scoredomain.Totals
	SubdivisionTotals map[scoredomain.SubdivisionKey]scoredomain.Totals

	PlayerRanks      map[scoredb.Pool][]*scoredb.PlayerRank
	NationRanks      map[scoredb.Pool][]*scoredb.NationRank
	SubdivisionRanks map[scoredb.Pool][]*scoredb.SubdivisionRank

	LoadScoringSnapshotFunc func(ctx context.Context, window int, curve scoredomain.Curve) (*scoredomain.Snapshot, error)
	RankedPlayersFunc       func(ctx context.Context, pool scoredb.Pool, limit, offset int) ([]*scoredb.PlayerRank, error)
	RankedNationsFunc       func(ctx context.Context, pool scoredb.Pool, limit, offset int) ([]*scoredb.NationRank, error)
}

func newFakeScoreRepository(snapshot *scoredomain.Snapshot) *FakeScoreRepository {
	return &FakeScoreRepository{
		Snapshot:          snapshot,
		PlayerTotals:      make(map[int64]scoredomain.Totals),
		NationTotals:      make(map[string]scoredomain.Totals),
		SubdivisionTotals: make(map[scoredomain.SubdivisionKey]scoredomain.Totals),
		PlayerRanks:       make(map[scoredb.Pool][]*scoredb.PlayerRank),
		NationRanks:       make(map[scoredb.Pool][]*scoredb.NationRank),
		SubdivisionRanks:  make(map[scoredb.Pool][]*scoredb.SubdivisionRank),
	}
}

func (f *FakeScoreRepository) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, call)
}

// Trace returns the ordered list of repository calls made so far.
func (f *FakeScoreRepository) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeScoreRepository) LoadScoringSnapshot(ctx context.Context, window int, curve scoredomain.Curve) (*scoredomain.Snapshot, error) {
	f.record("LoadScoringSnapshot")
	if f.LoadScoringSnapshotFunc != nil {
		return f.LoadScoringSnapshotFunc(ctx, window, curve)
	}
	snapshot := *f.Snapshot
	snapshot.Window = window
	snapshot.Curve = curve
	return &snapshot, nil
}

func (f *FakeScoreRepository) UpdatePlayerTotals(ctx context.Context, totals map[int64]scoredomain.Totals) error {
	f.record("UpdatePlayerTotals")
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, t := range totals {
		f.PlayerTotals[id] = t
	}
	return nil
}

func (f *FakeScoreRepository) UpdateNationTotals(ctx context.Context, totals map[string]scoredomain.Totals) error {
	f.record("UpdateNationTotals")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NationTotals = make(map[string]scoredomain.Totals, len(totals))
	for id, t := range totals {
		f.NationTotals[id] = t
	}
	return nil
}

func (f *FakeScoreRepository) UpdateSubdivisionTotals(ctx context.Context, totals map[scoredomain.SubdivisionKey]scoredomain.Totals) error {
	f.record("UpdateSubdivisionTotals")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SubdivisionTotals = make(map[scoredomain.SubdivisionKey]scoredomain.Totals, len(totals))
	for key, t := range totals {
		f.SubdivisionTotals[key] = t
	}
	return nil
}

func (f *FakeScoreRepository) pick(pool scoredb.Pool, t scoredomain.Totals) float64 {
	if pool == scoredb.PoolUnrated {
		return t.UnratedScore
	}
	return t.Score
}

func (f *FakeScoreRepository) LoadPlayerStandings(ctx context.Context, pool scoredb.Pool) ([]scoredomain.Standing[int64], error) {
	f.record("LoadPlayerStandings")
	f.mu.Lock()
	defer f.mu.Unlock()

	banned := make(map[int64]bool)
	if f.Snapshot != nil {
		for _, p := range f.Snapshot.Players {
			banned[p.ID] = p.Banned
		}
	}
	standings := make([]scoredomain.Standing[int64], 0, len(f.PlayerTotals))
	for id, t := range f.PlayerTotals {
		if banned[id] {
			continue
		}
		standings = append(standings, scoredomain.Standing[int64]{ID: id, Score: f.pick(pool, t)})
	}
	return standings, nil
}

func (f *FakeScoreRepository) LoadNationStandings(ctx context.Context, pool scoredb.Pool) ([]scoredomain.Standing[string], error) {
	f.record("LoadNationStandings")
	f.mu.Lock()
	defer f.mu.Unlock()
	standings := make([]scoredomain.Standing[string], 0, len(f.NationTotals))
	for id, t := range f.NationTotals {
		standings = append(standings, scoredomain.Standing[string]{ID: id, Score: f.pick(pool, t)})
	}
	return standings, nil
}

func (f *FakeScoreRepository) LoadSubdivisionStandings(ctx context.Context, pool scoredb.Pool) ([]scoredomain.Standing[string], error) {
	f.record("LoadSubdivisionStandings")
	f.mu.Lock()
	defer f.mu.Unlock()
	standings := make([]scoredomain.Standing[string], 0, len(f.SubdivisionTotals))
	for key, t := range f.SubdivisionTotals {
		standings = append(standings, scoredomain.Standing[string]{
			ID:    scoredb.SubdivisionStandingID(key.NationalityID, key.SubdivisionID),
			Score: f.pick(pool, t),
		})
	}
	return standings, nil
}

func (f *FakeScoreRepository) ReplacePlayerRanks(ctx context.Context, pool scoredb.Pool, ranks []*scoredb.PlayerRank) error {
	f.record("ReplacePlayerRanks")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PlayerRanks[pool] = ranks
	return nil
}

func (f *FakeScoreRepository) ReplaceNationRanks(ctx context.Context, pool scoredb.Pool, ranks []*scoredb.NationRank) error {
	f.record("ReplaceNationRanks")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.NationRanks[pool] = ranks
	return nil
}

func (f *FakeScoreRepository) ReplaceSubdivisionRanks(ctx context.Context, pool scoredb.Pool, ranks []*scoredb.SubdivisionRank) error {
	f.record("ReplaceSubdivisionRanks")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SubdivisionRanks[pool] = ranks
	return nil
}

func (f *FakeScoreRepository) RankedPlayers(ctx context.Context, pool scoredb.Pool, limit, offset int) ([]*scoredb.PlayerRank, error) {
	f.record("RankedPlayers")
	if f.RankedPlayersFunc != nil {
		return f.RankedPlayersFunc(ctx, pool, limit, offset)
	}
	return page(f.PlayerRanks[pool], limit, offset), nil
}

func (f *FakeScoreRepository) RankedNations(ctx context.Context, pool scoredb.Pool, limit, offset int) ([]*scoredb.NationRank, error) {
	f.record("RankedNations")
	if f.RankedNationsFunc != nil {
		return f.RankedNationsFunc(ctx, pool, limit, offset)
	}
	return page(f.NationRanks[pool], limit, offset), nil
}

func (f *FakeScoreRepository) RankedSubdivisions(ctx context.Context, pool scoredb.Pool, nationalityID string, limit, offset int) ([]*scoredb.SubdivisionRank, error) {
	f.record("RankedSubdivisions")
	ranks := f.SubdivisionRanks[pool]
	if nationalityID != "" {
		filtered := make([]*scoredb.SubdivisionRank, 0, len(ranks))
		for _, r := range ranks {
			if r.NationalityID == nationalityID {
				filtered = append(filtered, r)
			}
		}
		ranks = filtered
	}
	return page(ranks, limit, offset), nil
}

func (f *FakeScoreRepository) PlayerRankOf(ctx context.Context, pool scoredb.Pool, playerID int64) (*scoredb.PlayerRank, error) {
	f.record("PlayerRankOf")
	for _, r := range f.PlayerRanks[pool] {
		if r.PlayerID == playerID {
			return r, nil
		}
	}
	return nil, scoredb.ErrNotRanked
}

func (f *FakeScoreRepository) NationRankOf(ctx context.Context, pool scoredb.Pool, nationalityID string) (*scoredb.NationRank, error) {
	f.record("NationRankOf")
	for _, r := range f.NationRanks[pool] {
		if r.NationalityID == nationalityID {
			return r, nil
		}
	}
	return nil, scoredb.ErrNotRanked
}

func (f *FakeScoreRepository) SubdivisionRankOf(ctx context.Context, pool scoredb.Pool, nationalityID, subdivisionID string) (*scoredb.SubdivisionRank, error) {
	f.record("SubdivisionRankOf")
	for _, r := range f.SubdivisionRanks[pool] {
		if r.NationalityID == nationalityID && r.SubdivisionID == subdivisionID {
			return r, nil
		}
	}
	return nil, scoredb.ErrNotRanked
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
