package scoreintegration

import (
	"context"
	"log/slog"
	"testing"

	scoreservice "github.com/demonlist-club/demonlist-backend/app/modules/score/application"
	scoredomain "github.com/demonlist-club/demonlist-backend/app/modules/score/domain"
	scoredb "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/repositories"
	"github.com/demonlist-club/demonlist-backend/integration_tests/testutils"
	"github.com/demonlist-club/demonlist-backend/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	demondb "github.com/demonlist-club/demonlist-backend/app/modules/demon/infrastructure/repositories"
	playerdb "github.com/demonlist-club/demonlist-backend/app/modules/player/infrastructure/repositories"
	recorddb "github.com/demonlist-club/demonlist-backend/app/modules/record/infrastructure/repositories"
)

func newScoreService(env *testutils.Env) *scoreservice.ScoreService {
	return scoreservice.NewScoreService(
		env.DB.ScoreDB,
		75,
		scoredomain.DefaultCurve(),
		slog.New(slog.DiscardHandler),
		metrics.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
	)
}

func seedPlayer(t *testing.T, env *testutils.Env, name string, nationalityID, subdivisionID *string) *playerdb.Player {
	t.Helper()
	player := &playerdb.Player{
		Name:          name,
		NationalityID: nationalityID,
		SubdivisionID: subdivisionID,
	}
	require.NoError(t, env.DB.PlayerDB.CreatePlayer(context.Background(), player))
	return player
}

func seedDemon(t *testing.T, env *testutils.Env, name string, position, requirement int, rated bool, verifierID int64) *demondb.Demon {
	t.Helper()
	demon := &demondb.Demon{
		Name:        name,
		Position:    position,
		Requirement: requirement,
		Rated:       rated,
		VerifierID:  verifierID,
		PublisherID: verifierID,
	}
	require.NoError(t, env.DB.DemonDB.AddDemon(context.Background(), demon, 1))
	return demon
}

func approveRecord(t *testing.T, env *testutils.Env, playerID, demonID int64, progress int) *recorddb.Record {
	t.Helper()
	ctx := context.Background()
	record := &recorddb.Record{
		PlayerID: playerID,
		DemonID:  demonID,
		Progress: progress,
		Status:   recorddb.StatusSubmitted,
	}
	require.NoError(t, env.DB.RecordDB.SubmitRecord(ctx, record))
	_, _, err := env.DB.RecordDB.TransitionStatus(ctx, record.ID, recorddb.StatusApproved)
	require.NoError(t, err)
	return record
}

func TestRecomputeAllEndToEnd(t *testing.T) {
	env := testutils.Setup(t)
	ctx := context.Background()

	env.SeedNationality(t, "US", "United States")
	env.SeedNationality(t, "DE", "Germany")
	env.SeedSubdivision(t, "US", "CA", "California")

	us, ca := "US", "CA"
	de := "DE"
	verifier := seedPlayer(t, env, env.Faker.Name(), &us, &ca)
	german := seedPlayer(t, env, env.Faker.Name(), &de, nil)
	stateless := seedPlayer(t, env, env.Faker.Name(), nil, nil)

	top := seedDemon(t, env, "Zodiac", 1, 55, true, verifier.ID)
	second := seedDemon(t, env, "Tartarus", 2, 60, true, verifier.ID)

	approveRecord(t, env, german.ID, top.ID, 100)
	approveRecord(t, env, stateless.ID, second.ID, 80)

	svc := newScoreService(env)
	require.NoError(t, svc.RecomputeAll(ctx))

	curve := scoredomain.DefaultCurve()

	// The verifier holds synthetic completions on both demons.
	got, err := env.DB.PlayerDB.GetPlayer(ctx, verifier.ID)
	require.NoError(t, err)
	assert.InDelta(t, curve.Score(100, 1, 75, 55)+curve.Score(100, 2, 75, 60), got.Score, 1e-9)

	// The partial record scores inside the window.
	got, err = env.DB.PlayerDB.GetPlayer(ctx, stateless.ID)
	require.NoError(t, err)
	assert.InDelta(t, curve.Score(80, 2, 75, 60), got.Score, 1e-9)

	// Nation ranking: US (verifier) ahead of DE (one completion).
	usRank, err := env.DB.ScoreDB.NationRankOf(ctx, scoredb.PoolRated, "US")
	require.NoError(t, err)
	deRank, err := env.DB.ScoreDB.NationRankOf(ctx, scoredb.PoolRated, "DE")
	require.NoError(t, err)
	assert.Equal(t, 1, usRank.Rank)
	assert.Less(t, usRank.Rank, deRank.Rank)

	// Subdivision ranking sees the verifier's totals.
	caRank, err := env.DB.ScoreDB.SubdivisionRankOf(ctx, scoredb.PoolRated, "US", "CA")
	require.NoError(t, err)
	assert.Equal(t, 1, caRank.Rank)

	// Stateless player appears in the player ranking regardless.
	ranked, err := env.DB.ScoreDB.RankedPlayers(ctx, scoredb.PoolRated, 10, 0)
	require.NoError(t, err)
	ids := make([]int64, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.PlayerID)
	}
	assert.Contains(t, ids, stateless.ID)
}

func TestRecomputeIsIdempotentAndReactsToRevocation(t *testing.T) {
	env := testutils.Setup(t)
	ctx := context.Background()

	verifier := seedPlayer(t, env, env.Faker.Name(), nil, nil)
	player := seedPlayer(t, env, env.Faker.Name(), nil, nil)
	demon := seedDemon(t, env, "Bloodbath", 1, 50, true, verifier.ID)
	record := approveRecord(t, env, player.ID, demon.ID, 100)

	svc := newScoreService(env)
	require.NoError(t, svc.RecomputeAll(ctx))
	require.NoError(t, svc.RecomputeAll(ctx))

	first, err := env.DB.PlayerDB.GetPlayer(ctx, player.ID)
	require.NoError(t, err)
	assert.Positive(t, first.Score)

	// Revoking the approval zeroes the player on the next recompute.
	_, _, err = env.DB.RecordDB.TransitionStatus(ctx, record.ID, recorddb.StatusRejected)
	require.NoError(t, err)
	require.NoError(t, svc.RecomputeAll(ctx))

	after, err := env.DB.PlayerDB.GetPlayer(ctx, player.ID)
	require.NoError(t, err)
	assert.Zero(t, after.Score)

	_, err = env.DB.ScoreDB.PlayerRankOf(ctx, scoredb.PoolRated, player.ID)
	assert.ErrorIs(t, err, scoredb.ErrNotRanked)
}

func TestBanExcludesFromRankingButKeepsTotals(t *testing.T) {
	env := testutils.Setup(t)
	ctx := context.Background()

	verifier := seedPlayer(t, env, env.Faker.Name(), nil, nil)
	player := seedPlayer(t, env, env.Faker.Name(), nil, nil)
	demon := seedDemon(t, env, "Sakupen Circles", 1, 50, true, verifier.ID)
	approveRecord(t, env, player.ID, demon.ID, 100)

	svc := newScoreService(env)
	require.NoError(t, svc.RecomputeAll(ctx))

	_, err := env.DB.PlayerDB.SetBanned(ctx, player.ID, true)
	require.NoError(t, err)
	require.NoError(t, svc.RecomputeAll(ctx))

	banned, err := env.DB.PlayerDB.GetPlayer(ctx, player.ID)
	require.NoError(t, err)
	assert.Positive(t, banned.Score, "ban must not erase stored totals")

	_, err = env.DB.ScoreDB.PlayerRankOf(ctx, scoredb.PoolRated, player.ID)
	assert.ErrorIs(t, err, scoredb.ErrNotRanked)
}
