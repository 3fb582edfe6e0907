package playerservice

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	playerdb "github.com/demonlist-club/demonlist-backend/app/modules/player/infrastructure/repositories"
	"github.com/demonlist-club/demonlist-backend/events"
	"github.com/demonlist-club/demonlist-backend/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// FakePlayerRepository provides a programmable stub for playerdb.Repository.
type FakePlayerRepository struct {
	GetPlayerFunc    func(ctx context.Context, id int64) (*playerdb.Player, error)
	CreatePlayerFunc func(ctx context.Context, player *playerdb.Player) error
	SetBannedFunc    func(ctx context.Context, id int64, banned bool) (*playerdb.Player, error)
	SetResidencyFunc func(ctx context.Context, id int64, nationalityID, subdivisionID *string) (*playerdb.Player, error)
}

var _ playerdb.Repository = (*FakePlayerRepository)(nil)

func (f *FakePlayerRepository) GetPlayer(ctx context.Context, id int64) (*playerdb.Player, error) {
	if f.GetPlayerFunc != nil {
		return f.GetPlayerFunc(ctx, id)
	}
	return nil, playerdb.ErrPlayerNotFound
}

func (f *FakePlayerRepository) CreatePlayer(ctx context.Context, player *playerdb.Player) error {
	if f.CreatePlayerFunc != nil {
		return f.CreatePlayerFunc(ctx, player)
	}
	return nil
}

func (f *FakePlayerRepository) SetBanned(ctx context.Context, id int64, banned bool) (*playerdb.Player, error) {
	if f.SetBannedFunc != nil {
		return f.SetBannedFunc(ctx, id, banned)
	}
	return nil, playerdb.ErrPlayerNotFound
}

func (f *FakePlayerRepository) SetResidency(ctx context.Context, id int64, nationalityID, subdivisionID *string) (*playerdb.Player, error) {
	if f.SetResidencyFunc != nil {
		return f.SetResidencyFunc(ctx, id, nationalityID, subdivisionID)
	}
	return nil, playerdb.ErrPlayerNotFound
}

func (f *FakePlayerRepository) GetNationality(ctx context.Context, id string) (*playerdb.Nationality, error) {
	return nil, playerdb.ErrNationalityNotFound
}

func (f *FakePlayerRepository) GetSubdivision(ctx context.Context, nationalityID, id string) (*playerdb.Subdivision, error) {
	return nil, playerdb.ErrSubdivisionNotFound
}

// fakeBus records published messages per topic.
type fakeBus struct {
	mu        sync.Mutex
	published map[string][]*message.Message
}

func newFakeBus() *fakeBus {
	return &fakeBus{published: make(map[string][]*message.Message)}
}

func (f *fakeBus) Publish(topic string, msgs ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published[topic] = append(f.published[topic], msgs...)
	return nil
}

func (f *fakeBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *fakeBus) Close() error { return nil }

func newTestService(repo playerdb.Repository, bus *fakeBus) *PlayerService {
	return NewPlayerService(
		repo,
		bus,
		slog.New(slog.DiscardHandler),
		metrics.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
	)
}

func TestBanPlayer_PublishesBanChanged(t *testing.T) {
	repo := &FakePlayerRepository{
		SetBannedFunc: func(_ context.Context, id int64, banned bool) (*playerdb.Player, error) {
			return &playerdb.Player{ID: id, Banned: banned, Score: 123.4}, nil
		},
	}
	bus := newFakeBus()
	svc := newTestService(repo, bus)

	player, err := svc.BanPlayer(context.Background(), 5)

	require.NoError(t, err)
	assert.True(t, player.Banned)
	assert.InDelta(t, 123.4, player.Score, 1e-9, "stored totals survive a ban")
	assert.Len(t, bus.published[events.PlayerBanChanged], 1)
}

func TestSetResidency_PublishesResidencyChanged(t *testing.T) {
	us := "US"
	ca := "CA"
	repo := &FakePlayerRepository{
		SetResidencyFunc: func(_ context.Context, id int64, nationalityID, subdivisionID *string) (*playerdb.Player, error) {
			return &playerdb.Player{ID: id, NationalityID: nationalityID, SubdivisionID: subdivisionID}, nil
		},
	}
	bus := newFakeBus()
	svc := newTestService(repo, bus)

	player, err := svc.SetResidency(context.Background(), 5, &us, &ca)

	require.NoError(t, err)
	require.NotNil(t, player.NationalityID)
	assert.Equal(t, "US", *player.NationalityID)
	assert.Len(t, bus.published[events.PlayerResidencyChanged], 1)
}

func TestSetResidency_RepositoryErrorsDoNotPublish(t *testing.T) {
	sub := "CA"
	repo := &FakePlayerRepository{
		SetResidencyFunc: func(context.Context, int64, *string, *string) (*playerdb.Player, error) {
			return nil, playerdb.ErrSubdivisionWithoutNation
		},
	}
	bus := newFakeBus()
	svc := newTestService(repo, bus)

	_, err := svc.SetResidency(context.Background(), 5, nil, &sub)

	require.ErrorIs(t, err, playerdb.ErrSubdivisionWithoutNation)
	assert.Empty(t, bus.published)
}
