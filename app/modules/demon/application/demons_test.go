package demonservice

import (
	"context"
	"testing"

	demondb "github.com/demonlist-club/demonlist-backend/app/modules/demon/infrastructure/repositories"
	"github.com/demonlist-club/demonlist-backend/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDemon_RejectsRequirementOutsideRange(t *testing.T) {
	repo := NewFakeDemonRepository()
	svc := newTestService(repo, NewFakeEventBus())

	_, err := svc.AddDemon(context.Background(), AddDemonInput{
		Name:        "Bloodbath",
		Position:    1,
		Requirement: 101,
	}, 7)

	require.Error(t, err)
	assert.Empty(t, repo.Trace(), "invalid input must not reach the repository")
}

func TestAddDemon_PublishesDemonAdded(t *testing.T) {
	repo := NewFakeDemonRepository()
	repo.AddDemonFunc = func(_ context.Context, demon *demondb.Demon, _ int64) error {
		demon.ID = 42
		return nil
	}
	bus := NewFakeEventBus()
	svc := newTestService(repo, bus)

	demon, err := svc.AddDemon(context.Background(), AddDemonInput{
		Name:        "Bloodbath",
		Position:    1,
		Requirement: 50,
		Rated:       true,
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(42), demon.ID)
	assert.Equal(t, 1, bus.TopicCount(events.DemonAdded))
}

func TestPatchDemon_PublishesOneEventPerChangedScoreField(t *testing.T) {
	repo := NewFakeDemonRepository()
	repo.PatchDemonFunc = func(_ context.Context, id int64, _ demondb.DemonPatch, _ int64) (*demondb.Demon, *demondb.AuditLogEntry, error) {
		return &demondb.Demon{ID: id, Position: 3, Requirement: 60, Rated: false},
			&demondb.AuditLogEntry{
				DemonID:     id,
				Position:    intPtr(5),
				Requirement: intPtr(50),
				Rated:       boolPtr(true),
			}, nil
	}
	bus := NewFakeEventBus()
	svc := newTestService(repo, bus)

	_, err := svc.PatchDemon(context.Background(), 1, demondb.DemonPatch{
		Position:    intPtr(3),
		Requirement: intPtr(60),
		Rated:       boolPtr(false),
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, 1, bus.TopicCount(events.DemonPositionChanged))
	assert.Equal(t, 1, bus.TopicCount(events.DemonRequirementChanged))
	assert.Equal(t, 1, bus.TopicCount(events.DemonRatedChanged))
}

func TestPatchDemon_NoChangeNoEvents(t *testing.T) {
	repo := NewFakeDemonRepository()
	repo.PatchDemonFunc = func(_ context.Context, id int64, _ demondb.DemonPatch, _ int64) (*demondb.Demon, *demondb.AuditLogEntry, error) {
		return &demondb.Demon{ID: id}, nil, nil
	}
	bus := NewFakeEventBus()
	svc := newTestService(repo, bus)

	_, err := svc.PatchDemon(context.Background(), 1, demondb.DemonPatch{}, 7)

	require.NoError(t, err)
	assert.Empty(t, bus.Published)
}

func TestRemoveDemon_PublishesDemonRemoved(t *testing.T) {
	repo := NewFakeDemonRepository()
	repo.RemoveDemonFunc = func(_ context.Context, id int64, _ int64) (*demondb.Demon, error) {
		return &demondb.Demon{ID: id, Position: 4}, nil
	}
	bus := NewFakeEventBus()
	svc := newTestService(repo, bus)

	_, err := svc.RemoveDemon(context.Background(), 9, 7)

	require.NoError(t, err)
	assert.Equal(t, 1, bus.TopicCount(events.DemonRemoved))
}
