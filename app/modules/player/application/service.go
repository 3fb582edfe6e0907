package playerservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	playerdb "github.com/demonlist-club/demonlist-backend/app/modules/player/infrastructure/repositories"
	"github.com/demonlist-club/demonlist-backend/eventbus"
	"github.com/demonlist-club/demonlist-backend/events"
	"github.com/demonlist-club/demonlist-backend/internal/observability/attr"
	"github.com/demonlist-club/demonlist-backend/internal/observability/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PlayerService owns the player mutations that affect scoring: bans and
// residency changes.
type PlayerService struct {
	repo     playerdb.Repository
	eventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  metrics.OperationMetrics
	tracer   trace.Tracer
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(
	repo playerdb.Repository,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	operationMetrics metrics.OperationMetrics,
	tracer trace.Tracer,
) *PlayerService {
	return &PlayerService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		metrics:  operationMetrics,
		tracer:   tracer,
	}
}

func withTelemetry[T any](
	s *PlayerService,
	ctx context.Context,
	operationName string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, "player")

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, "player", time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("operation", operationName),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, "player")
			span.RecordError(err)
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed",
			attr.String("operation", operationName),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, "player")
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, "player")
	return result, nil
}

func (s *PlayerService) publish(topic string, payload any) {
	msg, err := eventbus.NewMessage(payload)
	if err != nil {
		s.logger.Error("Failed to build event message",
			attr.String("topic", topic),
			attr.Error(err),
		)
		return
	}
	if err := s.eventBus.Publish(topic, msg); err != nil {
		s.logger.Error("Failed to publish event",
			attr.String("topic", topic),
			attr.Error(err),
		)
	}
}

// BanPlayer soft-excludes a player from ranking views. Stored totals stay.
func (s *PlayerService) BanPlayer(ctx context.Context, id int64) (*playerdb.Player, error) {
	return s.setBanned(ctx, "BanPlayer", id, true)
}

// UnbanPlayer lifts a ban.
func (s *PlayerService) UnbanPlayer(ctx context.Context, id int64) (*playerdb.Player, error) {
	return s.setBanned(ctx, "UnbanPlayer", id, false)
}

func (s *PlayerService) setBanned(ctx context.Context, operation string, id int64, banned bool) (*playerdb.Player, error) {
	return withTelemetry(s, ctx, operation, func(ctx context.Context) (*playerdb.Player, error) {
		player, err := s.repo.SetBanned(ctx, id, banned)
		if err != nil {
			return nil, err
		}

		s.logger.InfoContext(ctx, "Player ban state changed",
			attr.Int64("player_id", id),
			attr.Bool("banned", banned),
		)
		s.publish(events.PlayerBanChanged, events.PlayerChangedPayload{
			PlayerID:   id,
			Banned:     banned,
			OccurredAt: time.Now().UTC(),
		})
		return player, nil
	})
}

// SetResidency moves a player to a new nationality/subdivision.
func (s *PlayerService) SetResidency(ctx context.Context, id int64, nationalityID, subdivisionID *string) (*playerdb.Player, error) {
	return withTelemetry(s, ctx, "SetResidency", func(ctx context.Context) (*playerdb.Player, error) {
		player, err := s.repo.SetResidency(ctx, id, nationalityID, subdivisionID)
		if err != nil {
			return nil, err
		}

		s.publish(events.PlayerResidencyChanged, events.PlayerChangedPayload{
			PlayerID:   id,
			Banned:     player.Banned,
			OccurredAt: time.Now().UTC(),
		})
		return player, nil
	})
}

// GetPlayer returns a player by id.
func (s *PlayerService) GetPlayer(ctx context.Context, id int64) (*playerdb.Player, error) {
	return withTelemetry(s, ctx, "GetPlayer", func(ctx context.Context) (*playerdb.Player, error) {
		return s.repo.GetPlayer(ctx, id)
	})
}
