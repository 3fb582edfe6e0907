package scoreservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	scoredomain "github.com/demonlist-club/demonlist-backend/app/modules/score/domain"
	scoredb "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/repositories"
	"github.com/demonlist-club/demonlist-backend/internal/observability/attr"
	"github.com/demonlist-club/demonlist-backend/internal/observability/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ScoreService runs the aggregation engine: full recomputes of player,
// nation and subdivision totals, rank materialization, and ranking queries.
type ScoreService struct {
	repo    scoredb.Repository
	window  int
	curve   scoredomain.Curve
	logger  *slog.Logger
	metrics metrics.OperationMetrics
	tracer  trace.Tracer
}

// NewScoreService creates a new ScoreService. Window is the number of top
// list positions whose partial records give score; curve shapes the points.
func NewScoreService(
	repo scoredb.Repository,
	window int,
	curve scoredomain.Curve,
	logger *slog.Logger,
	operationMetrics metrics.OperationMetrics,
	tracer trace.Tracer,
) *ScoreService {
	return &ScoreService{
		repo:    repo,
		window:  window,
		curve:   curve,
		logger:  logger,
		metrics: operationMetrics,
		tracer:  tracer,
	}
}

func withTelemetry[T any](
	s *ScoreService,
	ctx context.Context,
	operationName string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, "score")

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, "score", time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("operation", operationName),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, "score")
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
		s.metrics.RecordOperationFailure(ctx, operationName, "score")
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, "score")
	return result, nil
}

func (s *ScoreService) snapshot(ctx context.Context) (*scoredomain.Snapshot, error) {
	return s.repo.LoadScoringSnapshot(ctx, s.window, s.curve)
}
