package demonservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	demondb "github.com/demonlist-club/demonlist-backend/app/modules/demon/infrastructure/repositories"
	"github.com/demonlist-club/demonlist-backend/eventbus"
	"github.com/demonlist-club/demonlist-backend/internal/observability/attr"
	"github.com/demonlist-club/demonlist-backend/internal/observability/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DemonService owns the demon mutation path: every edit goes through here so
// the audit log entry and the resulting events stay in one place.
type DemonService struct {
	repo     demondb.Repository
	eventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  metrics.OperationMetrics
	tracer   trace.Tracer
}

// NewDemonService creates a new DemonService.
func NewDemonService(
	repo demondb.Repository,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	operationMetrics metrics.OperationMetrics,
	tracer trace.Tracer,
) *DemonService {
	return &DemonService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		metrics:  operationMetrics,
		tracer:   tracer,
	}
}

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func withTelemetry[T any](
	s *DemonService,
	ctx context.Context,
	operationName string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, "demon")

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, "demon", time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("operation", operationName),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, "demon")
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
		s.metrics.RecordOperationFailure(ctx, operationName, "demon")
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, "demon")
	return result, nil
}

func (s *DemonService) publish(topic string, payload any) {
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
