package recordservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	recorddb "github.com/demonlist-club/demonlist-backend/app/modules/record/infrastructure/repositories"
	"github.com/demonlist-club/demonlist-backend/eventbus"
	"github.com/demonlist-club/demonlist-backend/events"
	"github.com/demonlist-club/demonlist-backend/internal/observability/attr"
	"github.com/demonlist-club/demonlist-backend/internal/observability/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RecordService drives the record lifecycle. Every status change publishes
// an event so the score module can recompute.
type RecordService struct {
	repo     recorddb.Repository
	eventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  metrics.OperationMetrics
	tracer   trace.Tracer
}

// NewRecordService creates a new RecordService.
func NewRecordService(
	repo recorddb.Repository,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	operationMetrics metrics.OperationMetrics,
	tracer trace.Tracer,
) *RecordService {
	return &RecordService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		metrics:  operationMetrics,
		tracer:   tracer,
	}
}

func withTelemetry[T any](
	s *RecordService,
	ctx context.Context,
	operationName string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, "record")

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, "record", time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("operation", operationName),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, "record")
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
		s.metrics.RecordOperationFailure(ctx, operationName, "record")
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, "record")
	return result, nil
}

// SubmitRecordInput carries a new completion claim.
type SubmitRecordInput struct {
	PlayerID int64
	DemonID  int64
	Progress int
	Video    string
}

// SubmitRecord stores a new record in submitted state.
func (s *RecordService) SubmitRecord(ctx context.Context, input SubmitRecordInput) (*recorddb.Record, error) {
	return withTelemetry(s, ctx, "SubmitRecord", func(ctx context.Context) (*recorddb.Record, error) {
		if input.Progress < 0 || input.Progress > 100 {
			return nil, fmt.Errorf("%w: %d", recorddb.ErrProgressOutOfRange, input.Progress)
		}

		record := &recorddb.Record{
			PlayerID: input.PlayerID,
			DemonID:  input.DemonID,
			Progress: input.Progress,
			Video:    input.Video,
			Status:   recorddb.StatusSubmitted,
		}
		if err := s.repo.SubmitRecord(ctx, record); err != nil {
			return nil, err
		}

		s.logger.InfoContext(ctx, "Record submitted",
			attr.Int64("record_id", record.ID),
			attr.Int64("player_id", record.PlayerID),
			attr.Int64("demon_id", record.DemonID),
			attr.Int("progress", record.Progress),
		)
		return record, nil
	})
}

// TransitionRecord moves a record to a new status and publishes the change.
// Transitions into or out of approved are what make the score module
// recompute; it listens on the single status-changed topic and decides.
func (s *RecordService) TransitionRecord(ctx context.Context, id int64, to recorddb.Status) (*recorddb.Record, error) {
	return withTelemetry(s, ctx, "TransitionRecord", func(ctx context.Context) (*recorddb.Record, error) {
		record, from, err := s.repo.TransitionStatus(ctx, id, to)
		if err != nil {
			return nil, err
		}

		s.logger.InfoContext(ctx, "Record status changed",
			attr.Int64("record_id", record.ID),
			attr.String("from", string(from)),
			attr.String("to", string(to)),
		)

		payload := events.RecordStatusChangedPayload{
			RecordID:   record.ID,
			PlayerID:   record.PlayerID,
			DemonID:    record.DemonID,
			OldStatus:  string(from),
			NewStatus:  string(to),
			OccurredAt: time.Now().UTC(),
		}
		msg, err := eventbus.NewMessage(payload)
		if err != nil {
			return nil, err
		}
		if err := s.eventBus.Publish(events.RecordStatusChanged, msg); err != nil {
			return nil, fmt.Errorf("failed to publish record status change: %w", err)
		}
		return record, nil
	})
}

// GetRecord returns a record by id.
func (s *RecordService) GetRecord(ctx context.Context, id int64) (*recorddb.Record, error) {
	return withTelemetry(s, ctx, "GetRecord", func(ctx context.Context) (*recorddb.Record, error) {
		return s.repo.GetRecord(ctx, id)
	})
}
