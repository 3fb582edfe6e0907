package scorequeue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/demonlist-club/demonlist-backend/internal/observability/attr"
	"github.com/demonlist-club/demonlist-backend/internal/observability/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
	"github.com/uptrace/bun"
)

// QueueService schedules and runs coalesced score recomputes.
type QueueService interface {
	// EnqueueRecompute queues one full recompute. Identical pending jobs
	// coalesce, so a burst of mutations results in a single run.
	EnqueueRecompute(ctx context.Context, reason string) error
	// PendingJobs returns queued recompute jobs for debugging.
	PendingJobs(ctx context.Context) ([]JobInfo, error)
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service is the River-backed implementation of QueueService.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	db      *bun.DB
	logger  *slog.Logger
	metrics metrics.OperationMetrics
}

// NewService creates the queue service and registers the recompute worker.
// River needs its own pgx pool; bun's database/sql connection cannot back it.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, operationMetrics metrics.OperationMetrics, scores Recomputer) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
	)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRecomputeWorker(ctxLogger, scores))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			// Recomputes are global and idempotent; one worker is enough
			// and avoids two full recomputes racing on the totals tables.
			"score": {MaxWorkers: 1},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	ctxLogger.InfoContext(ctx, "Score queue service initialized")
	return &Service{
		client:  riverClient,
		pool:    pool,
		db:      bunDB,
		logger:  ctxLogger,
		metrics: operationMetrics,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Score queue service started")
	return nil
}

// Stop stops the River client and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	s.logger.InfoContext(ctx, "Score queue service stopped")
	return nil
}

// EnqueueRecompute inserts a recompute job. Args are empty so unique-by-args
// makes any mutation burst collapse into one queued job; the reason only
// rides along as metadata.
func (s *Service) EnqueueRecompute(ctx context.Context, reason string) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_recompute", "river")

	metadata, err := json.Marshal(recomputeMetadata{Reason: reason})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "enqueue_recompute", "river")
		return fmt.Errorf("failed to marshal job metadata: %w", err)
	}

	result, err := s.client.Insert(ctx, RecomputeJob{}, &river.InsertOpts{
		Queue:    "score",
		Metadata: metadata,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			// Running is deliberately absent: a mutation arriving while a
			// recompute is already executing still needs its own run.
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStateScheduled,
				rivertype.JobStatePending,
				rivertype.JobStateRetryable,
			},
		},
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "enqueue_recompute", "river")
		return fmt.Errorf("failed to enqueue recompute job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_recompute", "river")
	s.metrics.RecordOperationDuration(ctx, "enqueue_recompute", "river", time.Since(start))

	s.logger.InfoContext(ctx, "Recompute job enqueued",
		attr.Int64("job_id", result.Job.ID),
		attr.String("reason", reason),
		attr.Bool("coalesced", result.UniqueSkippedAsDuplicate),
	)
	return nil
}

// PendingJobs lists queued recompute jobs via the river_job table.
func (s *Service) PendingJobs(ctx context.Context) ([]JobInfo, error) {
	type riverJobRow struct {
		ID          int64      `bun:"id"`
		Kind        string     `bun:"kind"`
		State       string     `bun:"state"`
		ScheduledAt *time.Time `bun:"scheduled_at"`
		CreatedAt   *time.Time `bun:"created_at"`
		Attempt     int        `bun:"attempt"`
		MaxAttempts int        `bun:"max_attempts"`
	}

	var rows []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", RecomputeJob{}.Kind()).
		Where("state IN (?, ?, ?, ?)", "available", "scheduled", "pending", "retryable").
		Order("id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}

	jobs := make([]JobInfo, 0, len(rows))
	for _, r := range rows {
		info := JobInfo{
			ID:          r.ID,
			Kind:        r.Kind,
			State:       r.State,
			Attempt:     r.Attempt,
			MaxAttempts: r.MaxAttempts,
		}
		if r.ScheduledAt != nil {
			info.ScheduledAt = r.ScheduledAt.Format(time.RFC3339)
		}
		if r.CreatedAt != nil {
			info.CreatedAt = r.CreatedAt.Format(time.RFC3339)
		}
		jobs = append(jobs, info)
	}
	return jobs, nil
}

// HealthCheck verifies the underlying pool is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue database unreachable: %w", err)
	}
	return nil
}
