package scorequeue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/demonlist-club/demonlist-backend/internal/observability/attr"
	"github.com/riverqueue/river"
)

// Recomputer is the slice of the score service the worker needs.
type Recomputer interface {
	RecomputeAll(ctx context.Context) error
}

// RecomputeWorker executes queued recompute jobs.
type RecomputeWorker struct {
	river.WorkerDefaults[RecomputeJob]
	logger *slog.Logger
	scores Recomputer
}

// NewRecomputeWorker creates a new RecomputeWorker.
func NewRecomputeWorker(logger *slog.Logger, scores Recomputer) *RecomputeWorker {
	return &RecomputeWorker{logger: logger, scores: scores}
}

// Work runs one full recompute. River retries on error with backoff.
func (w *RecomputeWorker) Work(ctx context.Context, job *river.Job[RecomputeJob]) error {
	var meta recomputeMetadata
	// Metadata is informational; a job without it still runs.
	_ = json.Unmarshal(job.Metadata, &meta)

	w.logger.InfoContext(ctx, "Running score recompute job",
		attr.Int64("job_id", job.ID),
		attr.String("reason", meta.Reason),
		attr.Int("attempt", job.Attempt),
	)
	return w.scores.RecomputeAll(ctx)
}
