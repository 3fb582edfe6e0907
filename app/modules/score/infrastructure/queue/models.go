package scorequeue

// RecomputeJob asks the aggregation engine for one full recompute. It carries
// no fields: every trigger asks for the same global run, which is exactly what
// lets unique-by-args collapse a burst of pending jobs into one. The mutation
// that triggered it travels in the job metadata instead, where it cannot
// defeat the deduplication.
type RecomputeJob struct{}

// Kind returns the job type identifier for River.
func (RecomputeJob) Kind() string { return "score_recompute" }

// recomputeMetadata is the informational payload stored alongside a queued
// recompute. Coalesced triggers keep the first pending job's metadata.
type recomputeMetadata struct {
	Reason string `json:"reason"`
}

// JobInfo describes a queued recompute job for debugging and monitoring.
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
