package recorddb

import (
	"time"

	"github.com/uptrace/bun"
)

// Status is a record's lifecycle state. Only approved records are
// score-giving.
type Status string

const (
	StatusSubmitted          Status = "submitted"
	StatusApproved           Status = "approved"
	StatusRejected           Status = "rejected"
	StatusUnderConsideration Status = "under_consideration"
)

// allowedTransitions is the record lifecycle state machine. Rejected is
// terminal; a player resubmits instead.
var allowedTransitions = map[Status][]Status{
	StatusSubmitted:          {StatusApproved, StatusRejected, StatusUnderConsideration},
	StatusUnderConsideration: {StatusApproved, StatusRejected, StatusSubmitted},
	StatusApproved:           {StatusRejected, StatusSubmitted, StatusUnderConsideration},
}

// CanTransition reports whether from → to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Record is a player's completion claim on a demon.
type Record struct {
	bun.BaseModel `bun:"table:records,alias:r"`

	ID        int64     `bun:"id,pk,autoincrement"`
	PlayerID  int64     `bun:"player_id,notnull"`
	DemonID   int64     `bun:"demon_id,notnull"`
	Progress  int       `bun:"progress,notnull"`
	Video     string    `bun:"video,nullzero"`
	Status    Status    `bun:"status,notnull,default:'submitted'"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
