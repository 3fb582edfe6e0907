// Package events defines the mutation events exchanged between modules.
// Every payload is JSON-encoded into a watermill message; the topic names
// double as NATS subjects when the NATS-backed bus is configured.
package events

import "time"

const (
	RecordStatusChanged     = "record.status.changed"
	DemonAdded              = "demon.added"
	DemonPositionChanged    = "demon.position.changed"
	DemonRequirementChanged = "demon.requirement.changed"
	DemonRatedChanged       = "demon.rated.changed"
	DemonRemoved            = "demon.removed"
	PlayerBanChanged        = "player.ban.changed"
	PlayerResidencyChanged  = "player.residency.changed"
)

// RecordStatusChangedPayload is published after every record state
// transition, including transitions away from approved.
type RecordStatusChangedPayload struct {
	RecordID   int64     `json:"record_id"`
	PlayerID   int64     `json:"player_id"`
	DemonID    int64     `json:"demon_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DemonChangedPayload covers all demon lifecycle events. Which fields are
// meaningful depends on the topic.
type DemonChangedPayload struct {
	DemonID     int64     `json:"demon_id"`
	OldPosition int       `json:"old_position,omitempty"`
	NewPosition int       `json:"new_position,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PlayerChangedPayload covers ban and residency changes.
type PlayerChangedPayload struct {
	PlayerID   int64     `json:"player_id"`
	Banned     bool      `json:"banned"`
	OccurredAt time.Time `json:"occurred_at"`
}
