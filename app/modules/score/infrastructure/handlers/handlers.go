// Package scorehandlers reacts to scoring-relevant mutations published by
// the demon, player and record modules by enqueueing coalesced recomputes.
package scorehandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/demonlist-club/demonlist-backend/events"
	"github.com/demonlist-club/demonlist-backend/internal/observability/attr"
	"golang.org/x/time/rate"
)

// Enqueuer is the slice of the queue service the handlers need.
type Enqueuer interface {
	EnqueueRecompute(ctx context.Context, reason string) error
}

// Handlers turns mutation events into recompute triggers.
type Handlers interface {
	HandleRecordStatusChanged(msg *message.Message) error
	HandleDemonChanged(msg *message.Message) error
	HandlePlayerChanged(msg *message.Message) error
}

// ScoreHandlers implements Handlers. The rate limiter smooths trigger
// bursts (a list shift touches many demons at once); the queue's uniqueness
// constraint does the actual coalescing.
type ScoreHandlers struct {
	queue   Enqueuer
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewScoreHandlers creates a new ScoreHandlers.
func NewScoreHandlers(queue Enqueuer, limiter *rate.Limiter, logger *slog.Logger) *ScoreHandlers {
	return &ScoreHandlers{
		queue:   queue,
		limiter: limiter,
		logger:  logger,
	}
}

var _ Handlers = (*ScoreHandlers)(nil)

// HandleRecordStatusChanged enqueues a recompute when a record enters or
// leaves the approved state. Other transitions cannot move any score.
func (h *ScoreHandlers) HandleRecordStatusChanged(msg *message.Message) error {
	var payload events.RecordStatusChangedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// Malformed payloads are logged and dropped; retrying cannot fix them.
		h.logger.Error("Dropping malformed record status event",
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		return nil
	}

	if payload.OldStatus != "approved" && payload.NewStatus != "approved" {
		return nil
	}
	return h.trigger(msg, fmt.Sprintf("record %d: %s -> %s", payload.RecordID, payload.OldStatus, payload.NewStatus))
}

// HandleDemonChanged enqueues a recompute for any list mutation that can
// move scores: additions, removals, position moves, requirement or rated
// flag changes.
func (h *ScoreHandlers) HandleDemonChanged(msg *message.Message) error {
	var payload events.DemonChangedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.Error("Dropping malformed demon event",
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		return nil
	}
	return h.trigger(msg, fmt.Sprintf("demon %d changed", payload.DemonID))
}

// HandlePlayerChanged enqueues a recompute for ban and residency changes.
func (h *ScoreHandlers) HandlePlayerChanged(msg *message.Message) error {
	var payload events.PlayerChangedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.Error("Dropping malformed player event",
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		return nil
	}
	return h.trigger(msg, fmt.Sprintf("player %d changed", payload.PlayerID))
}

func (h *ScoreHandlers) trigger(msg *message.Message, reason string) error {
	ctx := msg.Context()
	if err := h.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}
	if err := h.queue.EnqueueRecompute(ctx, reason); err != nil {
		// Returning the error nacks the message so the bus redelivers it.
		return err
	}
	h.logger.InfoContext(ctx, "Recompute triggered",
		attr.String("message_id", msg.UUID),
		attr.String("reason", reason),
	)
	return nil
}
