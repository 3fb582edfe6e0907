package demonservice

import (
	"context"
	"fmt"
	"time"

	demondb "github.com/demonlist-club/demonlist-backend/app/modules/demon/infrastructure/repositories"
	"github.com/demonlist-club/demonlist-backend/events"
	"github.com/demonlist-club/demonlist-backend/internal/observability/attr"
)

// AddDemonInput carries the fields of a new list entry.
type AddDemonInput struct {
	Name        string
	Position    int
	Requirement int
	Video       string
	VerifierID  int64
	PublisherID int64
	Rated       bool
}

// AddDemon inserts a demon at the requested position, shifting the list.
func (s *DemonService) AddDemon(ctx context.Context, input AddDemonInput, actingUserID int64) (*demondb.Demon, error) {
	return withTelemetry(s, ctx, "AddDemon", func(ctx context.Context) (*demondb.Demon, error) {
		if input.Requirement < 0 || input.Requirement > 100 {
			return nil, fmt.Errorf("requirement %d outside [0, 100]", input.Requirement)
		}

		demon := &demondb.Demon{
			Name:        input.Name,
			Position:    input.Position,
			Requirement: input.Requirement,
			Video:       input.Video,
			VerifierID:  input.VerifierID,
			PublisherID: input.PublisherID,
			Rated:       input.Rated,
		}
		if err := s.repo.AddDemon(ctx, demon, actingUserID); err != nil {
			return nil, err
		}

		s.logger.InfoContext(ctx, "Demon added",
			attr.Int64("demon_id", demon.ID),
			attr.Int("position", demon.Position),
		)
		s.publish(events.DemonAdded, events.DemonChangedPayload{
			DemonID:     demon.ID,
			NewPosition: demon.Position,
			OccurredAt:  time.Now().UTC(),
		})
		return demon, nil
	})
}

// PatchDemon applies an edit and publishes one event per score-relevant
// field that actually changed.
func (s *DemonService) PatchDemon(ctx context.Context, id int64, patch demondb.DemonPatch, actingUserID int64) (*demondb.Demon, error) {
	return withTelemetry(s, ctx, "PatchDemon", func(ctx context.Context) (*demondb.Demon, error) {
		if patch.Requirement != nil && (*patch.Requirement < 0 || *patch.Requirement > 100) {
			return nil, fmt.Errorf("requirement %d outside [0, 100]", *patch.Requirement)
		}

		demon, entry, err := s.repo.PatchDemon(ctx, id, patch, actingUserID)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			// Nothing changed; no audit entry, no events.
			return demon, nil
		}

		now := time.Now().UTC()
		if entry.Position != nil {
			s.publish(events.DemonPositionChanged, events.DemonChangedPayload{
				DemonID:     demon.ID,
				OldPosition: *entry.Position,
				NewPosition: demon.Position,
				OccurredAt:  now,
			})
		}
		if entry.Requirement != nil {
			s.publish(events.DemonRequirementChanged, events.DemonChangedPayload{
				DemonID:    demon.ID,
				OccurredAt: now,
			})
		}
		if entry.Rated != nil {
			s.publish(events.DemonRatedChanged, events.DemonChangedPayload{
				DemonID:    demon.ID,
				OccurredAt: now,
			})
		}
		return demon, nil
	})
}

// RemoveDemon soft-removes a demon from the list.
func (s *DemonService) RemoveDemon(ctx context.Context, id int64, actingUserID int64) (*demondb.Demon, error) {
	return withTelemetry(s, ctx, "RemoveDemon", func(ctx context.Context) (*demondb.Demon, error) {
		demon, err := s.repo.RemoveDemon(ctx, id, actingUserID)
		if err != nil {
			return nil, err
		}

		s.publish(events.DemonRemoved, events.DemonChangedPayload{
			DemonID:     demon.ID,
			OldPosition: demon.Position,
			OccurredAt:  time.Now().UTC(),
		})
		return demon, nil
	})
}

// CurrentList returns the list as it stands right now.
func (s *DemonService) CurrentList(ctx context.Context) ([]demondb.Demon, error) {
	return withTelemetry(s, ctx, "CurrentList", func(ctx context.Context) ([]demondb.Demon, error) {
		return s.repo.CurrentList(ctx)
	})
}

// AuditLog returns a demon's modification history.
func (s *DemonService) AuditLog(ctx context.Context, demonID int64) ([]demondb.AuditLogEntry, error) {
	return withTelemetry(s, ctx, "AuditLog", func(ctx context.Context) ([]demondb.AuditLogEntry, error) {
		return s.repo.AuditLog(ctx, demonID)
	})
}
