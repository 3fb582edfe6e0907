package demonservice

import (
	"context"
	"sort"
	"time"
)

// HistoricalDemon is a demon's state at a past point in time.
type HistoricalDemon struct {
	ID       int64
	Name     string
	Position int
}

// ListAt reconstructs the ordered list as it stood at ts.
//
// For every demon that existed at ts, the earliest audit entry recorded
// after ts carries the value the field had before that change, which is the
// value at ts. Demons with no later change keep their current value. Demons
// created after ts are omitted; asking for a time before any data simply
// yields an empty list. The audit log is only read, never written.
func (s *DemonService) ListAt(ctx context.Context, ts time.Time) ([]HistoricalDemon, error) {
	return withTelemetry(s, ctx, "ListAt", func(ctx context.Context) ([]HistoricalDemon, error) {
		demons, err := s.repo.DemonsAsOf(ctx, ts)
		if err != nil {
			return nil, err
		}
		if len(demons) == 0 {
			return []HistoricalDemon{}, nil
		}

		changes, err := s.repo.ChangesAfter(ctx, ts)
		if err != nil {
			return nil, err
		}

		// First-of-group per demon and field: ChangesAfter is ordered by
		// creation time ascending, so the first hit wins.
		positionAt := make(map[int64]int)
		nameAt := make(map[int64]string)
		for _, entry := range changes {
			if entry.Position != nil {
				if _, seen := positionAt[entry.DemonID]; !seen {
					positionAt[entry.DemonID] = *entry.Position
				}
			}
			if entry.Name != nil {
				if _, seen := nameAt[entry.DemonID]; !seen {
					nameAt[entry.DemonID] = *entry.Name
				}
			}
		}

		list := make([]HistoricalDemon, 0, len(demons))
		for _, d := range demons {
			h := HistoricalDemon{ID: d.ID, Name: d.Name, Position: d.Position}
			if pos, ok := positionAt[d.ID]; ok {
				h.Position = pos
			}
			if name, ok := nameAt[d.ID]; ok {
				h.Name = name
			}
			list = append(list, h)
		}

		sort.Slice(list, func(i, j int) bool {
			if list[i].Position != list[j].Position {
				return list[i].Position < list[j].Position
			}
			return list[i].ID < list[j].ID
		})
		return list, nil
	})
}
