package scoredomain

import "sort"

// Demon is the scoring engine's view of a list entry.
type Demon struct {
	ID          int64
	Position    int
	Requirement int
	Rated       bool
	VerifierID  int64
}

// Player is the scoring engine's view of a player. Residency fields are
// empty strings when unset; SubdivisionID is only meaningful together with
// NationalityID.
type Player struct {
	ID            int64
	Banned        bool
	NationalityID string
	SubdivisionID string
}

// Record is an approved completion claim. Only approved records may enter a
// Snapshot; the record module enforces that upstream.
type Record struct {
	ID       int64
	PlayerID int64
	DemonID  int64
	Progress int
}

// Snapshot is a self-contained copy of everything a full recompute needs.
// It is assembled inside one repository read so all rollups derive from a
// single consistent state.
type Snapshot struct {
	Window  int
	Curve   Curve
	Demons  []Demon
	Players []Player
	Records []Record
}

// ScoreGivingRecord is a record that survived eligibility filtering.
// Synthetic entries are the verifier's implicit full completions and carry
// no record id.
type ScoreGivingRecord struct {
	RecordID  int64
	PlayerID  int64
	DemonID   int64
	Progress  int
	Synthetic bool
}

// DemonByID returns the demon with the given id.
func (s *Snapshot) DemonByID(id int64) (Demon, bool) {
	for _, d := range s.Demons {
		if d.ID == id {
			return d, true
		}
	}
	return Demon{}, false
}

// ScoreGivingRecords returns the universe of records eligible to contribute
// to any total: approved records whose demon sits inside the scored window or
// which are full completions, plus one synthetic 100% record per demon for
// its verifier.
func (s *Snapshot) ScoreGivingRecords() []ScoreGivingRecord {
	demons := make(map[int64]Demon, len(s.Demons))
	for _, d := range s.Demons {
		demons[d.ID] = d
	}

	eligible := make([]ScoreGivingRecord, 0, len(s.Records)+len(s.Demons))
	for _, r := range s.Records {
		demon, ok := demons[r.DemonID]
		if !ok {
			continue
		}
		if demon.Position > s.Window && r.Progress < 100 {
			continue
		}
		eligible = append(eligible, ScoreGivingRecord{
			RecordID: r.ID,
			PlayerID: r.PlayerID,
			DemonID:  r.DemonID,
			Progress: r.Progress,
		})
	}

	// Verification is definitionally a full completion, independent of any
	// submitted record.
	for _, d := range s.Demons {
		eligible = append(eligible, ScoreGivingRecord{
			PlayerID:  d.VerifierID,
			DemonID:   d.ID,
			Progress:  100,
			Synthetic: true,
		})
	}

	return eligible
}

// bestPerGroup keeps, for every group key, the single best record: highest
// progress first, ties broken by preferring real records over synthetic ones
// and then by lowest record id. The result order is deterministic.
func bestPerGroup[K comparable](records []ScoreGivingRecord, key func(ScoreGivingRecord) K) []ScoreGivingRecord {
	sorted := make([]ScoreGivingRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Progress != b.Progress {
			return a.Progress > b.Progress
		}
		if a.Synthetic != b.Synthetic {
			return !a.Synthetic
		}
		return a.RecordID < b.RecordID
	})

	seen := make(map[K]struct{}, len(sorted))
	best := sorted[:0]
	for _, r := range sorted {
		k := key(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		best = append(best, r)
	}
	return best
}
