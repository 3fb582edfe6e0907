package scoredomain

// Totals is a pair of aggregated scores: Score counts rated demons only,
// UnratedScore counts every demon.
type Totals struct {
	Score        float64
	UnratedScore float64
}

// SubdivisionKey identifies a political subdivision within a nation.
type SubdivisionKey struct {
	NationalityID string
	SubdivisionID string
}

// RollupPlayers aggregates per-player totals. Every player in the snapshot
// gets an entry, so a full recompute resets players whose last record was
// just rejected. Banned players keep their computed totals; the ranking
// layer excludes them from views.
func (s *Snapshot) RollupPlayers() map[int64]Totals {
	totals := make(map[int64]Totals, len(s.Players))
	for _, p := range s.Players {
		totals[p.ID] = Totals{}
	}

	// A player normally holds one record per demon, but the verifier's
	// synthetic record can coincide with an approved one on the same
	// demon; deduplicate per (player, demon) so it never counts twice.
	best := bestPerGroup(s.ScoreGivingRecords(), func(r ScoreGivingRecord) [2]int64 {
		return [2]int64{r.PlayerID, r.DemonID}
	})

	for _, r := range best {
		demon, ok := s.DemonByID(r.DemonID)
		if !ok {
			continue
		}
		points := s.Curve.Score(r.Progress, demon.Position, s.Window, demon.Requirement)
		t := totals[r.PlayerID]
		t.UnratedScore += points
		if demon.Rated {
			t.Score += points
		}
		totals[r.PlayerID] = t
	}

	return totals
}

// RollupNations aggregates per-nation totals over non-banned resident
// players. For each demon only the nation's single best record counts, so
// two players of the same nation completing the same demon contribute once.
func (s *Snapshot) RollupNations() map[string]Totals {
	nationOf := s.residencyIndex(false)

	national := make([]ScoreGivingRecord, 0, len(s.Records))
	keys := make(map[int64]string)
	for _, r := range s.ScoreGivingRecords() {
		nation, ok := nationOf[r.PlayerID]
		if !ok {
			continue
		}
		national = append(national, r)
		keys[r.PlayerID] = nation
	}

	type nationDemon struct {
		nation  string
		demonID int64
	}
	best := bestPerGroup(national, func(r ScoreGivingRecord) nationDemon {
		return nationDemon{nation: keys[r.PlayerID], demonID: r.DemonID}
	})

	totals := make(map[string]Totals)
	for _, r := range best {
		demon, ok := s.DemonByID(r.DemonID)
		if !ok {
			continue
		}
		points := s.Curve.Score(r.Progress, demon.Position, s.Window, demon.Requirement)
		t := totals[keys[r.PlayerID]]
		t.UnratedScore += points
		if demon.Rated {
			t.Score += points
		}
		totals[keys[r.PlayerID]] = t
	}
	return totals
}

// RollupSubdivisions aggregates per-subdivision totals, deduplicated by
// demon among non-banned players sharing both nationality and subdivision.
func (s *Snapshot) RollupSubdivisions() map[SubdivisionKey]Totals {
	residency := make(map[int64]SubdivisionKey, len(s.Players))
	for _, p := range s.Players {
		if p.Banned || p.NationalityID == "" || p.SubdivisionID == "" {
			continue
		}
		residency[p.ID] = SubdivisionKey{NationalityID: p.NationalityID, SubdivisionID: p.SubdivisionID}
	}

	regional := make([]ScoreGivingRecord, 0, len(s.Records))
	for _, r := range s.ScoreGivingRecords() {
		if _, ok := residency[r.PlayerID]; ok {
			regional = append(regional, r)
		}
	}

	type subdivisionDemon struct {
		key     SubdivisionKey
		demonID int64
	}
	best := bestPerGroup(regional, func(r ScoreGivingRecord) subdivisionDemon {
		return subdivisionDemon{key: residency[r.PlayerID], demonID: r.DemonID}
	})

	totals := make(map[SubdivisionKey]Totals)
	for _, r := range best {
		demon, ok := s.DemonByID(r.DemonID)
		if !ok {
			continue
		}
		points := s.Curve.Score(r.Progress, demon.Position, s.Window, demon.Requirement)
		t := totals[residency[r.PlayerID]]
		t.UnratedScore += points
		if demon.Rated {
			t.Score += points
		}
		totals[residency[r.PlayerID]] = t
	}
	return totals
}

// residencyIndex maps non-banned players to their nationality. When
// bySubdivision is set, players without a subdivision are skipped.
func (s *Snapshot) residencyIndex(bySubdivision bool) map[int64]string {
	index := make(map[int64]string, len(s.Players))
	for _, p := range s.Players {
		if p.Banned || p.NationalityID == "" {
			continue
		}
		if bySubdivision && p.SubdivisionID == "" {
			continue
		}
		index[p.ID] = p.NationalityID
	}
	return index
}
