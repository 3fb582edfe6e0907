package scoredomain

import (
	"cmp"
	"sort"
)

// Standing is an entity's aggregated score in one pool.
type Standing[ID cmp.Ordered] struct {
	ID    ID
	Score float64
}

// RankedStanding carries both rank orders: Rank is the competition rank
// (ties share, next rank skips), Index is the dense display position used
// for paging, strictly increasing even among ties.
type RankedStanding[ID cmp.Ordered] struct {
	Index int
	Rank  int
	ID    ID
	Score float64
}

// Rank orders standings by score descending and derives competition ranks
// and display indices. Entities with a non-positive score are unranked and
// omitted entirely. Ties are totally ordered by ascending id, which keeps
// paging deterministic.
func Rank[ID cmp.Ordered](standings []Standing[ID]) []RankedStanding[ID] {
	ranked := make([]Standing[ID], 0, len(standings))
	for _, s := range standings {
		if s.Score > 0 {
			ranked = append(ranked, s)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})

	out := make([]RankedStanding[ID], len(ranked))
	rank := 0
	for i, s := range ranked {
		if i == 0 || s.Score != ranked[i-1].Score {
			rank = i + 1
		}
		out[i] = RankedStanding[ID]{
			Index: i + 1,
			Rank:  rank,
			ID:    s.ID,
			Score: s.Score,
		}
	}
	return out
}
