package scoredomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestRank_CompetitionRanksShareAndSkip(t *testing.T) {
	standings := []Standing[int64]{
		{ID: 1, Score: 100},
		{ID: 2, Score: 100},
		{ID: 3, Score: 50},
	}

	got := Rank(standings)

	want := []RankedStanding[int64]{
		{Index: 1, Rank: 1, ID: 1, Score: 100},
		{Index: 2, Rank: 1, ID: 2, Score: 100},
		{Index: 3, Rank: 3, ID: 3, Score: 50},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rank() mismatch (-want +got):\n%s", diff)
	}
}

func TestRank_ZeroScoreEntitiesAreUnranked(t *testing.T) {
	standings := []Standing[int64]{
		{ID: 1, Score: 10},
		{ID: 2, Score: 0},
		{ID: 3, Score: -1},
	}

	got := Rank(standings)

	assert.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestRank_TiesOrderedByAscendingID(t *testing.T) {
	standings := []Standing[string]{
		{ID: "US", Score: 42},
		{ID: "DE", Score: 42},
	}

	got := Rank(standings)

	assert.Equal(t, "DE", got[0].ID)
	assert.Equal(t, "US", got[1].ID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 1, got[1].Rank)
	assert.Equal(t, []int{1, 2}, []int{got[0].Index, got[1].Index})
}

func TestRank_EmptyInput(t *testing.T) {
	assert.Empty(t, Rank([]Standing[int64]{}))
}
