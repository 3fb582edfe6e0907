package scoredb

import (
	"time"

	"github.com/uptrace/bun"
)

// Pool selects which aggregate a ranking is built over.
type Pool string

const (
	// PoolRated counts rated demons only. This is the main list ranking.
	PoolRated Pool = "rated"
	// PoolUnrated counts every demon regardless of its rated flag.
	PoolUnrated Pool = "unrated"
)

// Pools enumerates every ranking pool, in materialization order.
var Pools = []Pool{PoolRated, PoolUnrated}

// PlayerRank is one row of the materialized player leaderboard. Rank is the
// competition rank (ties share, next rank skips); DisplayIndex is dense and
// strictly increasing, which makes it the paging key. UpdateID groups all
// rows written by one refresh pass.
type PlayerRank struct {
	bun.BaseModel `bun:"table:player_ranks,alias:pr"`

	Pool         Pool      `bun:"pool,pk"`
	PlayerID     int64     `bun:"player_id,pk"`
	Rank         int       `bun:"rank,notnull"`
	DisplayIndex int       `bun:"display_index,notnull"`
	Score        float64   `bun:"score,notnull"`
	UpdateID     string    `bun:"update_id,notnull,type:uuid"`
	RefreshedAt  time.Time `bun:"refreshed_at,nullzero,notnull,default:current_timestamp"`
}

// NationRank is one row of the materialized nation leaderboard.
type NationRank struct {
	bun.BaseModel `bun:"table:nation_ranks,alias:nr"`

	Pool          Pool      `bun:"pool,pk"`
	NationalityID string    `bun:"nationality_id,pk"`
	Rank          int       `bun:"rank,notnull"`
	DisplayIndex  int       `bun:"display_index,notnull"`
	Score         float64   `bun:"score,notnull"`
	UpdateID      string    `bun:"update_id,notnull,type:uuid"`
	RefreshedAt   time.Time `bun:"refreshed_at,nullzero,notnull,default:current_timestamp"`
}

// SubdivisionRank is one row of the materialized subdivision leaderboard.
type SubdivisionRank struct {
	bun.BaseModel `bun:"table:subdivision_ranks,alias:sr"`

	Pool          Pool      `bun:"pool,pk"`
	NationalityID string    `bun:"nationality_id,pk"`
	SubdivisionID string    `bun:"subdivision_id,pk"`
	Rank          int       `bun:"rank,notnull"`
	DisplayIndex  int       `bun:"display_index,notnull"`
	Score         float64   `bun:"score,notnull"`
	UpdateID      string    `bun:"update_id,notnull,type:uuid"`
	RefreshedAt   time.Time `bun:"refreshed_at,nullzero,notnull,default:current_timestamp"`
}
