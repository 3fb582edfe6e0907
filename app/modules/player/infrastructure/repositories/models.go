package playerdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Player holds identity, residency, ban state and the cached score totals
// the aggregation engine writes back.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID            int64     `bun:"id,pk,autoincrement"`
	Name          string    `bun:"name,notnull"`
	Banned        bool      `bun:"banned,notnull,default:false"`
	NationalityID *string   `bun:"nationality_id"`
	SubdivisionID *string   `bun:"subdivision_id"`
	Score         float64   `bun:"score,notnull,default:0"`
	UnratedScore  float64   `bun:"unrated_score,notnull,default:0"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Nationality is keyed by its ISO 3166-1 alpha-2 code.
type Nationality struct {
	bun.BaseModel `bun:"table:nationalities,alias:n"`

	ID           string  `bun:"id,pk"`
	Name         string  `bun:"name,notnull"`
	Score        float64 `bun:"score,notnull,default:0"`
	UnratedScore float64 `bun:"unrated_score,notnull,default:0"`
}

// Subdivision is keyed by (nationality, ISO 3166-2 suffix).
type Subdivision struct {
	bun.BaseModel `bun:"table:subdivisions,alias:sd"`

	NationalityID string  `bun:"nationality_id,pk"`
	ID            string  `bun:"id,pk"`
	Name          string  `bun:"name,notnull"`
	Score         float64 `bun:"score,notnull,default:0"`
	UnratedScore  float64 `bun:"unrated_score,notnull,default:0"`
}
