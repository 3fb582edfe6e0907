package playerdb

import "context"

// Repository is the player module's storage contract.
type Repository interface {
	GetPlayer(ctx context.Context, id int64) (*Player, error)
	CreatePlayer(ctx context.Context, player *Player) error

	// SetBanned flips the ban flag. Stored totals are left untouched; the
	// ranking layer soft-excludes banned players.
	SetBanned(ctx context.Context, id int64, banned bool) (*Player, error)

	// SetResidency updates nationality and subdivision together. A
	// subdivision without a nationality is rejected; clearing the
	// nationality clears the subdivision as well.
	SetResidency(ctx context.Context, id int64, nationalityID, subdivisionID *string) (*Player, error)

	GetNationality(ctx context.Context, id string) (*Nationality, error)
	GetSubdivision(ctx context.Context, nationalityID, id string) (*Subdivision, error)
}
