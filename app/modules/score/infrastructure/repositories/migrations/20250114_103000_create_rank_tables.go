package scoremigrations

import (
	"context"
	"fmt"

	scoredb "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rank tables...")

		if _, err := db.NewCreateTable().Model((*scoredb.PlayerRank)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*scoredb.NationRank)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*scoredb.SubdivisionRank)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// Ranking pages read by (pool, display_index).
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_player_ranks_page ON player_ranks (pool, display_index)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_nation_ranks_page ON nation_ranks (pool, display_index)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_subdivision_ranks_page ON subdivision_ranks (pool, display_index)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Rank tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rank tables...")

		if _, err := db.NewDropTable().Model((*scoredb.SubdivisionRank)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*scoredb.NationRank)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*scoredb.PlayerRank)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Rank tables dropped successfully!")
		return nil
	})
}
