package playermigrations

import (
	"context"
	"fmt"

	playerdb "github.com/demonlist-club/demonlist-backend/app/modules/player/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating players, nationalities and subdivisions tables...")

		if _, err := db.NewCreateTable().Model((*playerdb.Nationality)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*playerdb.Subdivision)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*playerdb.Player)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// The aggregation engine groups players by residency on every
		// recompute.
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_players_nationality ON players (nationality_id) WHERE nationality_id IS NOT NULL").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Player tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping players, nationalities and subdivisions tables...")

		if _, err := db.NewDropTable().Model((*playerdb.Player)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*playerdb.Subdivision)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*playerdb.Nationality)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Player tables dropped successfully!")
		return nil
	})
}
