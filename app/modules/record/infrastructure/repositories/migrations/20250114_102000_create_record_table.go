package recordmigrations

import (
	"context"
	"fmt"

	recorddb "github.com/demonlist-club/demonlist-backend/app/modules/record/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating records table...")

		if _, err := db.NewCreateTable().Model((*recorddb.Record)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// The scoring snapshot loads all approved records in one scan.
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_records_status ON records (status)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_records_player_demon ON records (player_id, demon_id)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Records table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping records table...")

		if _, err := db.NewDropTable().Model((*recorddb.Record)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Records table dropped successfully!")
		return nil
	})
}
