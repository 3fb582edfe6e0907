package demonmigrations

import (
	"context"
	"fmt"

	demondb "github.com/demonlist-club/demonlist-backend/app/modules/demon/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating demons and demon_audit_log tables...")

		if _, err := db.NewCreateTable().Model((*demondb.Demon)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*demondb.AuditLogEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// Position lookups drive both the list view and the shift updates.
		// Not unique: bulk shifts pass through transient duplicates within a
		// transaction, and Postgres checks unique indexes per updated row.
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_demons_active_position ON demons (position) WHERE removed_at IS NULL").Exec(ctx); err != nil {
			return err
		}
		// Reconstruction scans entries by time; per-demon history by demon id.
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_demon_audit_log_created_at ON demon_audit_log (created_at)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_demon_audit_log_demon_id ON demon_audit_log (demon_id)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Demon tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping demons and demon_audit_log tables...")

		if _, err := db.NewDropTable().Model((*demondb.AuditLogEntry)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*demondb.Demon)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Demon tables dropped successfully!")
		return nil
	})
}
