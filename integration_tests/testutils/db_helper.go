// Package testutils provides shared setup for integration tests: container
// lifecycle, schema migrations and seeded test data.
package testutils

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	demonmigrations "github.com/demonlist-club/demonlist-backend/app/modules/demon/infrastructure/repositories/migrations"
	playermigrations "github.com/demonlist-club/demonlist-backend/app/modules/player/infrastructure/repositories/migrations"
	recordmigrations "github.com/demonlist-club/demonlist-backend/app/modules/record/infrastructure/repositories/migrations"
	scoremigrations "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/repositories/migrations"
)

// RunMigrations applies every module's migrations plus the River queue
// schema against a fresh database.
func RunMigrations(ctx context.Context, db *bun.DB, pgConnStr string) error {
	if err := runRiverMigrations(ctx, pgConnStr); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}

	orderedModules := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"demon", demonmigrations.Migrations},
		{"player", playermigrations.Migrations},
		{"record", recordmigrations.Migrations},
		{"score", scoremigrations.Migrations},
	}

	for _, mod := range orderedModules {
		migrator := migrate.NewMigrator(db, mod.migrations)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init migrations for %s: %w", mod.name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", mod.name, err)
		}
	}
	return nil
}

func runRiverMigrations(ctx context.Context, connStr string) error {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return fmt.Errorf("failed to parse DSN for River migrations: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}
