package testutils

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"

	playerdb "github.com/demonlist-club/demonlist-backend/app/modules/player/infrastructure/repositories"
	"github.com/demonlist-club/demonlist-backend/config"
	"github.com/demonlist-club/demonlist-backend/db/bundb"
	"github.com/demonlist-club/demonlist-backend/integration_tests/containers"
)

// Env is one test's fully migrated database environment.
type Env struct {
	DB      *bundb.DBService
	ConnStr string
	Faker   *gofakeit.Faker
}

// Setup starts a Postgres container, runs all migrations and registers
// cleanup on the test. Tests using it are skipped in -short mode.
func Setup(t *testing.T) *Env {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, connStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dbService, err := bundb.NewBunDBService(ctx, config.PostgresConfig{DSN: connStr})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	t.Cleanup(func() {
		dbService.GetDB().Close()
	})

	if err := RunMigrations(ctx, dbService.GetDB(), connStr); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return &Env{
		DB:      dbService,
		ConnStr: connStr,
		Faker:   gofakeit.New(0),
	}
}

// SeedNationality inserts a nationality row, which the residency foreign
// lookups require.
func (e *Env) SeedNationality(t *testing.T, id, name string) {
	t.Helper()
	_, err := e.DB.GetDB().NewInsert().
		Model(&playerdb.Nationality{ID: id, Name: name}).
		Exec(context.Background())
	if err != nil {
		t.Fatalf("failed to seed nationality %s: %v", id, err)
	}
}

// SeedSubdivision inserts a subdivision row.
func (e *Env) SeedSubdivision(t *testing.T, nationalityID, id, name string) {
	t.Helper()
	_, err := e.DB.GetDB().NewInsert().
		Model(&playerdb.Subdivision{NationalityID: nationalityID, ID: id, Name: name}).
		Exec(context.Background())
	if err != nil {
		t.Fatalf("failed to seed subdivision %s/%s: %v", nationalityID, id, err)
	}
}
