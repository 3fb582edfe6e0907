// Package bundb assembles the bun database connection and every module's
// repository on top of it.
package bundb

import (
	"context"
	"database/sql"
	"fmt"

	demondb "github.com/demonlist-club/demonlist-backend/app/modules/demon/infrastructure/repositories"
	playerdb "github.com/demonlist-club/demonlist-backend/app/modules/player/infrastructure/repositories"
	recorddb "github.com/demonlist-club/demonlist-backend/app/modules/record/infrastructure/repositories"
	scoredb "github.com/demonlist-club/demonlist-backend/app/modules/score/infrastructure/repositories"
	"github.com/demonlist-club/demonlist-backend/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DBService bundles the shared bun connection with each module's repository.
type DBService struct {
	DemonDB  *demondb.DemonDBImpl
	PlayerDB *playerdb.PlayerDBImpl
	RecordDB *recorddb.RecordDBImpl
	ScoreDB  *scoredb.ScoreDBImpl
	db       *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// NewBunDBService opens the Postgres connection and wires the repositories.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	db.RegisterModel((*demondb.Demon)(nil))
	db.RegisterModel((*demondb.AuditLogEntry)(nil))
	db.RegisterModel((*playerdb.Player)(nil))
	db.RegisterModel((*playerdb.Nationality)(nil))
	db.RegisterModel((*playerdb.Subdivision)(nil))
	db.RegisterModel((*recorddb.Record)(nil))
	db.RegisterModel((*scoredb.PlayerRank)(nil))
	db.RegisterModel((*scoredb.NationRank)(nil))
	db.RegisterModel((*scoredb.SubdivisionRank)(nil))

	return &DBService{
		DemonDB:  &demondb.DemonDBImpl{DB: db},
		PlayerDB: &playerdb.PlayerDBImpl{DB: db},
		RecordDB: &recorddb.RecordDBImpl{DB: db},
		ScoreDB:  &scoredb.ScoreDBImpl{DB: db},
		db:       db,
	}, nil
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return sqldb, nil
}
