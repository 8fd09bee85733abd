// Package postgres provides database connection and migration helpers.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PoolSettings tunes the connection pool of the database handle.
type PoolSettings struct {
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	MaxIdleConns    int
	MaxOpenConns    int
}

// Connect opens a database handle for the DSN, verifies the connection
// and applies the pool settings.
func Connect(ctx context.Context, dsn string, settings PoolSettings) (*sqlx.DB, error) {
	const op = "postgres.Connect"

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	db.SetConnMaxIdleTime(settings.ConnMaxIdleTime)
	db.SetConnMaxLifetime(settings.ConnMaxLifetime)
	db.SetMaxIdleConns(settings.MaxIdleConns)
	db.SetMaxOpenConns(settings.MaxOpenConns)

	return db, nil
}
