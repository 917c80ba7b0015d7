package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/quire"
)

// applicationName tags quire's sessions in pg_stat_activity.
const applicationName = "quire"

// DB is a PostgreSQL metadata backend over a pgx pool.
type DB struct {
	pool   *pgxpool.Pool
	tables quire.Tables
}

// Connect parses dsn and builds a pool. No connection is made until first use.
// The caller validates tables first.
func Connect(ctx context.Context, dsn string, tables quire.Tables) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: parse dsn: %w", err)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &DB{pool: pool, tables: tables}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate creates the records table and its indexes when missing.
func (d *DB) Migrate(ctx context.Context) error {
	if err := createRecordsTable(ctx, d.pool, d.tables.Records); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (d *DB) Validate(ctx context.Context) error {
	if err := ValidateSchema(ctx, d.pool, d.tables); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

func (d *DB) GetRepo() quire.RecordRepo {
	return &repo{pool: d.pool, tableName: pgx.Identifier{d.tables.Records}.Sanitize()}
}

// Close waits for acquired connections to be released.
func (d *DB) Close() error {
	d.pool.Close()
	return nil
}
