package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/database/postgres"
	"github.com/sagarc03/quire/database/sqlite"
	"github.com/sagarc03/quire/database/supabase"
	"github.com/sagarc03/quire/internal/supaclient"
)

// Config holds the configuration for connecting to a metadata backend.
type Config struct {
	// Type specifies the backend: "sqlite", "postgres" or "supabase"
	Type string
	// DSN is the data source name for sqlite and postgres
	DSN string
	// Tables names the tables the backend reads and writes
	Tables quire.Tables
	// Supabase is the shared client, required when Type is "supabase"
	Supabase *supaclient.Lazy
}

// Database is a connected metadata backend.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	GetRepo() quire.RecordRepo
	Close() error
}

// Connect opens the configured backend. It does not migrate or validate; callers decide
// whether to run Migrate (init) or only Validate (serve).
func Connect(ctx context.Context, cfg Config) (Database, error) {
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	var (
		db  Database
		err error
	)
	switch cfg.Type {
	case "sqlite":
		db, err = wrap(sqlite.Connect(ctx, cfg.DSN, cfg.Tables))
	case "postgres":
		db, err = wrap(postgres.Connect(ctx, cfg.DSN, cfg.Tables))
	case "supabase":
		db, err = wrap(supabase.Connect(ctx, cfg.Supabase, cfg.Tables))
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return db, nil
}

// wrap keeps a nil backend pointer from turning into a non-nil Database.
func wrap[T Database](db T, err error) (Database, error) {
	if err != nil {
		return nil, err
	}
	return db, nil
}
