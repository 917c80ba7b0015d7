package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sagarc03/quire"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DB is a SQLite metadata backend.
type DB struct {
	conn   *sql.DB
	tables quire.Tables
}

// Connect opens dsn. The caller validates tables first.
//
// An in-memory database exists per connection, so the pool is pinned to one
// connection for those DSNs. File DSNs without their own busy_timeout pragma get
// one, so concurrent writers wait instead of failing with SQLITE_BUSY.
func Connect(_ context.Context, dsn string, tables quire.Tables) (*DB, error) {
	memory := inMemory(dsn)
	if !memory && !strings.Contains(dsn, "busy_timeout") {
		dsn = withPragma(dsn, "busy_timeout(5000)")
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	if memory {
		conn.SetMaxOpenConns(1)
	}

	return &DB{conn: conn, tables: tables}, nil
}

// withPragma appends a modernc _pragma query parameter, applied on every new connection.
func withPragma(dsn, pragma string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=" + pragma
}

func inMemory(dsn string) bool {
	return dsn == ":memory:" || dsn == "file::memory:" || strings.HasPrefix(dsn, "file::memory:?")
}

func (d *DB) Ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

// Migrate creates the records table and its indexes when missing.
func (d *DB) Migrate(ctx context.Context) error {
	if err := Migrate(ctx, d.conn, d.tables); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (d *DB) Validate(ctx context.Context) error {
	if err := ValidateSchema(ctx, d.conn, d.tables); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

func (d *DB) GetRepo() quire.RecordRepo {
	return &repo{db: d.conn, tableName: quoteIdentifier(d.tables.Records)}
}

func (d *DB) Close() error {
	return d.conn.Close()
}
