package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sagarc03/quire"
)

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// recordsSchema returns the DDL for the records table and its indexes. Timestamps are
// fixed-width UTC text (see timeLayout) so ORDER BY on them is chronological.
func recordsSchema(table string) []string {
	t := quoteIdentifier(table)
	idx := func(suffix string) string { return quoteIdentifier("idx_" + table + "_" + suffix) }

	return []string{
		`CREATE TABLE IF NOT EXISTS ` + t + ` (
			id TEXT NOT NULL PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('note', 'whiteboard', 'graph', 'document')),
			name TEXT NOT NULL CHECK (length(trim(name)) > 0),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ` + idx("scope_created") + ` ON ` + t + ` (workspace_id, owner_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS ` + idx("owner") + ` ON ` + t + ` (owner_id, id)`,
	}
}

// Migrate creates the records table and indexes in one transaction. Safe to rerun.
func Migrate(ctx context.Context, db *sql.DB, tables quire.Tables) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate %s: begin: %w", tables.Records, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range recordsSchema(tables.Records) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", tables.Records, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate %s: commit: %w", tables.Records, err)
	}
	return nil
}

// DropTables removes the records table with its indexes.
func DropTables(ctx context.Context, db *sql.DB, tables quire.Tables) error {
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdentifier(tables.Records)); err != nil {
		return fmt.Errorf("drop %s: %w", tables.Records, err)
	}
	return nil
}
