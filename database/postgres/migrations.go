package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func recordsSchema(table string) []string {
	t := pgx.Identifier{table}.Sanitize()
	idx := func(suffix string) string { return pgx.Identifier{"idx_" + table + "_" + suffix}.Sanitize() }

	return []string{
		`CREATE TABLE IF NOT EXISTS ` + t + ` (
			id UUID PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('note', 'whiteboard', 'graph', 'document')),
			name TEXT NOT NULL CHECK (length(btrim(name)) > 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + idx("scope_created") + ` ON ` + t + ` (workspace_id, owner_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS ` + idx("owner") + ` ON ` + t + ` (owner_id, id)`,
	}
}

// createRecordsTable applies the schema in one transaction; postgres DDL is transactional.
func createRecordsTable(ctx context.Context, pool *pgxpool.Pool, table string) error {
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range recordsSchema(table) {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

// DropTables removes the records table. Used by tests.
func DropTables(ctx context.Context, pool *pgxpool.Pool, table string) error {
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+pgx.Identifier{table}.Sanitize()); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	return nil
}
