package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/database/internal"
)

var recordsTableSchema = map[string]internal.Column{
	"id":           {DataType: "uuid"},
	"workspace_id": {DataType: "text"},
	"owner_id":     {DataType: "text"},
	"type":         {DataType: "text"},
	"name":         {DataType: "text"},
	"created_at":   {DataType: "timestamp with time zone"},
	"updated_at":   {DataType: "timestamp with time zone"},
}

// ValidateSchema checks the records table against the columns the repo reads and writes.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables quire.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	if err := validateTableSchema(ctx, pool, tables.Records, recordsTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Records, err)
	}

	return nil
}

func validateTableSchema(ctx context.Context, pool *pgxpool.Pool, tableName string, expected map[string]internal.Column) error {
	exists, err := tableExists(ctx, pool, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}

	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist", tableName)
	}

	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
	`, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer rows.Close()

	actual := make(map[string]internal.Column)
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actual[name] = internal.Column{DataType: dataType, Nullable: nullable == "YES"}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate table schema: rows error: %w", err)
	}

	return internal.CompareColumns(tableName, expected, actual)
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	)`, tableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return exists, nil
}
