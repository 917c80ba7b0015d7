package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/database/internal"
)

var recordsTableSchema = map[string]internal.Column{
	"id":           {DataType: "text"},
	"workspace_id": {DataType: "text"},
	"owner_id":     {DataType: "text"},
	"type":         {DataType: "text"},
	"name":         {DataType: "text"},
	"created_at":   {DataType: "text"},
	"updated_at":   {DataType: "text"},
}

// ValidateSchema checks the records table against the columns the repo reads and writes.
func ValidateSchema(ctx context.Context, db *sql.DB, tables quire.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	if err := validateTableSchema(ctx, db, tables.Records, recordsTableSchema); err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Records, err)
	}

	return nil
}

func validateTableSchema(ctx context.Context, db *sql.DB, tableName string, expected map[string]internal.Column) error {
	exists, err := tableExists(ctx, db, tableName)
	if err != nil {
		return fmt.Errorf("validate table schema: %w", err)
	}

	if !exists {
		return fmt.Errorf("validate table schema: table %s does not exist", tableName)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(tableName)))
	if err != nil {
		return fmt.Errorf("validate table schema: query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actual := make(map[string]internal.Column)
	for rows.Next() {
		var (
			cid       int
			name      string
			dataType  string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("validate table schema: scan column: %w", err)
		}
		actual[name] = internal.Column{DataType: dataType, Nullable: notNull == 0}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate table schema: rows error: %w", err)
	}

	return internal.CompareColumns(tableName, expected, actual)
}

func tableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, tableName).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return true, nil
}
