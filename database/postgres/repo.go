// Package postgres implements quire.RecordRepo on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/database/internal"
)

type repo struct {
	pool      *pgxpool.Pool
	tableName string
}

// NewRepo returns a RecordRepo over an existing pool.
func NewRepo(pool *pgxpool.Pool, tables quire.Tables) (quire.RecordRepo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &repo{pool: pool, tableName: pgx.Identifier{tables.Records}.Sanitize()}, nil
}

func scanRecord(row pgx.Row) (quire.FileRecord, error) {
	var fr quire.FileRecord
	var ft string
	err := row.Scan(&fr.ID, &fr.WorkspaceID, &fr.OwnerID, &ft, &fr.Name, &fr.CreatedAt, &fr.UpdatedAt)
	fr.Type = quire.FileType(ft)
	return fr, err
}

func (r *repo) Insert(ctx context.Context, rec quire.FileRecord) (quire.FileRecord, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, workspace_id, owner_id, type, name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, r.tableName, internal.Columns)

	fr, err := scanRecord(r.pool.QueryRow(ctx, query, rec.ID, rec.WorkspaceID, rec.OwnerID, string(rec.Type), rec.Name))
	if err != nil {
		// row security can hide the returned row while letting the insert through
		if errors.Is(err, pgx.ErrNoRows) {
			return quire.FileRecord{}, fmt.Errorf("insert: %w", quire.ErrNoEcho)
		}
		return quire.FileRecord{}, fmt.Errorf("insert: %w", err)
	}

	return fr, nil
}

func (r *repo) Get(ctx context.Context, scope quire.Scope, id uuid.UUID) (quire.FileRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND workspace_id = $2 AND owner_id = $3
	`, internal.Columns, r.tableName)

	fr, err := scanRecord(r.pool.QueryRow(ctx, query, id, scope.WorkspaceID, scope.OwnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quire.FileRecord{}, quire.ErrNotFound
		}
		return quire.FileRecord{}, fmt.Errorf("get: %w", err)
	}

	return fr, nil
}

func (r *repo) List(ctx context.Context, q quire.ListQuery) (quire.ListResult, error) {
	where, args := internal.ListWhere(q, internal.Dollar)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tableName, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return quire.ListResult{}, fmt.Errorf("list: count: %w", err)
	}

	clause, args := internal.ListPage(where, args, q, internal.Dollar)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, internal.Columns, r.tableName, clause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return quire.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := make([]quire.FileRecord, 0, q.Limit)
	for rows.Next() {
		fr, err := scanRecord(rows)
		if err != nil {
			return quire.ListResult{}, fmt.Errorf("list: scan: %w", err)
		}
		items = append(items, fr)
	}

	if err := rows.Err(); err != nil {
		return quire.ListResult{}, fmt.Errorf("list: rows: %w", err)
	}

	return quire.ListResult{Items: items, Total: total}, nil
}

func (r *repo) Rename(ctx context.Context, scope quire.Scope, id uuid.UUID, name string) (quire.FileRecord, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = NOW()
		WHERE id = $2 AND workspace_id = $3 AND owner_id = $4
		RETURNING %s
	`, r.tableName, internal.Columns)

	fr, err := scanRecord(r.pool.QueryRow(ctx, query, name, id, scope.WorkspaceID, scope.OwnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quire.FileRecord{}, quire.ErrNotFound
		}
		return quire.FileRecord{}, fmt.Errorf("rename: %w", err)
	}

	return fr, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID, ownerID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, r.tableName)

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *repo) Exists(ctx context.Context, id uuid.UUID, ownerID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND owner_id = $2)`, r.tableName)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id, ownerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	return exists, nil
}

func (r *repo) Lookup(ctx context.Context, id uuid.UUID) (quire.FileRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, internal.Columns, r.tableName)

	fr, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quire.FileRecord{}, quire.ErrNotFound
		}
		return quire.FileRecord{}, fmt.Errorf("lookup: %w", err)
	}

	return fr, nil
}
