// Package sqlite implements quire.RecordRepo using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/database/internal"
)

// timeLayout is fixed width so text timestamps order the same way as the instants they encode.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

type repo struct {
	db        *sql.DB
	tableName string
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (quire.FileRecord, error) {
	var (
		fr                   quire.FileRecord
		idStr, ft            string
		createdAt, updatedAt string
	)

	if err := s.Scan(&idStr, &fr.WorkspaceID, &fr.OwnerID, &ft, &fr.Name, &createdAt, &updatedAt); err != nil {
		return quire.FileRecord{}, err
	}
	fr.Type = quire.FileType(ft)

	var err error
	if fr.ID, err = uuid.Parse(idStr); err != nil {
		return quire.FileRecord{}, fmt.Errorf("parse uuid: %w", err)
	}
	if fr.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return quire.FileRecord{}, fmt.Errorf("parse created_at: %w", err)
	}
	if fr.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return quire.FileRecord{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return fr, nil
}

func (r *repo) Insert(ctx context.Context, rec quire.FileRecord) (quire.FileRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (id, workspace_id, owner_id, type, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING %s`, r.tableName, internal.Columns)

	now := formatTime(time.Now())
	fr, err := scanRecord(r.db.QueryRowContext(ctx, query,
		rec.ID.String(), rec.WorkspaceID, rec.OwnerID, string(rec.Type), rec.Name, now, now,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quire.FileRecord{}, fmt.Errorf("insert: %w", quire.ErrNoEcho)
		}
		return quire.FileRecord{}, fmt.Errorf("insert: %w", err)
	}

	return fr, nil
}

func (r *repo) Get(ctx context.Context, scope quire.Scope, id uuid.UUID) (quire.FileRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s
		WHERE id = ? AND workspace_id = ? AND owner_id = ?`, internal.Columns, r.tableName)

	fr, err := scanRecord(r.db.QueryRowContext(ctx, query, id.String(), scope.WorkspaceID, scope.OwnerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quire.FileRecord{}, quire.ErrNotFound
		}
		return quire.FileRecord{}, fmt.Errorf("get: %w", err)
	}

	return fr, nil
}

func (r *repo) List(ctx context.Context, q quire.ListQuery) (quire.ListResult, error) {
	where, args := internal.ListWhere(q, internal.Question)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.tableName, where) //nolint:gosec // G201: table name is validated
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return quire.ListResult{}, fmt.Errorf("list: count: %w", err)
	}

	clause, args := internal.ListPage(where, args, q, internal.Question)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, internal.Columns, r.tableName, clause) //nolint:gosec // G201: table name is validated

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return quire.ListResult{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s SET name = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ? AND owner_id = ?
		RETURNING %s`, r.tableName, internal.Columns)

	fr, err := scanRecord(r.db.QueryRowContext(ctx, query,
		name, formatTime(time.Now()), id.String(), scope.WorkspaceID, scope.OwnerID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quire.FileRecord{}, quire.ErrNotFound
		}
		return quire.FileRecord{}, fmt.Errorf("rename: %w", err)
	}

	return fr, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID, ownerID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND owner_id = ?`, r.tableName) //nolint:gosec // G201: table name is validated

	result, err := r.db.ExecContext(ctx, query, id.String(), ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete: rows affected: %w", err)
	}

	return n, nil
}

func (r *repo) Exists(ctx context.Context, id uuid.UUID, ownerID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = ? AND owner_id = ?)`, r.tableName) //nolint:gosec // G201: table name is validated

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id.String(), ownerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	return exists, nil
}

func (r *repo) Lookup(ctx context.Context, id uuid.UUID) (quire.FileRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, internal.Columns, r.tableName) //nolint:gosec // G201: table name is validated

	fr, err := scanRecord(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quire.FileRecord{}, quire.ErrNotFound
		}
		return quire.FileRecord{}, fmt.Errorf("lookup: %w", err)
	}

	return fr, nil
}
