// Package supabase implements quire.RecordRepo over the Supabase REST (PostgREST) API.
//
// The client carries no context, so every call checks ctx before it goes out and cancellation
// cannot interrupt a request already in flight.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/internal/supaclient"
	"github.com/supabase-community/postgrest-go"
)

// selectColumns is the column list requested on every read, without spaces.
var selectColumns = strings.ReplaceAll("id, workspace_id, owner_id, type, name, created_at, updated_at", " ", "")

type row struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	OwnerID     string    `json:"owner_id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r row) record() quire.FileRecord {
	return quire.FileRecord{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		OwnerID:     r.OwnerID,
		Type:        quire.FileType(r.Type),
		Name:        r.Name,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type insertRow struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	OwnerID     string    `json:"owner_id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
}

type renameRow struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

type repo struct {
	client *supaclient.Lazy
	table  string
	now    func() time.Time
}

func (r *repo) from(ctx context.Context) (*postgrest.QueryBuilder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := r.client.Client()
	if err != nil {
		return nil, err
	}
	return c.From(r.table), nil
}

func (r *repo) Insert(ctx context.Context, rec quire.FileRecord) (quire.FileRecord, error) {
	q, err := r.from(ctx)
	if err != nil {
		return quire.FileRecord{}, fmt.Errorf("insert: %w", err)
	}

	var rows []row
	_, err = q.Insert(insertRow{
		ID:          rec.ID,
		WorkspaceID: rec.WorkspaceID,
		OwnerID:     rec.OwnerID,
		Type:        string(rec.Type),
		Name:        rec.Name,
	}, false, "", "representation", "").ExecuteTo(&rows)
	if err != nil {
		return quire.FileRecord{}, fmt.Errorf("insert: %w", err)
	}

	// row level security may let the insert through and still hide the row from the caller
	if len(rows) == 0 {
		return quire.FileRecord{}, fmt.Errorf("insert: %w", quire.ErrNoEcho)
	}

	return rows[0].record(), nil
}

func (r *repo) Get(ctx context.Context, scope quire.Scope, id uuid.UUID) (quire.FileRecord, error) {
	q, err := r.from(ctx)
	if err != nil {
		return quire.FileRecord{}, fmt.Errorf("get: %w", err)
	}

	var rows []row
	_, err = q.Select(selectColumns, "", false).
		Eq("id", id.String()).
		Eq("workspace_id", scope.WorkspaceID).
		Eq("owner_id", scope.OwnerID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return quire.FileRecord{}, fmt.Errorf("get: %w", err)
	}
	if len(rows) == 0 {
		return quire.FileRecord{}, quire.ErrNotFound
	}

	return rows[0].record(), nil
}

func (r *repo) List(ctx context.Context, lq quire.ListQuery) (quire.ListResult, error) {
	total, err := r.count(ctx, lq)
	if err != nil {
		return quire.ListResult{}, fmt.Errorf("list: count: %w", err)
	}

	// PostgREST rejects an offset past the end, so an empty window skips the data query
	if lq.Offset >= total || lq.Limit <= 0 {
		return quire.ListResult{Items: []quire.FileRecord{}, Total: total}, nil
	}

	q, err := r.from(ctx)
	if err != nil {
		return quire.ListResult{}, fmt.Errorf("list: %w", err)
	}

	var rows []row
	_, err = filterList(q.Select(selectColumns, "", false), lq).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Order("id", &postgrest.OrderOpts{Ascending: false}).
		Range(lq.Offset, lq.Offset+lq.Limit-1, "").
		ExecuteTo(&rows)
	if err != nil {
		return quire.ListResult{}, fmt.Errorf("list: %w", err)
	}

	items := make([]quire.FileRecord, 0, len(rows))
	for _, rw := range rows {
		items = append(items, rw.record())
	}

	return quire.ListResult{Items: items, Total: total}, nil
}

func (r *repo) count(ctx context.Context, lq quire.ListQuery) (int, error) {
	q, err := r.from(ctx)
	if err != nil {
		return 0, err
	}

	_, n, err := filterList(q.Select("id", "exact", true), lq).Execute()
	if err != nil {
		return 0, err
	}

	return int(n), nil
}

func filterList(f *postgrest.FilterBuilder, lq quire.ListQuery) *postgrest.FilterBuilder {
	f = f.Eq("workspace_id", lq.WorkspaceID).Eq("owner_id", lq.OwnerID)
	if lq.Type != "" {
		f = f.Eq("type", string(lq.Type))
	}
	return f
}

func (r *repo) Rename(ctx context.Context, scope quire.Scope, id uuid.UUID, name string) (quire.FileRecord, error) {
	q, err := r.from(ctx)
	if err != nil {
		return quire.FileRecord{}, fmt.Errorf("rename: %w", err)
	}

	var rows []row
	_, err = q.Update(renameRow{Name: name, UpdatedAt: r.now().UTC()}, "representation", "").
		Eq("id", id.String()).
		Eq("workspace_id", scope.WorkspaceID).
		Eq("owner_id", scope.OwnerID).
		ExecuteTo(&rows)
	if err != nil {
		return quire.FileRecord{}, fmt.Errorf("rename: %w", err)
	}
	if len(rows) == 0 {
		return quire.FileRecord{}, quire.ErrNotFound
	}

	return rows[0].record(), nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID, ownerID string) (int64, error) {
	q, err := r.from(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}

	var rows []json.RawMessage
	_, err = q.Delete("representation", "").
		Eq("id", id.String()).
		Eq("owner_id", ownerID).
		ExecuteTo(&rows)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}

	return int64(len(rows)), nil
}

func (r *repo) Exists(ctx context.Context, id uuid.UUID, ownerID string) (bool, error) {
	q, err := r.from(ctx)
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	var rows []struct {
		ID uuid.UUID `json:"id"`
	}
	_, err = q.Select("id", "", false).
		Eq("id", id.String()).
		Eq("owner_id", ownerID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	return len(rows) > 0, nil
}

func (r *repo) Lookup(ctx context.Context, id uuid.UUID) (quire.FileRecord, error) {
	q, err := r.from(ctx)
	if err != nil {
		return quire.FileRecord{}, fmt.Errorf("lookup: %w", err)
	}

	var rows []row
	_, err = q.Select(selectColumns, "", false).
		Eq("id", id.String()).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return quire.FileRecord{}, fmt.Errorf("lookup: %w", err)
	}
	if len(rows) == 0 {
		return quire.FileRecord{}, quire.ErrNotFound
	}

	return rows[0].record(), nil
}
