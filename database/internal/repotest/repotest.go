// Package repotest is a behaviour suite every quire.RecordRepo backend runs against itself.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/quire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, migrated and empty repo.
type Factory func(t *testing.T) quire.RecordRepo

const (
	workspaceA = "7b2c9a40-1f3e-4d5a-9b6c-0d1e2f3a4b5c"
	workspaceB = "11111111-2222-4333-8444-555555555555"
	ownerA     = "owner-a"
	ownerB     = "owner-b"
)

func newRecord(ws, owner string, ft quire.FileType, name string) quire.FileRecord {
	return quire.FileRecord{ID: uuid.New(), WorkspaceID: ws, OwnerID: owner, Type: ft, Name: name}
}

func insert(t *testing.T, r quire.RecordRepo, rec quire.FileRecord) quire.FileRecord {
	t.Helper()
	got, err := r.Insert(context.Background(), rec)
	require.NoError(t, err, "insert %s", rec.Name)
	return got
}

// Run exercises the full RecordRepo contract.
func Run(t *testing.T, factory Factory) {
	t.Run("insert echoes committed row", func(t *testing.T) {
		r := factory(t)
		rec := newRecord(workspaceA, ownerA, quire.TypeNote, "Untitled")

		got := insert(t, r, rec)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.WorkspaceID, got.WorkspaceID)
		assert.Equal(t, rec.OwnerID, got.OwnerID)
		assert.Equal(t, quire.TypeNote, got.Type)
		assert.Equal(t, "Untitled", got.Name)
		assert.False(t, got.CreatedAt.IsZero())
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("insert duplicate id fails", func(t *testing.T) {
		r := factory(t)
		rec := insert(t, r, newRecord(workspaceA, ownerA, quire.TypeNote, "one"))

		_, err := r.Insert(context.Background(), rec)
		assert.Error(t, err)
	})

	t.Run("get is scoped by workspace and owner", func(t *testing.T) {
		r := factory(t)
		ctx := context.Background()
		rec := insert(t, r, newRecord(workspaceA, ownerA, quire.TypeGraph, "g"))

		got, err := r.Get(ctx, quire.Scope{WorkspaceID: workspaceA, OwnerID: ownerA}, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)

		_, err = r.Get(ctx, quire.Scope{WorkspaceID: workspaceA, OwnerID: ownerB}, rec.ID)
		assert.ErrorIs(t, err, quire.ErrNotFound)

		_, err = r.Get(ctx, quire.Scope{WorkspaceID: workspaceB, OwnerID: ownerA}, rec.ID)
		assert.ErrorIs(t, err, quire.ErrNotFound)

		_, err = r.Get(ctx, quire.Scope{WorkspaceID: workspaceA, OwnerID: ownerA}, uuid.New())
		assert.ErrorIs(t, err, quire.ErrNotFound)
	})

	t.Run("list newest first with window and total", func(t *testing.T) {
		r := factory(t)
		ctx := context.Background()
		scope := quire.Scope{WorkspaceID: workspaceA, OwnerID: ownerA}

		var ids []uuid.UUID
		for i := range 7 {
			rec := insert(t, r, newRecord(workspaceA, ownerA, quire.TypeNote, fmt.Sprintf("n%d", i)))
			ids = append(ids, rec.ID)
			// distinct created_at values
			time.Sleep(5 * time.Millisecond)
		}
		insert(t, r, newRecord(workspaceA, ownerA, quire.TypeWhiteboard, "w"))
		insert(t, r, newRecord(workspaceA, ownerB, quire.TypeNote, "other owner"))
		insert(t, r, newRecord(workspaceB, ownerA, quire.TypeNote, "other workspace"))

		res, err := r.List(ctx, quire.ListQuery{Scope: scope, Type: quire.TypeNote, Offset: 0, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, 7, res.Total)
		require.Len(t, res.Items, 5)
		assert.Equal(t, ids[6], res.Items[0].ID)
		for i := 1; i < len(res.Items); i++ {
			assert.True(t, res.Items[i-1].CreatedAt.After(res.Items[i].CreatedAt), "descending created_at")
		}

		res, err = r.List(ctx, quire.ListQuery{Scope: scope, Type: quire.TypeNote, Offset: 5, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, 7, res.Total)
		require.Len(t, res.Items, 2)
		assert.Equal(t, ids[0], res.Items[1].ID)

		res, err = r.List(ctx, quire.ListQuery{Scope: scope, Offset: 0, Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, 8, res.Total)
		assert.Len(t, res.Items, 8)
	})

	t.Run("list past the end", func(t *testing.T) {
		r := factory(t)
		insert(t, r, newRecord(workspaceA, ownerA, quire.TypeNote, "n"))

		res, err := r.List(context.Background(), quire.ListQuery{
			Scope: quire.Scope{WorkspaceID: workspaceA, OwnerID: ownerA}, Offset: 10, Limit: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Empty(t, res.Items)
	})

	t.Run("rename bumps updated_at", func(t *testing.T) {
		r := factory(t)
		ctx := context.Background()
		scope := quire.Scope{WorkspaceID: workspaceA, OwnerID: ownerA}
		rec := insert(t, r, newRecord(workspaceA, ownerA, quire.TypeDocument, "old"))
		time.Sleep(5 * time.Millisecond)

		got, err := r.Rename(ctx, scope, rec.ID, "new")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Name)
		assert.True(t, got.UpdatedAt.After(rec.UpdatedAt))
		assert.Equal(t, rec.CreatedAt.UnixMicro(), got.CreatedAt.UnixMicro())

		_, err = r.Rename(ctx, quire.Scope{WorkspaceID: workspaceA, OwnerID: ownerB}, rec.ID, "hijack")
		assert.ErrorIs(t, err, quire.ErrNotFound)
	})

	t.Run("delete filters by owner", func(t *testing.T) {
		r := factory(t)
		ctx := context.Background()
		rec := insert(t, r, newRecord(workspaceA, ownerA, quire.TypeNote, "n"))

		n, err := r.Delete(ctx, rec.ID, ownerB)
		require.NoError(t, err)
		assert.Zero(t, n)

		exists, err := r.Exists(ctx, rec.ID, ownerA)
		require.NoError(t, err)
		assert.True(t, exists)

		n, err = r.Delete(ctx, rec.ID, ownerA)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		exists, err = r.Exists(ctx, rec.ID, ownerA)
		require.NoError(t, err)
		assert.False(t, exists)

		n, err = r.Delete(ctx, rec.ID, ownerA)
		require.NoError(t, err)
		assert.Zero(t, n, "second delete is a no-op")
	})

	t.Run("lookup ignores owner", func(t *testing.T) {
		r := factory(t)
		ctx := context.Background()
		rec := insert(t, r, newRecord(workspaceB, ownerB, quire.TypeGraph, "g"))

		got, err := r.Lookup(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, workspaceB, got.WorkspaceID)

		_, err = r.Lookup(ctx, uuid.New())
		assert.ErrorIs(t, err, quire.ErrNotFound)
	})
}
