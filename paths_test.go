package quire_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sagarc03/quire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	id := uuid.MustParse("3f1d2c4b-5a6e-4f70-8a91-b2c3d4e5f607")
	ws := "7b2c9a40-1f3e-4d5a-9b6c-0d1e2f3a4b5c"

	t.Run("note canonical path uses notes subpath", func(t *testing.T) {
		assert.Equal(t, "workspace/"+ws+"/notes/"+id.String(), quire.CanonicalPath(ws, id, quire.TypeNote))
	})

	t.Run("other types use files subpath", func(t *testing.T) {
		for _, ft := range []quire.FileType{quire.TypeWhiteboard, quire.TypeGraph, quire.TypeDocument} {
			assert.Equal(t, "workspace/"+ws+"/files/"+id.String(), quire.CanonicalPath(ws, id, ft))
		}
	})

	t.Run("note read paths try canonical then legacy", func(t *testing.T) {
		assert.Equal(t, []string{
			"workspace/" + ws + "/notes/" + id.String(),
			"workspace/" + ws + "/files/" + id.String(),
		}, quire.ReadPaths(ws, id, quire.TypeNote))
	})

	t.Run("non-note read paths have no duplicate", func(t *testing.T) {
		assert.Equal(t, []string{"workspace/" + ws + "/files/" + id.String()}, quire.ReadPaths(ws, id, quire.TypeGraph))
	})

	t.Run("content ref mirrors canonical path", func(t *testing.T) {
		assert.Equal(t, "/workspace/"+ws+"/notes/"+id.String()+"/content", quire.ContentRef(ws, id, quire.TypeNote))
		assert.Equal(t, "/workspace/"+ws+"/files/"+id.String()+"/content", quire.ContentRef(ws, id, quire.TypeDocument))
	})
}

func TestParseBlobPath(t *testing.T) {
	id := uuid.MustParse("3f1d2c4b-5a6e-4f70-8a91-b2c3d4e5f607")

	t.Run("round trip", func(t *testing.T) {
		addr, err := quire.ParseBlobPath(quire.CanonicalPath("ws", id, quire.TypeNote))
		require.NoError(t, err)
		assert.Equal(t, quire.BlobAddress{WorkspaceID: "ws", Subdir: "notes", ID: id}, addr)
	})

	for _, p := range []string{
		"",
		"workspace/ws/notes",
		"workspace/ws/other/" + id.String(),
		"workspace/ws/files/not-an-id",
		"elsewhere/ws/files/" + id.String(),
		"workspace//files/" + id.String(),
		"workspace/ws/files/" + id.String() + "/extra",
	} {
		t.Run("rejects "+p, func(t *testing.T) {
			_, err := quire.ParseBlobPath(p)
			assert.ErrorIs(t, err, quire.ErrInvalidInput)
		})
	}
}
