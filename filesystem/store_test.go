package filesystem_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	notePath = "workspace/7b2c9a40-1f3e-4d5a-9b6c-0d1e2f3a4b5c/notes/0b9f6a3e-5d1c-4e2b-8a7f-3c4d5e6f7a8b"
	filePath = "workspace/7b2c9a40-1f3e-4d5a-9b6c-0d1e2f3a4b5c/files/0b9f6a3e-5d1c-4e2b-8a7f-3c4d5e6f7a8b"
)

func newStore(t *testing.T, opts ...filesystem.Option) (*filesystem.Store, string) {
	t.Helper()

	dir := t.TempDir()
	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	return filesystem.NewFileStorage(root, opts...), dir
}

func writeRaw(t *testing.T, dir, p string, data []byte) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(p))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, data, 0o644))
}

func TestStore_Write_Success(t *testing.T) {
	store, dir := newStore(t)

	result, err := store.Write(context.Background(), notePath, bytes.NewReader([]byte(`{"a":1}`)), "application/json")

	require.NoError(t, err)
	assert.Equal(t, int64(7), result.BytesWritten)
	assert.Len(t, result.Etag, 64) // SHA256 hex length

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(notePath)))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), data)

	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(notePath)+".meta.json"))
	assert.NoError(t, err, "sidecar should be written")
}

func TestStore_WriteRead_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		compress bool
	}{
		{"plain", false},
		{"zstd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newStore(t, filesystem.WithCompression(tt.compress))
			ctx := context.Background()
			content := bytes.Repeat([]byte("# heading\n"), 500)

			result, err := store.Write(ctx, notePath, bytes.NewReader(content), "text/markdown")
			require.NoError(t, err)
			assert.Equal(t, int64(len(content)), result.BytesWritten)

			blob, err := store.Read(ctx, notePath)
			require.NoError(t, err)
			assert.Equal(t, content, blob.Data)
			assert.Equal(t, "text/markdown", blob.ContentType)
		})
	}
}

func TestStore_Write_CompressedOnDisk(t *testing.T) {
	store, dir := newStore(t, filesystem.WithCompression(true))
	content := bytes.Repeat([]byte("a"), 64*1024)

	_, err := store.Write(context.Background(), filePath, bytes.NewReader(content), "text/plain")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(filePath)))
	require.NoError(t, err)
	assert.Less(t, info.Size(), int64(len(content)))
}

func TestStore_Read_CompressionToggledOff(t *testing.T) {
	root, err := os.OpenRoot(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })
	ctx := context.Background()

	_, err = filesystem.NewFileStorage(root, filesystem.WithCompression(true)).
		Write(ctx, notePath, bytes.NewReader([]byte("kept")), "text/plain")
	require.NoError(t, err)

	blob, err := filesystem.NewFileStorage(root).Read(ctx, notePath)
	require.NoError(t, err)
	assert.Equal(t, "kept", string(blob.Data))
}

func TestStore_Read_StaleSidecar(t *testing.T) {
	ctx := context.Background()

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll([]byte("fresh text"), nil)
	require.NoError(t, enc.Close())

	tests := []struct {
		name     string
		compress bool
		previous string
		onDisk   []byte
	}{
		{"sidecar says zstd, blob is plain", true, "old", []byte("fresh text")},
		{"sidecar says plain, blob is zstd", false, `{"old":true}`, compressed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, dir := newStore(t, filesystem.WithCompression(tt.compress))
			_, err := store.Write(ctx, notePath, bytes.NewReader([]byte(tt.previous)), "application/json")
			require.NoError(t, err)

			// the blob rename landed, the sidecar rename did not
			writeRaw(t, dir, notePath, tt.onDisk)

			blob, err := store.Read(ctx, notePath)
			require.NoError(t, err)
			assert.Equal(t, "fresh text", string(blob.Data))
			assert.Equal(t, "text/plain; charset=utf-8", blob.ContentType, "stale content type is not reused")
		})
	}
}

func TestStore_Read_NoSidecarSniffsType(t *testing.T) {
	store, dir := newStore(t)
	writeRaw(t, dir, filePath, []byte(`{"legacy":true}`))

	blob, err := store.Read(context.Background(), filePath)

	require.NoError(t, err)
	assert.Equal(t, "application/json", blob.ContentType)
	assert.Equal(t, `{"legacy":true}`, string(blob.Data))
}

func TestStore_Read_NotFound(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Read(context.Background(), notePath)

	assert.ErrorIs(t, err, quire.ErrNotFound)
}

func TestStore_Exists(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, notePath)
	require.NoError(t, err)
	assert.False(t, exists)

	writeRaw(t, dir, notePath, []byte("x"))

	exists, err = store.Exists(ctx, notePath)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "workspace")
	require.NoError(t, err)
	assert.False(t, exists, "directories are not blobs")
}

func TestStore_InvalidPaths(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	for _, p := range []string{"", "/abs", "../escape", "a//b", notePath + ".meta.json"} {
		_, err := store.Read(ctx, p)
		assert.ErrorIs(t, err, quire.ErrInvalidInput, "read %q", p)

		_, err = store.Write(ctx, p, bytes.NewReader(nil), "text/plain")
		assert.ErrorIs(t, err, quire.ErrInvalidInput, "write %q", p)
	}
}

func TestStore_Write_ContextCanceledBefore(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.Write(ctx, notePath, bytes.NewReader([]byte("test")), "text/plain")

	assert.Equal(t, context.Canceled, err)
	assert.Zero(t, result)
}

type cancelingReader struct {
	data   []byte
	pos    int
	cancel context.CancelFunc
}

func (r *cancelingReader) Read(p []byte) (n int, err error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	r.cancel()
	n = copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func TestStore_Write_ContextCanceledDuringCopy(t *testing.T) {
	store, dir := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	result, err := store.Write(ctx, notePath, &cancelingReader{data: []byte("test content"), cancel: cancel}, "text/plain")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result)

	_, statErr := os.Stat(filepath.Join(dir, filepath.FromSlash(notePath)))
	assert.True(t, os.IsNotExist(statErr), "no partial blob should be left behind")

	entries, err := store.List(context.Background(), "workspace")
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must not be listed")
}

func TestStore_Delete(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, notePath, bytes.NewReader([]byte("content")), "text/plain")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, notePath))

	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(notePath)))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(notePath)+".meta.json"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, notePath), "deleting twice is not an error")
}

func TestStore_Delete_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, context.Canceled, store.Delete(ctx, notePath))
}

func TestStore_List(t *testing.T) {
	store, dir := newStore(t, filesystem.WithCompression(true))
	ctx := context.Background()

	_, err := store.Write(ctx, notePath, bytes.NewReader([]byte("content1")), "text/plain")
	require.NoError(t, err)
	writeRaw(t, dir, filePath, []byte("legacy"))
	writeRaw(t, dir, "outside/file.txt", []byte("ignored"))

	entries, err := store.List(ctx, "workspace")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	assert.Equal(t, filePath, entries[0].Path)
	assert.Equal(t, int64(6), entries[0].Size)
	assert.Empty(t, entries[0].ContentType)

	assert.Equal(t, notePath, entries[1].Path)
	assert.Equal(t, int64(8), entries[1].Size, "size is the uncompressed size")
	assert.Equal(t, "text/plain", entries[1].ContentType)
}

func TestStore_List_MissingPrefix(t *testing.T) {
	store, _ := newStore(t)

	entries, err := store.List(context.Background(), "workspace")

	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_List_ContextCanceled(t *testing.T) {
	store, _ := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entries, err := store.List(ctx, "workspace")

	assert.Equal(t, context.Canceled, err)
	assert.Nil(t, entries)
}

func TestStore_Write_ETagConsistency(t *testing.T) {
	ctx := context.Background()
	content := []byte("same content")

	plain, _ := newStore(t)
	compressed, _ := newStore(t, filesystem.WithCompression(true))

	r1, err := plain.Write(ctx, notePath, bytes.NewReader(content), "text/plain")
	require.NoError(t, err)
	r2, err := compressed.Write(ctx, filePath, bytes.NewReader(content), "text/plain")
	require.NoError(t, err)

	assert.Equal(t, r1.Etag, r2.Etag, "etag describes content, not its encoding")
}

func TestStore_ConcurrentWrites(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	done := make(chan error, 10)
	for i := range 10 {
		go func(n int) {
			p := fmt.Sprintf("workspace/ws/files/0b9f6a3e-5d1c-4e2b-8a7f-3c4d5e6f7a%02d", n)
			_, err := store.Write(ctx, p, bytes.NewReader(fmt.Appendf(nil, "content-%d", n)), "text/plain")
			done <- err
		}(i)
	}

	for range 10 {
		assert.NoError(t, <-done)
	}

	entries, err := store.List(ctx, "workspace")
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}
