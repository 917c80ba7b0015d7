// Package objectstore stores record content in a Supabase Storage bucket.
package objectstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/internal/supaclient"
	storage "github.com/supabase-community/storage-go"
)

const listPageSize = 100

// Store is a quire.BlobStorage over one Supabase Storage bucket.
type Store struct {
	clients *supaclient.Lazy
	bucket  string
}

func New(clients *supaclient.Lazy, bucket string) (*Store, error) {
	if clients == nil {
		return nil, errors.New("new object store: client is required")
	}
	if bucket == "" {
		return nil, errors.New("new object store: bucket is required")
	}
	return &Store{clients: clients, bucket: bucket}, nil
}

func (s *Store) client(ctx context.Context, p string) (*storage.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p != "" && !quire.IsValidBlobPath(p) {
		return nil, fmt.Errorf("%w: invalid blob path: %q", quire.ErrInvalidInput, p)
	}
	return s.clients.NewStorage()
}

func isNotFound(err error) bool {
	var se *storage.StorageError
	if !errors.As(err, &se) {
		return false
	}
	return se.Status == http.StatusNotFound || strings.Contains(strings.ToLower(se.Message), "not found")
}

// stat finds the object at p by listing its parent folder. Storage has no HEAD for
// private objects in this client, and listing also yields the stored content type.
func (s *Store) stat(ctx context.Context, c *storage.Client, p string) (*storage.FileObject, error) {
	dir, name := path.Split(p)
	dir = strings.TrimSuffix(dir, "/")

	for offset := 0; ; offset += listPageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		objs, err := c.ListFiles(s.bucket, dir, storage.FileSearchOptions{Limit: listPageSize, Offset: offset})
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}

		for i := range objs {
			if objs[i].Name == name && objs[i].Id != "" {
				return &objs[i], nil
			}
		}

		if len(objs) < listPageSize {
			return nil, nil
		}
	}
}

func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	c, err := s.client(ctx, p)
	if err != nil {
		return false, err
	}

	obj, err := s.stat(ctx, c, p)
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}

	return obj != nil, nil
}

func (s *Store) Read(ctx context.Context, p string) (quire.Blob, error) {
	c, err := s.client(ctx, p)
	if err != nil {
		return quire.Blob{}, err
	}

	obj, err := s.stat(ctx, c, p)
	if err != nil {
		return quire.Blob{}, fmt.Errorf("read: %w", err)
	}
	if obj == nil {
		return quire.Blob{}, quire.ErrNotFound
	}

	data, err := c.DownloadFile(s.bucket, p)
	if err != nil {
		if isNotFound(err) {
			return quire.Blob{}, quire.ErrNotFound
		}
		return quire.Blob{}, fmt.Errorf("read: %w", err)
	}

	ct := metaString(obj.Metadata, "mimetype")
	if ct == "" {
		ct = mimetype.Detect(data).String()
	}

	return quire.Blob{Data: data, ContentType: ct}, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}

// Write uploads content with upsert, so an existing object at p is replaced.
func (s *Store) Write(ctx context.Context, p string, content io.Reader, contentType string) (quire.SaveResult, error) {
	c, err := s.client(ctx, p)
	if err != nil {
		return quire.SaveResult{}, err
	}

	h := sha256.New()
	counter := &countingWriter{}
	body := io.TeeReader(&ctxReader{ctx: ctx, r: content}, io.MultiWriter(h, counter))

	upsert := true
	if _, err = c.UploadFile(s.bucket, p, body, storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return quire.SaveResult{}, fmt.Errorf("write: %w", err)
	}

	return quire.SaveResult{BytesWritten: counter.n, Etag: hex.EncodeToString(h.Sum(nil))}, nil
}

// Delete removes the object at p. Storage reports success for absent objects.
func (s *Store) Delete(ctx context.Context, p string) error {
	c, err := s.client(ctx, p)
	if err != nil {
		return err
	}

	if _, err = c.RemoveFile(s.bucket, []string{p}); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// List walks every folder under prefix. Folders come back from Storage as entries without an id.
func (s *Store) List(ctx context.Context, prefix string) ([]quire.BlobEntry, error) {
	c, err := s.client(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var entries []quire.BlobEntry
	if err = s.walk(ctx, c, strings.TrimSuffix(prefix, "/"), &entries); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	return entries, nil
}

func (s *Store) walk(ctx context.Context, c *storage.Client, dir string, entries *[]quire.BlobEntry) error {
	for offset := 0; ; offset += listPageSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		objs, err := c.ListFiles(s.bucket, dir, storage.FileSearchOptions{Limit: listPageSize, Offset: offset})
		if err != nil {
			return err
		}

		for _, obj := range objs {
			full := obj.Name
			if dir != "" {
				full = dir + "/" + obj.Name
			}

			if obj.Id == "" {
				if err = s.walk(ctx, c, full, entries); err != nil {
					return err
				}
				continue
			}

			*entries = append(*entries, quire.BlobEntry{
				Path:        full,
				Size:        metaInt(obj.Metadata, "size"),
				ContentType: metaString(obj.Metadata, "mimetype"),
			})
		}

		if len(objs) < listPageSize {
			return nil
		}
	}
}

func metaString(meta any, key string) string {
	m, ok := meta.(map[string]any)
	if !ok {
		return ""
	}
	v, _ := m[key].(string)
	return v
}

func metaInt(meta any, key string) int64 {
	m, ok := meta.(map[string]any)
	if !ok {
		return 0
	}
	v, _ := m[key].(float64)
	return int64(v)
}
