// Package filesystem stores record content on the local file system.
// Writes are atomic (temp file then rename) and each blob has a JSON sidecar holding
// its content type, digest and encoding. Blobs can optionally be zstd compressed at rest.
package filesystem

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/sagarc03/quire"
)

const (
	metaSuffix   = ".meta.json"
	encodingZstd = "zstd"
)

// meta is the sidecar stored next to each blob.
type meta struct {
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Sha256      string    `json:"sha256"`
	Encoding    string    `json:"encoding,omitempty"`
	ModifiedAt  time.Time `json:"modifiedAt"`
}

// Store provides file system storage operations.
type Store struct {
	root     *os.Root
	compress bool
}

type Option func(*Store)

// WithCompression zstd-compresses blobs at rest. Existing uncompressed blobs stay readable.
func WithCompression(enabled bool) Option {
	return func(s *Store) { s.compress = enabled }
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root, opts ...Option) *Store {
	s := &Store{root: root}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func osPath(p string) (string, error) {
	if !quire.IsValidBlobPath(p) || strings.HasSuffix(p, metaSuffix) {
		return "", fmt.Errorf("%w: invalid blob path: %q", quire.ErrInvalidInput, p)
	}
	return filepath.FromSlash(p), nil
}

func (s *Store) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	name, err := osPath(p)
	if err != nil {
		return false, err
	}

	info, err := s.root.Stat(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat: %w", err)
	}

	return info.Mode().IsRegular(), nil
}

// Read returns the decoded blob. Blobs without a sidecar get a sniffed content type.
func (s *Store) Read(ctx context.Context, p string) (quire.Blob, error) {
	if err := ctx.Err(); err != nil {
		return quire.Blob{}, err
	}

	name, err := osPath(p)
	if err != nil {
		return quire.Blob{}, err
	}

	data, err := s.readFile(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return quire.Blob{}, quire.ErrNotFound
		}
		return quire.Blob{}, fmt.Errorf("read: %w", err)
	}

	m, err := s.readMeta(name)
	if err != nil {
		return quire.Blob{}, fmt.Errorf("read: %w", err)
	}

	data, m, err = decodeBlob(ctx, p, data, m)
	if err != nil {
		return quire.Blob{}, fmt.Errorf("read: %w", err)
	}

	ct := m.ContentType
	if ct == "" {
		ct = mimetype.Detect(data).String()
	}

	return quire.Blob{Data: data, ContentType: ct}, nil
}

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// decodeBlob undoes the sidecar's encoding and checks the result against its digest.
//
// Write renames the blob and then the sidecar, so a reader between the two renames, or
// after a crash between them, sees new bytes next to an old sidecar. A digest mismatch
// marks the sidecar stale: it is dropped, and the encoding is taken from the zstd frame
// magic instead.
func decodeBlob(ctx context.Context, p string, stored []byte, m meta) ([]byte, meta, error) {
	data := stored
	var err error
	if m.Encoding == encodingZstd {
		data, err = decompress(stored)
	}
	switch {
	case m.Sha256 == "":
		return data, m, err
	case err == nil && digest(data) == m.Sha256:
		return data, m, nil
	}

	slog.WarnContext(ctx, "blob sidecar is stale, ignoring it", "path", p)
	if bytes.HasPrefix(stored, zstdMagic) {
		if plain, zerr := decompress(stored); zerr == nil {
			return plain, meta{}, nil
		}
	}
	return stored, meta{}, nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *Store) readFile(name string) ([]byte, error) {
	f, err := s.root.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return io.ReadAll(f)
}

// readMeta returns the zero meta when the blob has no sidecar.
func (s *Store) readMeta(name string) (meta, error) {
	raw, err := s.readFile(name + metaSuffix)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return meta{}, nil
		}
		return meta{}, fmt.Errorf("sidecar: %w", err)
	}

	var m meta
	if err = json.Unmarshal(raw, &m); err != nil {
		return meta{}, fmt.Errorf("sidecar: %w", err)
	}
	return m, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically replaces the blob at p, then its sidecar. The two renames are separate;
// Read detects a sidecar left over from the previous content by its digest. BytesWritten
// and the etag describe the content as given, before compression.
func (s *Store) Write(ctx context.Context, p string, content io.Reader, contentType string) (quire.SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return quire.SaveResult{}, ctxErr
	}

	name, err := osPath(p)
	if err != nil {
		return quire.SaveResult{}, err
	}

	if dir := filepath.Dir(name); dir != "." {
		if err = s.root.MkdirAll(dir, 0o755); err != nil {
			return quire.SaveResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	h := sha256.New()
	var size int64
	err = s.writeAtomic(name, func(w io.Writer) error {
		var dst io.Writer = w
		var enc *zstd.Encoder
		if s.compress {
			e, zerr := zstd.NewWriter(w)
			if zerr != nil {
				return fmt.Errorf("zstd: %w", zerr)
			}
			enc, dst = e, e
		}

		n, copyErr := io.Copy(io.MultiWriter(h, dst), &ctxReader{ctx: ctx, r: content})
		if enc != nil {
			if closeErr := enc.Close(); copyErr == nil {
				copyErr = closeErr
			}
		}
		size = n
		return copyErr
	})
	if err != nil {
		return quire.SaveResult{}, fmt.Errorf("write: %w", err)
	}

	m := meta{
		ContentType: contentType,
		Size:        size,
		Sha256:      hex.EncodeToString(h.Sum(nil)),
		ModifiedAt:  time.Now().UTC(),
	}
	if s.compress {
		m.Encoding = encodingZstd
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return quire.SaveResult{}, fmt.Errorf("write: sidecar: %w", err)
	}
	if err = s.writeAtomic(name+metaSuffix, func(w io.Writer) error {
		_, werr := io.Copy(w, bytes.NewReader(raw))
		return werr
	}); err != nil {
		return quire.SaveResult{}, fmt.Errorf("write: sidecar: %w", err)
	}

	return quire.SaveResult{BytesWritten: size, Etag: m.Sha256}, nil
}

// writeAtomic fills a temp file next to name and renames it into place.
func (s *Store) writeAtomic(name string, fill func(io.Writer) error) error {
	tmp := filepath.Join(filepath.Dir(name), tmpFileName())
	t, err := s.root.Create(tmp)
	if err != nil {
		return fmt.Errorf("could not open temp file: %w", err)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !success {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmp); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	if err = fill(t); err != nil {
		return err
	}

	if err = t.Sync(); err != nil {
		return fmt.Errorf("could not sync written file: %w", err)
	}

	if err = s.root.Rename(tmp, name); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	success = true
	return nil
}

// Delete removes the blob and its sidecar. Missing files are not an error.
func (s *Store) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, err := osPath(p)
	if err != nil {
		return err
	}

	for _, f := range []string{name, name + metaSuffix} {
		if rmErr := s.root.Remove(f); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("could not delete file: %w", rmErr)
		}
	}

	return nil
}

// List recursively walks prefix and returns every blob under it, skipping sidecars and
// temp files. A prefix that does not exist yields no entries.
func (s *Store) List(ctx context.Context, prefix string) ([]quire.BlobEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := "."
	if prefix != "" {
		if !quire.IsValidBlobPath(prefix) {
			return nil, fmt.Errorf("%w: invalid prefix: %q", quire.ErrInvalidInput, prefix)
		}
		dir = filepath.FromSlash(prefix)
	}

	var entries []quire.BlobEntry
	err := s.walkDir(ctx, dir, &entries)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return entries, nil
}

func (s *Store) walkDir(ctx context.Context, dir string, entries *[]quire.BlobEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), filepath.ToSlash(dir))
	if err != nil {
		return err
	}

	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return err
		}

		entryPath := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if err := s.walkDir(ctx, entryPath, entries); err != nil {
				return err
			}
			continue
		}

		if strings.HasSuffix(entry.Name(), metaSuffix) || isTmpFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		m, err := s.readMeta(entryPath)
		if err != nil {
			return fmt.Errorf("walk dir: %s: %w", entryPath, err)
		}

		size := info.Size()
		if m.Sha256 != "" {
			size = m.Size
		}

		*entries = append(*entries, quire.BlobEntry{
			Path:        path.Clean(filepath.ToSlash(entryPath)),
			Size:        size,
			ContentType: m.ContentType,
		})
	}

	return nil
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}

func isTmpFile(name string) bool {
	return strings.HasPrefix(name, ".t") && uuid.Validate(strings.TrimPrefix(name, ".t")) == nil
}
