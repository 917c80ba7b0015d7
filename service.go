package quire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordRepo defines the metadata store gateway. Every request-path method is
// filtered by owner; Lookup is the only unscoped read and exists for maintenance.
//
// All methods accept a context for cancellation and timeout control.
// Implementations should respect context cancellation and return appropriate errors.
type RecordRepo interface {
	// Insert persists a new row. The id is generated by the caller.
	//
	// Returns:
	//   - FileRecord: the committed row with store-assigned timestamps
	//   - error: ErrNoEcho if the insert went through but the row could not be read back,
	//     or any other database error
	Insert(ctx context.Context, rec FileRecord) (FileRecord, error)

	// Get returns the row matching id within scope.
	//
	// Returns:
	//   - error: ErrNotFound if no row matches (id, workspace, owner)
	Get(ctx context.Context, scope Scope, id uuid.UUID) (FileRecord, error)

	// List returns rows in scope, optionally narrowed by type, ordered by created_at
	// descending, windowed by q.Offset and q.Limit. Total counts every matching row.
	List(ctx context.Context, q ListQuery) (ListResult, error)

	// Rename updates the name of the row matching id within scope and bumps updated_at.
	//
	// Returns:
	//   - error: ErrNotFound if no row matches
	Rename(ctx context.Context, scope Scope, id uuid.UUID, name string) (FileRecord, error)

	// Delete removes rows matching (id, owner). Deleting zero rows is not an error.
	Delete(ctx context.Context, id uuid.UUID, ownerID string) (int64, error)

	// Exists reports whether a row matching (id, owner) is still visible.
	Exists(ctx context.Context, id uuid.UUID, ownerID string) (bool, error)

	// Lookup returns the row with the given id regardless of owner.
	//
	// Returns:
	//   - error: ErrNotFound if no row has this id
	Lookup(ctx context.Context, id uuid.UUID) (FileRecord, error)
}

// BlobStorage defines the content store gateway. Paths come from CanonicalPath and LegacyPath.
//
// Implementations can use the local filesystem, Supabase Storage, or any other object store.
type BlobStorage interface {
	// Exists reports whether a blob is stored at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Read returns the blob bytes and content type.
	//
	// Returns:
	//   - error: ErrNotFound if nothing is stored at path
	Read(ctx context.Context, path string) (Blob, error)

	// Write stores content at path, replacing whatever was there.
	Write(ctx context.Context, path string, content io.Reader, contentType string) (SaveResult, error)

	// Delete removes the blob at path. Deleting an absent blob is not an error.
	Delete(ctx context.Context, path string) error

	// List returns every blob whose path starts with prefix.
	//
	// Warning: This walks the whole prefix and is meant for maintenance, not for request paths.
	List(ctx context.Context, prefix string) ([]BlobEntry, error)
}

const (
	// DefaultContentType is assumed for content writes that do not declare one.
	DefaultContentType = "application/json"
)

type Service struct {
	repo    RecordRepo
	storage BlobStorage
	now     func() time.Time
	newID   func() uuid.UUID
}

// ServiceConfig holds optional hooks for Service. Zero values use the wall clock and uuid.New.
type ServiceConfig struct {
	Now   func() time.Time
	NewID func() uuid.UUID
}

func NewService(repo RecordRepo, storage BlobStorage, cfg ServiceConfig) (*Service, error) {
	if repo == nil {
		return nil, errors.New("new service: record repo is required")
	}
	if storage == nil {
		return nil, errors.New("new service: blob storage is required")
	}

	s := &Service{
		repo:    repo,
		storage: storage,
		now:     cfg.Now,
		newID:   cfg.NewID,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.New
	}
	return s, nil
}

// storeErr classifies a gateway error. ErrNotFound passes through untouched,
// anything else becomes an ErrStoreFailure with the original error kept in the chain.
func storeErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}

// Create validates the request, generates the record id locally and inserts the row.
//
// The id is generated before the insert so that the content path is known even when the
// store cannot echo the committed row. In that case the record is still reported as created,
// with Unconfirmed set and timestamps taken from the local clock.
//
// Error types returned:
//   - ErrUnauthenticated: no owner in scope
//   - ErrInvalidInput: bad workspace id, empty name, type not in FileTypes or not in obj.Types
//   - ErrStoreFailure: the insert failed; nothing was created
func (s *Service) Create(ctx context.Context, obj CreateRecord) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, fmt.Errorf("create record: %w", err)
	}

	if err := obj.Scope.Validate(); err != nil {
		return Record{}, fmt.Errorf("create record: %w", err)
	}

	name, err := NormalizeName(obj.Name)
	if err != nil {
		return Record{}, fmt.Errorf("create record: %w", err)
	}

	if err = checkType(obj.Type, obj.Types); err != nil {
		return Record{}, fmt.Errorf("create record: %w", err)
	}

	id := s.newID()
	if !IsValidID(id.String()) {
		return Record{}, fmt.Errorf("create record: %w: generated id %s", ErrInvalidInput, id)
	}

	row := FileRecord{
		ID:          id,
		WorkspaceID: obj.WorkspaceID,
		OwnerID:     obj.OwnerID,
		Type:        obj.Type,
		Name:        name,
	}

	committed, err := s.repo.Insert(ctx, row)
	switch {
	case err == nil:
		return ToRecord(committed), nil
	case errors.Is(err, ErrNoEcho):
		slog.WarnContext(ctx, "record insert not echoed, returning unconfirmed record", "id", id, "workspace", obj.WorkspaceID)
		now := s.now().UTC()
		row.CreatedAt = now
		row.UpdatedAt = now
		rec := ToRecord(row)
		rec.Unconfirmed = true
		return rec, nil
	default:
		return Record{}, storeErr("create record", err)
	}
}

// List returns a page of the caller's records in a workspace, newest first.
func (s *Service) List(ctx context.Context, scope Scope, t FileType, page Page) ([]Record, PageMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, PageMeta{}, fmt.Errorf("list records: %w", err)
	}

	if err := scope.Validate(); err != nil {
		return nil, PageMeta{}, fmt.Errorf("list records: %w", err)
	}

	if t != "" && !t.IsValid() {
		return nil, PageMeta{}, fmt.Errorf("list records: %w: invalid type: %q", ErrInvalidInput, t)
	}

	page = NewPage(page.Start, page.Size)
	res, err := s.repo.List(ctx, ListQuery{
		Scope:  scope,
		Type:   t,
		Offset: page.Start,
		Limit:  page.Size,
	})
	if err != nil {
		return nil, PageMeta{}, storeErr("list records", err)
	}

	records := make([]Record, 0, len(res.Items))
	for _, item := range res.Items {
		records = append(records, ToRecord(item))
	}

	return records, page.Meta(res.Total, len(records)), nil
}

// Rename changes a record's display name.
func (s *Service) Rename(ctx context.Context, scope Scope, id string, name string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, fmt.Errorf("rename record: %w", err)
	}

	rid, err := parseScoped(scope, id)
	if err != nil {
		return Record{}, fmt.Errorf("rename record: %w", err)
	}

	name, err = NormalizeName(name)
	if err != nil {
		return Record{}, fmt.Errorf("rename record: %w", err)
	}

	row, err := s.repo.Rename(ctx, scope, rid, name)
	if err != nil {
		return Record{}, storeErr("rename record", err)
	}

	return ToRecord(row), nil
}

// ReadContent returns the content of a record the caller owns.
//
// The record must exist in scope (and be of type want when want is set), otherwise ErrNotFound.
// Candidate paths from ReadPaths are tried in order; a blob missing from all of them is also
// ErrNotFound. JSON content is parsed, and content that claims to be JSON but does not parse is
// returned raw with its stored content type.
func (s *Service) ReadContent(ctx context.Context, scope Scope, id string, want FileType) (Content, error) {
	if err := ctx.Err(); err != nil {
		return Content{}, fmt.Errorf("read content: %w", err)
	}

	rid, err := parseScoped(scope, id)
	if err != nil {
		return Content{}, fmt.Errorf("read content: %w", err)
	}

	row, err := s.owned(ctx, scope, rid, want)
	if err != nil {
		return Content{}, fmt.Errorf("read content: %w", err)
	}

	for _, p := range ReadPaths(row.WorkspaceID, row.ID, row.Type) {
		exists, existsErr := s.storage.Exists(ctx, p)
		if existsErr != nil {
			return Content{}, storeErr("read content", existsErr)
		}
		if !exists {
			continue
		}

		blob, readErr := s.storage.Read(ctx, p)
		if errors.Is(readErr, ErrNotFound) {
			// deleted between the existence check and the read
			continue
		}
		if readErr != nil {
			return Content{}, storeErr("read content", readErr)
		}

		return decodeContent(blob), nil
	}

	return Content{}, fmt.Errorf("read content: %w: no content stored for %s", ErrNotFound, rid)
}

// WriteContent replaces the content of a record the caller owns at its canonical path.
// An empty contentType is stored as DefaultContentType.
func (s *Service) WriteContent(ctx context.Context, scope Scope, id string, want FileType, content io.Reader, contentType string) (SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return SaveResult{}, fmt.Errorf("write content: %w", err)
	}

	rid, err := parseScoped(scope, id)
	if err != nil {
		return SaveResult{}, fmt.Errorf("write content: %w", err)
	}

	row, err := s.owned(ctx, scope, rid, want)
	if err != nil {
		return SaveResult{}, fmt.Errorf("write content: %w", err)
	}

	if contentType == "" {
		contentType = DefaultContentType
	}

	res, err := s.storage.Write(ctx, CanonicalPath(row.WorkspaceID, row.ID, row.Type), content, contentType)
	if err != nil {
		return SaveResult{}, storeErr("write content", err)
	}

	return res, nil
}

// Delete removes a record and its content.
//
// The row is looked up by id first. A row the caller owns in another workspace, or of
// another type when want is set, is ErrNotFound and nothing is touched. A row owned by
// someone else keeps its content; the row delete below then matches nothing. Otherwise
// content goes first, best effort, at the canonical and the legacy path of the row's own
// workspace.
//
// The row is then deleted by (id, owner) and a verification read decides the outcome: if a
// matching row is still visible the delete is reported as ErrNotFound. Deleting an id that
// does not exist, or that was already deleted, reports success because verification finds
// nothing left.
func (s *Service) Delete(ctx context.Context, scope Scope, id string, want FileType) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	rid, err := parseScoped(scope, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	row, err := s.repo.Lookup(ctx, rid)
	switch {
	case errors.Is(err, ErrNotFound):
		// no content to remove; verification below decides
	case err != nil:
		return storeErr("delete record: lookup", err)
	case row.OwnerID != scope.OwnerID:
		slog.WarnContext(ctx, "delete of a record owned by someone else, keeping content", "id", rid)
	case row.WorkspaceID != scope.WorkspaceID:
		return fmt.Errorf("delete record: %w: %s is not in workspace %s", ErrNotFound, rid, scope.WorkspaceID)
	case want != "" && row.Type != want:
		return fmt.Errorf("delete record: %w: %s is not a %s", ErrNotFound, rid, want)
	default:
		for _, p := range []string{CanonicalPath(row.WorkspaceID, rid, TypeNote), LegacyPath(row.WorkspaceID, rid)} {
			if delErr := s.storage.Delete(ctx, p); delErr != nil {
				slog.WarnContext(ctx, "best-effort content delete failed", "path", p, "error", delErr)
			}
		}
	}

	if _, err = s.repo.Delete(ctx, rid, scope.OwnerID); err != nil {
		return storeErr("delete record", err)
	}

	remains, err := s.repo.Exists(ctx, rid, scope.OwnerID)
	if err != nil {
		return storeErr("delete record: verify", err)
	}
	if remains {
		return fmt.Errorf("delete record: %w: %s was not deleted", ErrNotFound, rid)
	}

	return nil
}

// owned fetches the row in scope and applies the optional type constraint.
func (s *Service) owned(ctx context.Context, scope Scope, id uuid.UUID, want FileType) (FileRecord, error) {
	row, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return FileRecord{}, storeErr("get record", err)
	}
	if want != "" && row.Type != want {
		return FileRecord{}, fmt.Errorf("%w: %s is not a %s", ErrNotFound, id, want)
	}
	return row, nil
}

func parseScoped(scope Scope, id string) (uuid.UUID, error) {
	if err := scope.Validate(); err != nil {
		return uuid.Nil, err
	}
	if !IsValidID(id) {
		return uuid.Nil, fmt.Errorf("%w: invalid record id: %q", ErrInvalidInput, id)
	}
	rid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid record id: %v", ErrInvalidInput, err)
	}
	return rid, nil
}

// IsJSONContentType reports whether ct names a JSON media type, including +json suffixes.
func IsJSONContentType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func decodeContent(b Blob) Content {
	if IsJSONContentType(b.ContentType) {
		var v any
		dec := json.NewDecoder(bytes.NewReader(b.Data))
		dec.UseNumber()
		if err := dec.Decode(&v); err == nil && errors.Is(dec.Decode(&struct{}{}), io.EOF) {
			return Content{JSON: v, ContentType: b.ContentType}
		}
	}

	raw := b.Data
	if raw == nil {
		raw = []byte{}
	}
	return Content{Raw: raw, ContentType: b.ContentType}
}
