package quire

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// FileType is the kind of document a record holds. It never changes after creation.
type FileType string

const (
	TypeNote       FileType = "note"
	TypeWhiteboard FileType = "whiteboard"
	TypeGraph      FileType = "graph"
	TypeDocument   FileType = "document"
)

// FileTypes lists every allowed type in a stable order.
var FileTypes = []FileType{TypeNote, TypeWhiteboard, TypeGraph, TypeDocument}

func (t FileType) IsValid() bool {
	switch t {
	case TypeNote, TypeWhiteboard, TypeGraph, TypeDocument:
		return true
	default:
		return false
	}
}

func ParseFileType(s string) (FileType, error) {
	ft := FileType(s)
	if !ft.IsValid() {
		return "", fmt.Errorf("parse file type: %w: %q (valid types: note, whiteboard, graph, document)", ErrInvalidInput, s)
	}
	return ft, nil
}

// FileRecord is a metadata row.
type FileRecord struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	OwnerID     string    `json:"owner_id"`
	Type        FileType  `json:"type"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Record is the public view of a FileRecord.
type Record struct {
	ID          string    `json:"id"`
	Type        FileType  `json:"type"`
	OwnerID     string    `json:"ownerId"`
	WorkspaceID string    `json:"workspaceId"`
	Name        string    `json:"name"`
	ContentRef  string    `json:"contentRef"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Unconfirmed bool      `json:"unconfirmed,omitempty"`
}

// ToRecord maps a row to its public shape.
func ToRecord(fr FileRecord) Record {
	return Record{
		ID:          fr.ID.String(),
		Type:        fr.Type,
		OwnerID:     fr.OwnerID,
		WorkspaceID: fr.WorkspaceID,
		Name:        fr.Name,
		ContentRef:  ContentRef(fr.WorkspaceID, fr.ID, fr.Type),
		CreatedAt:   fr.CreatedAt,
		UpdatedAt:   fr.UpdatedAt,
	}
}

// Scope identifies who is asking and where. Every gateway call is filtered by it.
type Scope struct {
	WorkspaceID string
	OwnerID     string
}

type ListQuery struct {
	Scope
	Type   FileType // empty means any type
	Offset int
	Limit  int
}

type ListResult struct {
	Items []FileRecord
	Total int
}

type CreateRecord struct {
	Scope
	Name string
	Type FileType
	// Types restricts Type for endpoint variants. Empty allows every FileType.
	Types []FileType
}

// Blob is a content payload read from blob storage.
type Blob struct {
	Data        []byte
	ContentType string
}

// BlobEntry describes a stored blob without its bytes.
type BlobEntry struct {
	Path        string
	Size        int64
	ContentType string
}

type SaveResult struct {
	BytesWritten int64
	Etag         string
}

// Content is the result of reading a record's blob. Exactly one of JSON or Raw is set.
type Content struct {
	JSON        any
	Raw         []byte
	ContentType string
}

// IsStructured reports whether the blob was parsed as JSON.
func (c Content) IsStructured() bool {
	return c.Raw == nil
}

// Tables holds configurable table names for metadata storage.
type Tables struct {
	Records string `mapstructure:"records"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

func (t Tables) Validate() error {
	if t.Records == "" {
		return errors.New("validate tables: records table name cannot be empty")
	}

	if !IsValidTableName(t.Records) {
		return fmt.Errorf("validate tables: invalid records table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Records)
	}

	return nil
}
