package quire

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	blobRoot    = "workspace"
	notesSubdir = "notes"
	filesSubdir = "files"
)

func subdirFor(t FileType) string {
	if t == TypeNote {
		return notesSubdir
	}
	return filesSubdir
}

// CanonicalPath is where a record's content is written.
func CanonicalPath(workspaceID string, id uuid.UUID, t FileType) string {
	return blobRoot + "/" + workspaceID + "/" + subdirFor(t) + "/" + id.String()
}

// LegacyPath is the type-agnostic location used before notes got their own subpath.
func LegacyPath(workspaceID string, id uuid.UUID) string {
	return blobRoot + "/" + workspaceID + "/" + filesSubdir + "/" + id.String()
}

// ReadPaths returns the candidate blob paths for a record, in the order they must be tried.
// The canonical path always comes first and no path appears twice.
func ReadPaths(workspaceID string, id uuid.UUID, t FileType) []string {
	canonical := CanonicalPath(workspaceID, id, t)
	legacy := LegacyPath(workspaceID, id)
	if canonical == legacy {
		return []string{canonical}
	}
	return []string{canonical, legacy}
}

// ContentRef is the public locator for a record's content endpoint.
func ContentRef(workspaceID string, id uuid.UUID, t FileType) string {
	return "/" + CanonicalPath(workspaceID, id, t) + "/content"
}

// BlobAddress is a blob path split back into its parts.
type BlobAddress struct {
	WorkspaceID string
	Subdir      string
	ID          uuid.UUID
}

// ParseBlobPath reverses CanonicalPath and LegacyPath.
func ParseBlobPath(p string) (BlobAddress, error) {
	parts := strings.Split(p, "/")
	if len(parts) != 4 || parts[0] != blobRoot || parts[1] == "" {
		return BlobAddress{}, fmt.Errorf("parse blob path: %w: %s", ErrInvalidInput, p)
	}

	if parts[2] != notesSubdir && parts[2] != filesSubdir {
		return BlobAddress{}, fmt.Errorf("parse blob path: %w: unknown subdir %q", ErrInvalidInput, parts[2])
	}

	id, err := uuid.Parse(parts[3])
	if err != nil {
		return BlobAddress{}, fmt.Errorf("parse blob path: %w: %v", ErrInvalidInput, err)
	}

	return BlobAddress{WorkspaceID: parts[1], Subdir: parts[2], ID: id}, nil
}
