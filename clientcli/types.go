package clientcli

import "time"

// Record mirrors the server's public record.
type Record struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	OwnerID     string    `json:"ownerId"`
	WorkspaceID string    `json:"workspaceId"`
	Name        string    `json:"name"`
	ContentRef  string    `json:"contentRef"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Unconfirmed bool      `json:"unconfirmed,omitempty"`
}

// Pagination mirrors the server's page metadata.
type Pagination struct {
	Total     int  `json:"total"`
	PageSize  int  `json:"pageSize"`
	PageStart int  `json:"pageStart"`
	HasMore   bool `json:"hasMore"`
}

// ListOptions configures a list operation. An empty Workspace lists the caller's
// personal notes.
type ListOptions struct {
	Workspace string
	Type      string
	PageStart int
	PageSize  int
	All       bool // auto-paginate through all results
}

// ListResult contains one or more pages of records.
type ListResult struct {
	Data       []Record   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateOptions configures a create operation. An empty Workspace creates in the
// caller's personal workspace.
type CreateOptions struct {
	Workspace string
	Name      string
	Type      string
}

type RenameOptions struct {
	Workspace string
	ID        string
	Name      string
}

// ContentOptions addresses a record's content. Note selects the note-only routes,
// which are the only content routes available without a workspace.
type ContentOptions struct {
	Workspace string
	ID        string
	Note      bool
}

// GetOptions configures a content download.
type GetOptions struct {
	ContentOptions
	LocalPath string // empty or "-" = stdout
}

// GetResult describes downloaded content.
type GetResult struct {
	ID          string `json:"id"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// PutOptions configures a content upload.
type PutOptions struct {
	ContentOptions
	LocalPath   string
	ContentType string // optional, detected from the file if empty
}

// PutResult describes uploaded content.
type PutResult struct {
	ID          string `json:"id"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type"`
	ETag        string `json:"etag"`
	Size        int64  `json:"size_bytes"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Workspace string
	IDs       []string
	Note      bool
}

// DeleteResult represents the result of deleting a single record.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// serverError mirrors the JSON error body.
type serverError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
