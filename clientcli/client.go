package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// maxListPages stops --all from looping forever against a misbehaving server.
	maxListPages = 10000
)

// Client performs operations against a quire server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()

	c := &Client{
		config: &Config{
			Endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
			Token:    cfg.Token,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// do sends an authenticated request and returns the response for any 2xx status.
// Other statuses are turned into an *APIError and the body is closed.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.Endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, parseServerError(resp.StatusCode, data)
	}

	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// Health checks that the server is up. It needs no token.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", nil, nil)
}

// List fetches records. If opts.All is true, paginates through all results.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if !opts.All {
		return c.listPage(ctx, opts)
	}

	all := &ListResult{Data: []Record{}}
	for range maxListPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := c.listPage(ctx, opts)
		if err != nil {
			return nil, err
		}

		all.Data = append(all.Data, page.Data...)
		all.Pagination = page.Pagination

		if !page.Pagination.HasMore || len(page.Data) == 0 {
			break
		}
		opts.PageStart += len(page.Data)
	}

	all.Pagination.PageStart = 0
	all.Pagination.PageSize = len(all.Data)
	all.Pagination.HasMore = false
	return all, nil
}

func (c *Client) listPage(ctx context.Context, opts ListOptions) (*ListResult, error) {
	query := url.Values{}
	if opts.PageStart > 0 {
		query.Set("pageStart", strconv.Itoa(opts.PageStart))
	}
	if opts.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(opts.PageSize))
	}

	path := "/files/notes"
	if opts.Workspace != "" {
		path = "/workspace/" + url.PathEscape(opts.Workspace) + "/files"
		if opts.Type != "" {
			query.Set("type", opts.Type)
		}
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result ListResult
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if result.Data == nil {
		result.Data = []Record{}
	}
	return &result, nil
}

// Create creates a record.
func (c *Client) Create(ctx context.Context, opts CreateOptions) (*Record, error) {
	if strings.TrimSpace(opts.Name) == "" {
		return nil, fmt.Errorf("create: %w", ErrNameRequired)
	}

	body := map[string]string{"name": opts.Name, "type": opts.Type}
	path := "/files"
	if opts.Workspace != "" {
		path = "/workspace/" + url.PathEscape(opts.Workspace) + "/files"
	}

	var rec Record
	if err := c.doJSON(ctx, http.MethodPost, path, body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Rename changes a record's name.
func (c *Client) Rename(ctx context.Context, opts RenameOptions) (*Record, error) {
	if opts.ID == "" {
		return nil, fmt.Errorf("rename: %w", ErrEmptyID)
	}
	if opts.Workspace == "" {
		return nil, fmt.Errorf("rename: %w", ErrWorkspaceRequired)
	}

	path := "/workspace/" + url.PathEscape(opts.Workspace) + "/files/" + url.PathEscape(opts.ID)

	var rec Record
	if err := c.doJSON(ctx, http.MethodPatch, path, map[string]string{"name": opts.Name}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// recordPath builds the record route for opts.
func recordPath(opts ContentOptions) (string, error) {
	if opts.ID == "" {
		return "", ErrEmptyID
	}

	kind := "files"
	if opts.Note {
		kind = "notes"
	}

	switch {
	case opts.Workspace != "":
		return "/workspace/" + url.PathEscape(opts.Workspace) + "/" + kind + "/" + url.PathEscape(opts.ID), nil
	case opts.Note:
		return "/files/notes/" + url.PathEscape(opts.ID), nil
	default:
		return "", ErrWorkspaceRequired
	}
}

// Get downloads a record's content.
// If opts.LocalPath is empty or "-", the content is returned via the io.ReadCloser and must
// be closed by the caller. Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) Get(ctx context.Context, opts GetOptions) (*GetResult, io.ReadCloser, error) {
	path, err := recordPath(opts.ContentOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("get: %w", err)
	}

	resp, err := c.do(ctx, http.MethodGet, path+"/content", nil, "")
	if err != nil {
		return nil, nil, err
	}

	result := &GetResult{
		ID:          opts.ID,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	if opts.LocalPath == "" || opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}
	defer func() { _ = resp.Body.Close() }()

	result.LocalPath = opts.LocalPath
	if dir := filepath.Dir(opts.LocalPath); dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, err := os.Create(opts.LocalPath) //#nosec G304 -- LocalPath is user-provided input
	if err != nil {
		return nil, nil, fmt.Errorf("create file: %w", err)
	}

	written, copyErr := io.Copy(file, resp.Body)
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}
	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// Put replaces a record's content with a local file.
func (c *Client) Put(ctx context.Context, opts PutOptions) (*PutResult, error) {
	path, err := recordPath(opts.ContentOptions)
	if err != nil {
		return nil, fmt.Errorf("put: %w", err)
	}

	file, err := os.Open(opts.LocalPath) //#nosec G304 -- LocalPath is user-provided input
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	contentType := opts.ContentType
	if contentType == "" {
		mt, detectErr := mimetype.DetectReader(file)
		if detectErr != nil {
			return nil, fmt.Errorf("detect content type: %w", detectErr)
		}
		contentType = mt.String()
		if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
			return nil, fmt.Errorf("rewind file: %w", seekErr)
		}
	}

	resp, err := c.do(ctx, http.MethodPut, path+"/content", file, contentType)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()

	return &PutResult{
		ID:          opts.ID,
		LocalPath:   opts.LocalPath,
		ContentType: contentType,
		ETag:        strings.Trim(resp.Header.Get("ETag"), `"`),
		Size:        info.Size(),
	}, nil
}

// Delete deletes one or more records.
// Continues on error, collecting results for all ids.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.IDs) == 0 {
		return nil, ErrNoIDs
	}

	results := make([]DeleteResult, 0, len(opts.IDs))
	for _, id := range opts.IDs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := DeleteResult{ID: id}
		path, err := recordPath(ContentOptions{Workspace: opts.Workspace, ID: id, Note: opts.Note})
		if err == nil {
			err = c.doJSON(ctx, http.MethodDelete, path, nil, nil)
		}
		result.Deleted = err == nil
		result.Err = err
		results = append(results, result)
	}

	return results, nil
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}
