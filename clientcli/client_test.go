package clientcli_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sagarc03/quire/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "secret-token"

func newTestClient(t *testing.T, handler http.HandlerFunc) *clientcli.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL + "/", Token: testToken})
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func sampleRecord(id, name string) map[string]any {
	return map[string]any{
		"id":          id,
		"type":        "note",
		"ownerId":     "alice",
		"workspaceId": "alice",
		"name":        name,
		"contentRef":  "workspace/alice/notes/" + id,
		"createdAt":   time.Now().UTC().Format(time.RFC3339),
		"updatedAt":   time.Now().UTC().Format(time.RFC3339),
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := clientcli.New(nil)
		assert.ErrorIs(t, err, clientcli.ErrConfigRequired)
	})

	t.Run("empty endpoint uses default", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("with options", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{},
			clientcli.WithHTTPClient(&http.Client{}),
			clientcli.WithTimeout(time.Second),
		)
		require.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestClient_Health(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]string{"status": "ok"})
	})

	assert.NoError(t, client.Health(context.Background()))
}

func TestClient_List(t *testing.T) {
	t.Run("personal notes", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/files/notes", r.URL.Path)
			assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
			assert.Equal(t, "5", r.URL.Query().Get("pageSize"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"data":       []any{sampleRecord("n1", "First")},
				"pagination": map[string]any{"total": 1, "pageSize": 5, "pageStart": 0, "hasMore": false},
			})
		})

		result, err := client.List(context.Background(), clientcli.ListOptions{PageSize: 5})
		require.NoError(t, err)
		require.Len(t, result.Data, 1)
		assert.Equal(t, "First", result.Data[0].Name)
		assert.Equal(t, 1, result.Pagination.Total)
	})

	t.Run("workspace with type filter", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/workspace/team/files", r.URL.Path)
			assert.Equal(t, "document", r.URL.Query().Get("type"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"data":       []any{},
				"pagination": map[string]any{"total": 0, "pageSize": 10, "pageStart": 0, "hasMore": false},
			})
		})

		result, err := client.List(context.Background(), clientcli.ListOptions{Workspace: "team", Type: "document"})
		require.NoError(t, err)
		assert.Empty(t, result.Data)
	})

	t.Run("all pages", func(t *testing.T) {
		calls := 0
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if r.URL.Query().Get("pageStart") == "" {
				writeJSON(t, w, http.StatusOK, map[string]any{
					"data":       []any{sampleRecord("a", "A"), sampleRecord("b", "B")},
					"pagination": map[string]any{"total": 3, "pageSize": 2, "pageStart": 0, "hasMore": true},
				})
				return
			}
			assert.Equal(t, "2", r.URL.Query().Get("pageStart"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"data":       []any{sampleRecord("c", "C")},
				"pagination": map[string]any{"total": 3, "pageSize": 2, "pageStart": 2, "hasMore": false},
			})
		})

		result, err := client.List(context.Background(), clientcli.ListOptions{PageSize: 2, All: true})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Len(t, result.Data, 3)
		assert.Equal(t, 3, result.Pagination.Total)
		assert.False(t, result.Pagination.HasMore)
	})

	t.Run("unauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized", "message": "missing token"})
		})

		_, err := client.List(context.Background(), clientcli.ListOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, clientcli.ErrUnauthorized)

		var apiErr *clientcli.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "unauthorized", apiErr.Code)
		assert.Equal(t, "missing token", apiErr.Message)
	})
}

func TestClient_Create(t *testing.T) {
	t.Run("personal", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/files", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Untitled", body["name"])
			assert.Equal(t, "note", body["type"])

			writeJSON(t, w, http.StatusCreated, sampleRecord("n1", "Untitled"))
		})

		rec, err := client.Create(context.Background(), clientcli.CreateOptions{Name: "Untitled", Type: "note"})
		require.NoError(t, err)
		assert.Equal(t, "n1", rec.ID)
		assert.Equal(t, "alice", rec.OwnerID)
	})

	t.Run("workspace", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/workspace/team/files", r.URL.Path)
			writeJSON(t, w, http.StatusCreated, sampleRecord("f1", "Plan"))
		})

		_, err := client.Create(context.Background(), clientcli.CreateOptions{Workspace: "team", Name: "Plan", Type: "document"})
		require.NoError(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)

		_, err = client.Create(context.Background(), clientcli.CreateOptions{Name: "  "})
		assert.ErrorIs(t, err, clientcli.ErrNameRequired)
	})
}

func TestClient_Rename(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/workspace/team/files/f1", r.URL.Path)
			writeJSON(t, w, http.StatusOK, sampleRecord("f1", "Renamed"))
		})

		rec, err := client.Rename(context.Background(), clientcli.RenameOptions{Workspace: "team", ID: "f1", Name: "Renamed"})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", rec.Name)
	})

	t.Run("workspace required", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)

		_, err = client.Rename(context.Background(), clientcli.RenameOptions{ID: "f1", Name: "x"})
		assert.ErrorIs(t, err, clientcli.ErrWorkspaceRequired)
	})

	t.Run("not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "not found"})
		})

		_, err := client.Rename(context.Background(), clientcli.RenameOptions{Workspace: "team", ID: "f1", Name: "x"})
		assert.ErrorIs(t, err, clientcli.ErrNotFound)
	})
}

func TestClient_Get(t *testing.T) {
	handler := func(t *testing.T, wantPath string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, wantPath, r.URL.Path)
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, "hello")
		}
	}

	t.Run("to stdout", func(t *testing.T) {
		client := newTestClient(t, handler(t, "/files/notes/n1/content"))

		result, body, err := client.Get(context.Background(), clientcli.GetOptions{
			ContentOptions: clientcli.ContentOptions{ID: "n1", Note: true},
		})
		require.NoError(t, err)
		require.NotNil(t, body)
		defer func() { _ = body.Close() }()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		assert.Equal(t, "-", result.LocalPath)
		assert.Equal(t, "text/plain", result.ContentType)
	})

	t.Run("to file", func(t *testing.T) {
		client := newTestClient(t, handler(t, "/workspace/team/files/f1/content"))
		dest := filepath.Join(t.TempDir(), "nested", "out.txt")

		result, body, err := client.Get(context.Background(), clientcli.GetOptions{
			ContentOptions: clientcli.ContentOptions{Workspace: "team", ID: "f1"},
			LocalPath:      dest,
		})
		require.NoError(t, err)
		assert.Nil(t, body)
		assert.Equal(t, int64(5), result.Size)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("workspace note route", func(t *testing.T) {
		client := newTestClient(t, handler(t, "/workspace/team/notes/n1/content"))

		_, body, err := client.Get(context.Background(), clientcli.GetOptions{
			ContentOptions: clientcli.ContentOptions{Workspace: "team", ID: "n1", Note: true},
		})
		require.NoError(t, err)
		_ = body.Close()
	})

	t.Run("generic record needs workspace", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)

		_, _, err = client.Get(context.Background(), clientcli.GetOptions{
			ContentOptions: clientcli.ContentOptions{ID: "f1"},
		})
		assert.ErrorIs(t, err, clientcli.ErrWorkspaceRequired)
	})
}

func TestClient_Put(t *testing.T) {
	t.Run("detects content type", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/files/notes/n1/content", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"blocks":[]}`, string(body))

			w.Header().Set("ETag", `"abc123"`)
			w.WriteHeader(http.StatusNoContent)
		})

		src := filepath.Join(t.TempDir(), "note.json")
		require.NoError(t, os.WriteFile(src, []byte(`{"blocks":[]}`), 0o600))

		result, err := client.Put(context.Background(), clientcli.PutOptions{
			ContentOptions: clientcli.ContentOptions{ID: "n1", Note: true},
			LocalPath:      src,
		})
		require.NoError(t, err)
		assert.Equal(t, "abc123", result.ETag)
		assert.Equal(t, "application/json", result.ContentType)
		assert.Equal(t, int64(13), result.Size)
	})

	t.Run("explicit content type", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "text/markdown", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNoContent)
		})

		src := filepath.Join(t.TempDir(), "doc.md")
		require.NoError(t, os.WriteFile(src, []byte("# Title"), 0o600))

		_, err := client.Put(context.Background(), clientcli.PutOptions{
			ContentOptions: clientcli.ContentOptions{Workspace: "team", ID: "f1"},
			LocalPath:      src,
			ContentType:    "text/markdown",
		})
		require.NoError(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)

		_, err = client.Put(context.Background(), clientcli.PutOptions{
			ContentOptions: clientcli.ContentOptions{ID: "n1", Note: true},
			LocalPath:      filepath.Join(t.TempDir(), "missing"),
		})
		assert.Error(t, err)
	})
}

func TestClient_Delete(t *testing.T) {
	t.Run("continues past failures", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			if r.URL.Path == "/workspace/team/files/missing" {
				writeJSON(t, w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "not found"})
				return
			}
			writeJSON(t, w, http.StatusOK, map[string]bool{"success": true})
		})

		results, err := client.Delete(context.Background(), clientcli.DeleteOptions{
			Workspace: "team",
			IDs:       []string{"f1", "missing", "f2"},
		})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.True(t, results[0].Deleted)
		assert.False(t, results[1].Deleted)
		assert.ErrorIs(t, results[1].Err, clientcli.ErrNotFound)
		assert.True(t, results[2].Deleted)
		assert.True(t, clientcli.HasDeleteErrors(results))
	})

	t.Run("no ids", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)

		_, err = client.Delete(context.Background(), clientcli.DeleteOptions{})
		assert.ErrorIs(t, err, clientcli.ErrNoIDs)
	})
}

func TestAPIError(t *testing.T) {
	err := &clientcli.APIError{StatusCode: http.StatusNotFound, Code: "not_found", Message: "gone"}
	assert.True(t, errors.Is(err, clientcli.ErrNotFound))
	assert.False(t, errors.Is(err, clientcli.ErrUnauthorized))
	assert.Equal(t, "server error: 404 not_found: gone", err.Error())

	raw := &clientcli.APIError{StatusCode: http.StatusBadGateway, Body: "upstream"}
	assert.Equal(t, "server error: 502 - upstream", raw.Error())
}
