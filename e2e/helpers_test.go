package e2e_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/auth"
	"github.com/sagarc03/quire/clientcli"
	"github.com/sagarc03/quire/database"
	"github.com/sagarc03/quire/filesystem"
	quirehttp "github.com/sagarc03/quire/http"
	"github.com/sagarc03/quire/keybackend"
	"github.com/stretchr/testify/require"
)

const (
	aliceToken = "token-alice"
	bobToken   = "token-bob"
	alice      = "alice"
	bob        = "bob"

	teamWorkspace = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
)

// stack is a running quire server backed by real stores.
type stack struct {
	server  *httptest.Server
	service *quire.Service
	blobs   *filesystem.Store
	db      database.Database
}

// startStack migrates the database, opens a filesystem blob store in a temp dir and
// serves the full handler. Tokens for alice and bob are accepted.
func startStack(t *testing.T, dbType, dsn string) *stack {
	t.Helper()
	ctx := context.Background()

	db, err := database.Connect(ctx, database.Config{
		Type:   dbType,
		DSN:    dsn,
		Tables: quire.Tables{Records: "workspace_files"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Validate(ctx))

	blobDir := filepath.Join(t.TempDir(), "blobs")
	require.NoError(t, os.MkdirAll(blobDir, 0o750))
	root, err := os.OpenRoot(blobDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	blobs := filesystem.NewFileStorage(root)

	service, err := quire.NewService(db.GetRepo(), blobs, quire.ServiceConfig{})
	require.NoError(t, err)

	tokens := keybackend.NewMapTokenStore(map[string]string{aliceToken: alice, bobToken: bob})
	handler := quirehttp.NewHandler(&quirehttp.HandlerConfig{
		Verifier: auth.NewStaticVerifier(tokens),
		Metrics:  quirehttp.NewMetrics("quire_e2e"),
	}, service)

	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)

	return &stack{server: server, service: service, blobs: blobs, db: db}
}

func startSQLiteStack(t *testing.T) *stack {
	t.Helper()
	return startStack(t, "sqlite", filepath.Join(t.TempDir(), "quire.db"))
}

// client returns an API client for the given bearer token.
func (s *stack) client(t *testing.T, token string) *clientcli.Client {
	t.Helper()

	c, err := clientcli.New(&clientcli.Config{Endpoint: s.server.URL, Token: token})
	require.NoError(t, err)
	return c
}

// writeFile creates a file under t.TempDir with the given content.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path) //#nosec G304 -- test temp file
	require.NoError(t, err)
	return string(data)
}
