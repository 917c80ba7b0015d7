package sqlite_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/database/sqlite"
	"github.com/stretchr/testify/require"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	return "t" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// setupTestRepo returns a repo on a fresh in-memory database.
func setupTestRepo(t *testing.T) quire.RecordRepo {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", quire.Tables{Records: "records_" + getRandomString(t)})
	require.NoError(t, err, "connect")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx), "migrate")
	return db.GetRepo()
}
