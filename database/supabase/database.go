package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/internal/supaclient"
)

// database is a metadata backend whose schema is owned by Supabase migrations.
type database struct {
	client *supaclient.Lazy
	tables quire.Tables
}

// Connect prepares a Supabase backend. No request is made until the first call.
func Connect(_ context.Context, client *supaclient.Lazy, tables quire.Tables) (*database, error) {
	if client == nil {
		return nil, fmt.Errorf("connect supabase: client is required")
	}
	return &database{client: client, tables: tables}, nil
}

// Ping builds the client and reads one row to prove the API answers.
func (d *database) Ping(ctx context.Context) error {
	return d.probe(ctx, "id")
}

// Migrate is a no-op. The table is created by the project's own SQL migrations.
func (d *database) Migrate(context.Context) error {
	return nil
}

// Validate selects every expected column; PostgREST fails the request if one is missing.
func (d *database) Validate(ctx context.Context) error {
	if err := d.probe(ctx, selectColumns); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

func (d *database) probe(ctx context.Context, columns string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := d.client.Client()
	if err != nil {
		return err
	}
	if _, _, err = c.From(d.tables.Records).Select(columns, "", false).Limit(1, "").Execute(); err != nil {
		return fmt.Errorf("table %s: %w", d.tables.Records, err)
	}
	return nil
}

// GetRepo returns the RecordRepo for this database.
func (d *database) GetRepo() quire.RecordRepo {
	return &repo{client: d.client, table: d.tables.Records, now: time.Now}
}

// Close is a no-op; the HTTP client holds no resources worth releasing.
func (d *database) Close() error {
	return nil
}
