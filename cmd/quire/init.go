package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/quire/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create and validate the metadata schema",
	Long: `Create the records table and its indexes (sqlite, postgres) and validate
its columns. For supabase the schema is managed by the project's migrations, so
init only checks that the table is reachable through PostgREST.

The filesystem storage directory is created when missing.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	b, err := openBackends(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	if err = b.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err = b.db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if err = b.db.Validate(ctx); err != nil {
		return fmt.Errorf("validate database schema: %w", err)
	}

	slog.Info("initialization complete",
		"database", cfg.Database.Type,
		"table", cfg.Database.Tables.Records,
		"storage", cfg.Storage.Type,
	)
	return nil
}
