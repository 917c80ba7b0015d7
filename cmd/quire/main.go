package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/quire/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "quire",
	Short:   "Workspace document service",
	Long: `Quire stores user-owned notes and documents. Record metadata lives in a
relational store (SQLite, PostgreSQL or Supabase) and content lives in a blob
store (local filesystem or Supabase Storage).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		files, err := cmd.Flags().GetStringArray("config")
		if err != nil {
			return err
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringArray("config", nil, "config file path, repeatable; later files override earlier ones (default: ./config.yaml)")
	pf.String("db-type", "", "database type: sqlite, postgres, supabase (env: QUIRE_DATABASE_TYPE)")
	pf.String("db-dsn", "", "database connection string (env: QUIRE_DATABASE_DSN)")
	pf.String("storage-type", "", "blob storage type: filesystem, supabase (env: QUIRE_STORAGE_TYPE)")
	pf.String("storage-path", "", "filesystem storage directory (env: QUIRE_STORAGE_PATH)")
	pf.String("log-level", "", "log level: debug, info, warn, error (env: QUIRE_LOG_LEVEL)")
	pf.String("log-format", "", "log format: text, json (env: QUIRE_LOG_FORMAT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
