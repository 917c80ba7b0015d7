package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/quire/config"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete content blobs that no record references",
	Long: `Scan blob storage for content whose record no longer exists and delete it.

Deleting a record removes its content first, so a failed content delete leaves
a blob with no row behind. Run sweep periodically to reclaim that space.
Use --dry-run to list orphans without deleting them.`,
	RunE: runSweep,
}

var sweepDryRun bool

func init() {
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "report orphans without deleting them")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Service.CleanupTimeout)*time.Second)
	defer cancel()

	b, err := openBackends(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	service, err := b.service()
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	slog.Info("starting sweep", "dry_run", sweepDryRun)

	res, err := service.Sweep(ctx, sweepDryRun)
	for _, p := range res.Orphans {
		slog.Info("orphan", "path", p, "deleted", !sweepDryRun)
	}
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	slog.Info("sweep complete", "scanned", res.Scanned, "orphans", len(res.Orphans), "deleted", res.Deleted)
	return nil
}
