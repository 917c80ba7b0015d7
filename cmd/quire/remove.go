package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove [flags] <id1> [id2] ...",
	Short: "Delete records and their content",
	Long: `Delete records the owner holds in a workspace, content first and then the row.

Examples:
  # Remove a record from the owner's personal workspace
  quire remove --owner 5b0e... 9b2f6a4e-1c3d-4e5f-8a9b-0c1d2e3f4a5b

  # Remove several records from a shared workspace, continuing past missing ones
  quire remove --owner 5b0e... --workspace 3f25... --ignore-missing id1 id2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var (
	removeOwner         string
	removeWorkspace     string
	removeType          string
	removeIgnoreMissing bool
	removeQuiet         bool
)

func init() {
	removeCmd.Flags().StringVar(&removeOwner, "owner", "", "owner id the records belong to (required)")
	removeCmd.Flags().StringVar(&removeWorkspace, "workspace", "", "workspace id (default: the owner's personal workspace)")
	removeCmd.Flags().StringVarP(&removeType, "type", "t", "", "only delete records of this type")
	removeCmd.Flags().BoolVar(&removeIgnoreMissing, "ignore-missing", false, "skip ids that do not exist instead of failing")
	removeCmd.Flags().BoolVarP(&removeQuiet, "quiet", "q", false, "suppress per-record output")
	_ = removeCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var want quire.FileType
	if removeType != "" {
		if want, err = quire.ParseFileType(removeType); err != nil {
			return err
		}
	}

	b, err := openBackends(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	service, err := b.service()
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	scope := quire.Scope{WorkspaceID: removeWorkspace, OwnerID: removeOwner}
	if scope.WorkspaceID == "" {
		scope.WorkspaceID = removeOwner
	}

	removed, skipped := 0, 0
	for _, id := range args {
		err = service.Delete(ctx, scope, id, want)
		switch {
		case err == nil:
			removed++
			if !removeQuiet {
				slog.Info("removed", "id", id)
			}
		case removeIgnoreMissing && errors.Is(err, quire.ErrNotFound):
			skipped++
			if !removeQuiet {
				slog.Info("skipped (not found)", "id", id)
			}
		default:
			return fmt.Errorf("remove %s: %w", id, err)
		}
	}

	slog.Info("remove complete", "removed", removed, "skipped", skipped)
	return nil
}
