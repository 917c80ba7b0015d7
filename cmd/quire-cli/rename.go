package main

import (
	"os"

	"github.com/sagarc03/quire/clientcli"
	"github.com/spf13/cobra"
)

var renameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a record",
	Long: `Rename a record in a workspace.

Examples:
  quire-cli rename -w team 5f0c... "Q3 Roadmap"`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	rec, err := client.Rename(cmd.Context(), clientcli.RenameOptions{
		Workspace: workspace,
		ID:        args[0],
		Name:      args[1],
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatRecord(os.Stdout, "Renamed", rec)
}
