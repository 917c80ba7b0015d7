package main

import (
	"os"

	"github.com/sagarc03/quire/clientcli"
	"github.com/spf13/cobra"
)

var deleteNote bool

var deleteCmd = &cobra.Command{
	Use:     "delete <id> [id...]",
	Aliases: []string{"rm"},
	Short:   "Delete records",
	Long: `Delete one or more records and their content.

Continues past failures and exits non-zero if any delete failed.

Examples:
  quire-cli delete 5f0c...
  quire-cli delete -w team 9a1b... 3c2d...`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteNote, "note", false, "use the note routes inside --workspace")
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{
		Workspace: workspace,
		IDs:       args,
		Note:      deleteNote || workspace == "",
	})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}
