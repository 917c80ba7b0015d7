package main

import (
	"os"

	"github.com/sagarc03/quire/clientcli"
	"github.com/spf13/cobra"
)

var createType string

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a record",
	Long: `Create an empty record.

Without --workspace, the record is created in your personal workspace.

Examples:
  quire-cli create "Groceries"
  quire-cli create -w team --type document "Roadmap"
  quire-cli create -q "Scratch"   # prints only the new id`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createType, "type", "note", "record type")
}

func runCreate(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	rec, err := client.Create(cmd.Context(), clientcli.CreateOptions{
		Workspace: workspace,
		Name:      args[0],
		Type:      createType,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatRecord(os.Stdout, "Created", rec)
}
