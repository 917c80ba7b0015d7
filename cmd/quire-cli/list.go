package main

import (
	"os"

	"github.com/sagarc03/quire/clientcli"
	"github.com/spf13/cobra"
)

var (
	listType      string
	listPageStart int
	listPageSize  int
	listAll       bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List records",
	Long: `List records, newest first.

Without --workspace, lists your personal notes. With --workspace, lists your
records in that workspace, optionally filtered by --type.

Examples:
  quire-cli list
  quire-cli list -w team --type document
  quire-cli list --page-start 20 --page-size 20
  quire-cli list -w team --all`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listType, "type", "", "filter by record type (workspace only)")
	listCmd.Flags().IntVar(&listPageStart, "page-start", 0, "offset of the first record")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 0, "records per page (server default 10, max 100)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "fetch all pages")
}

func runList(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(cmd.Context(), clientcli.ListOptions{
		Workspace: workspace,
		Type:      listType,
		PageStart: listPageStart,
		PageSize:  listPageSize,
		All:       listAll,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatList(os.Stdout, result)
}
