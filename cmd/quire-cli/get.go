package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sagarc03/quire/clientcli"
	"github.com/spf13/cobra"
)

var (
	getOutput string
	getNote   bool
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Download a record's content",
	Long: `Download a record's content to a file or stdout.

Without --workspace, the record must be one of your personal notes.

Examples:
  quire-cli get 5f0c...
  quire-cli get 5f0c... -o note.json
  quire-cli get -w team 9a1b... -o roadmap.pdf
  quire-cli get -w team --note 3c2d...`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "-", `output file ("-" for stdout)`)
	getCmd.Flags().BoolVar(&getNote, "note", false, "use the note routes inside --workspace")
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, body, err := client.Get(cmd.Context(), clientcli.GetOptions{
		ContentOptions: contentOptions(args[0], getNote),
		LocalPath:      getOutput,
	})
	if err != nil {
		return err
	}

	if body != nil {
		defer func() { _ = body.Close() }()
		if _, err := io.Copy(os.Stdout, body); err != nil {
			return fmt.Errorf("write stdout: %w", err)
		}
		return nil
	}

	return getFormatter().FormatGet(os.Stdout, result)
}

// contentOptions picks the note routes whenever no workspace is given.
func contentOptions(id string, note bool) clientcli.ContentOptions {
	return clientcli.ContentOptions{
		Workspace: workspace,
		ID:        id,
		Note:      note || workspace == "",
	}
}
