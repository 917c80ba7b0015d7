package main

import (
	"os"

	"github.com/sagarc03/quire/clientcli"
	"github.com/spf13/cobra"
)

var (
	putContentType string
	putNote        bool
)

var putCmd = &cobra.Command{
	Use:   "put <id> <local-file>",
	Short: "Replace a record's content",
	Long: `Upload a local file as a record's content, replacing what was there.

The content type is detected from the file unless --content-type is given.

Examples:
  quire-cli put 5f0c... note.json
  quire-cli put -w team 9a1b... roadmap.pdf
  quire-cli put -w team 9a1b... notes.md --content-type text/markdown`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().StringVar(&putContentType, "content-type", "", "content type (default: detected)")
	putCmd.Flags().BoolVar(&putNote, "note", false, "use the note routes inside --workspace")
}

func runPut(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Put(cmd.Context(), clientcli.PutOptions{
		ContentOptions: contentOptions(args[0], putNote),
		LocalPath:      args[1],
		ContentType:    putContentType,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatPut(os.Stdout, result)
}
