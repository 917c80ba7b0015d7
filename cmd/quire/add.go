package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/config"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <file1> [file2] ...",
	Short: "Import files as records",
	Long: `Create a record for each file and store the file's bytes as its content.

The content type is detected from the file's bytes. Each record is named after
its file unless --name is given, which is only allowed for a single file.

Examples:
  # Import a note into an owner's personal workspace
  quire add --owner 5b0e... --type note draft.json

  # Import a directory of documents into a shared workspace
  quire add --owner 5b0e... --workspace 3f25... --type document -r ./docs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addOwner     string
	addWorkspace string
	addType      string
	addName      string
	addRecursive bool
	addQuiet     bool
)

func init() {
	addCmd.Flags().StringVar(&addOwner, "owner", "", "owner id the records belong to (required)")
	addCmd.Flags().StringVar(&addWorkspace, "workspace", "", "workspace id (default: the owner's personal workspace)")
	addCmd.Flags().StringVarP(&addType, "type", "t", string(quire.TypeDocument), "record type: note, whiteboard, graph, document")
	addCmd.Flags().StringVar(&addName, "name", "", "record name (single file only)")
	addCmd.Flags().BoolVarP(&addRecursive, "recursive", "r", false, "recursively add directories")
	addCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "suppress per-file output")
	_ = addCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	fileType, err := quire.ParseFileType(addType)
	if err != nil {
		return err
	}

	var files []string
	for _, arg := range args {
		found, collectErr := collectFiles(arg, addRecursive)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, found...)
	}

	if addName != "" && len(files) != 1 {
		return fmt.Errorf("--name needs exactly one file, got %d", len(files))
	}

	if len(files) == 0 {
		slog.Info("no files to add")
		return nil
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

	scope := quire.Scope{WorkspaceID: addWorkspace, OwnerID: addOwner}
	if scope.WorkspaceID == "" {
		scope.WorkspaceID = addOwner
	}

	added := 0
	for _, path := range files {
		name := addName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		mt, detectErr := mimetype.DetectFile(path)
		if detectErr != nil {
			return fmt.Errorf("detect content type of %s: %w", path, detectErr)
		}

		rec, createErr := service.Create(ctx, quire.CreateRecord{Scope: scope, Name: name, Type: fileType})
		if createErr != nil {
			return fmt.Errorf("add %s: %w", path, createErr)
		}

		f, openErr := os.Open(path) //nolint:gosec // operator supplied path
		if openErr != nil {
			return fmt.Errorf("open %s: %w", path, openErr)
		}

		res, writeErr := service.WriteContent(ctx, scope, rec.ID, fileType, f, mt.String())
		_ = f.Close()
		if writeErr != nil {
			// leave no empty record behind
			if delErr := service.Delete(ctx, scope, rec.ID, fileType); delErr != nil {
				slog.Warn("could not roll back record", "id", rec.ID, "error", delErr)
			}
			return fmt.Errorf("write content for %s: %w", path, writeErr)
		}

		added++
		if !addQuiet {
			slog.Info("added", "file", path, "id", rec.ID, "content_type", mt.String(), "bytes", res.BytesWritten)
		}
	}

	slog.Info("add complete", "added", added, "workspace", scope.WorkspaceID)
	return nil
}

// collectFiles gathers regular files from a path, walking directories when recursive is set.
func collectFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to add recursively)", path)
	}

	var files []string
	walkErr := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Type().IsRegular() {
			files = append(files, walkPath)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return files, nil
}
