package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sagarc03/quire/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	token      string
	workspace  string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "quire-cli",
	Version:       version,
	Short:         "Client for the quire document API",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `quire-cli talks to a quire server over its REST API.

Without --workspace, commands act on your personal notes. Records of any
other type live in a workspace and need --workspace.

Connection settings are resolved from, in increasing precedence:
  1. the profile in the config file (~/.quire/config.yaml, env: QUIRE_CLI_CONFIG)
  2. QUIRE_ENDPOINT and QUIRE_TOKEN
  3. --endpoint and --token`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.quire/config.yaml, env: QUIRE_CLI_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: QUIRE_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:5708, env: QUIRE_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "bearer token (env: QUIRE_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace id (default: your personal notes)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var exitErr *exitError
		if !errors.As(err, &exitErr) {
			_ = getFormatter().FormatError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// getConfigPath returns the config file path from the flag, the environment or the default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates a client that must carry a token.
func getClient() (*clientcli.Client, error) {
	cfg, err := clientcli.Resolve(clientcli.ResolveOptions{
		ConfigPath: cfgFile,
		Profile:    profile,
		Endpoint:   endpoint,
		Token:      token,
	})
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateWithAuth(); err != nil {
		return nil, fmt.Errorf("%w: set --token, QUIRE_TOKEN or a profile", err)
	}

	return clientcli.New(cfg)
}

// exitError is returned when we want to exit non-zero without printing an error.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
