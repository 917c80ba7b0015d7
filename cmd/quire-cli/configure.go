package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/sagarc03/quire/clientcli"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage server profiles",
	Long: `Manage server profiles in the configuration file.

Profiles save the endpoint and bearer token for each quire server. Pick one
with --profile or QUIRE_PROFILE.

Configuration is stored in ~/.quire/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	Long: `List all profiles configured in the config file.

The default profile is marked with an asterisk (*).`,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or update a profile",
	Long: `Add a profile interactively, or update it if it exists.

You will be prompted for the endpoint URL, the bearer token and whether the
profile becomes the default. The server's /health endpoint is checked before
saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile details",
	Long: `Show details for a profile, or the default profile when no name is given.

Tokens are masked; use --show-secrets to reveal them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

var showSecrets bool

func init() {
	configureCmd.AddCommand(configureListCmd, configureAddCmd, configureRemoveCmd, configureSetDefaultCmd, configureShowCmd)

	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show token values")
	configureListCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show token values")
}

// loadProfiles reads the profiles file. With allowMissing, a missing file is an empty one.
func loadProfiles(allowMissing bool) (*clientcli.ConfigFile, string, error) {
	path := getConfigPath()
	cfg, err := clientcli.LoadConfigFile(path)
	switch {
	case err == nil:
		return cfg, path, nil
	case allowMissing && errors.Is(err, os.ErrNotExist):
		return &clientcli.ConfigFile{}, path, nil
	default:
		return nil, path, err
	}
}

// confirm asks a yes/no question. Anything but "y" is no.
func confirm(label string) bool {
	_, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run()
	return err == nil
}

func ask(p promptui.Prompt) (string, bool, error) {
	v, err := p.Run()
	switch {
	case err == nil:
		return v, true, nil
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrAbort):
		fmt.Println("Cancelled.")
		return "", false, nil
	default:
		return "", false, err
	}
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	cfg, _, err := loadProfiles(true)
	if err != nil {
		return err
	}

	if len(cfg.Profiles) == 0 {
		fmt.Println("No profiles configured.")
		fmt.Println("Run 'quire-cli configure add <name>' to create one.")
		return nil
	}

	def, err := cfg.GetDefaultProfile()
	if err != nil {
		return err
	}
	return getFormatter().FormatProfileList(os.Stdout, cfg.Profiles, def.Name, showSecrets)
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, path, err := loadProfiles(true)
	if err != nil {
		return err
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil && !confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	defEndpoint, defToken := clientcli.DefaultEndpoint, ""
	if existing != nil {
		defEndpoint, defToken = existing.Endpoint, existing.Token
	}

	endpointURL, ok, err := ask(promptui.Prompt{
		Label:    "Endpoint URL",
		Default:  defEndpoint,
		Validate: clientcli.ValidateEndpoint,
	})
	if !ok {
		return err
	}

	tokenVal, ok, err := ask(promptui.Prompt{
		Label:   "Token",
		Mask:    '*',
		Default: defToken,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return clientcli.ErrTokenRequired
			}
			return nil
		},
	})
	if !ok {
		return err
	}

	makeDefault := len(cfg.Profiles) == 0 || (existing != nil && existing.Default) || confirm("Set as default profile")

	fmt.Print("Testing connection... ")
	if connErr := checkHealth(cmd.Context(), endpointURL); connErr != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: %v\n", connErr)
		if !confirm("Save profile anyway") {
			fmt.Println("Cancelled.")
			return nil
		}
	} else {
		fmt.Println("OK")
	}

	p := clientcli.Profile{
		Name:     name,
		Endpoint: strings.TrimSuffix(endpointURL, "/"),
		Token:    strings.TrimSpace(tokenVal),
	}
	if existing != nil {
		err = cfg.UpdateProfile(p)
	} else {
		err = cfg.AddProfile(p)
	}
	if err != nil {
		return err
	}
	if makeDefault {
		if err := cfg.SetDefault(name); err != nil {
			return err
		}
	}

	if err := cfg.Save(path); err != nil {
		return err
	}

	verb := "added"
	if existing != nil {
		verb = "updated"
	}
	fmt.Printf("Profile '%s' %s.\n", name, verb)
	if makeDefault {
		fmt.Println("Set as default profile.")
	}
	return nil
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]

	cfg, path, err := loadProfiles(false)
	if err != nil {
		return err
	}
	if _, err := cfg.GetProfile(name); err != nil {
		return err
	}

	if !confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Printf("Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	cfg, path, err := loadProfiles(false)
	if err != nil {
		return err
	}

	if err := cfg.SetDefault(args[0]); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	fmt.Printf("Default profile set to '%s'.\n", args[0])
	return nil
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	cfg, _, err := loadProfiles(false)
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}
	def, err := cfg.GetDefaultProfile()
	if err != nil {
		return err
	}

	return getFormatter().FormatProfileShow(os.Stdout, *p, p.Name == def.Name, showSecrets)
}

// checkHealth calls the server's unauthenticated health endpoint.
func checkHealth(ctx context.Context, endpointURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := clientcli.New(&clientcli.Config{Endpoint: endpointURL})
	if err != nil {
		return err
	}
	return client.Health(ctx)
}
