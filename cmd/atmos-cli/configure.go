package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/atmos"
	"github.com/sagarc03/atmos/clientcli"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage endpoint profiles",
	Long: `Manage endpoint profiles in the configuration file.

Profiles allow you to save connection settings for multiple Atmos endpoints
and easily switch between them using --profile or ATMOS_PROFILE.

Configuration is stored in ~/.atmos/config.yaml`,
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
	Short: "Add a new profile",
	Long: `Add a new profile interactively.

You will be prompted for:
  - Storage nodes
  - Scheme
  - Namespace and filesystem access
  - uid and shared secret
  - Whether to set as default

The first node is dialed before saving.`,
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
	Long: `Show details for a profile.

If no name is provided, shows the default profile.
Secrets are hidden by default; use --show-secrets to reveal them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

var showSecrets bool

func init() {
	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureAddCmd)
	configureCmd.AddCommand(configureRemoveCmd)
	configureCmd.AddCommand(configureSetDefaultCmd)
	configureCmd.AddCommand(configureShowCmd)

	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
	configureListCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			printNoProfiles()
			return nil
		}
		return fmt.Errorf("load config: %w", err)
	}

	if len(cfg.Profiles) == 0 {
		printNoProfiles()
		return nil
	}

	defaultName := ""
	if p, err := cfg.GetDefaultProfile(); err == nil {
		defaultName = p.Name
	}

	return getFormatter().FormatProfileList(os.Stdout, cfg.Profiles, defaultName, showSecrets)
}

func printNoProfiles() {
	fmt.Println("No profiles configured.")
	fmt.Println("Run 'atmos-cli configure add <name>' to create one.")
}

func runConfigureAdd(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = &clientcli.ConfigFile{}
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil && existing.Name == name {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Profile '%s' already exists. Update it", name),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	} else {
		existing = nil
	}

	nodesPrompt := promptui.Prompt{
		Label:    "Storage nodes (host:port, comma separated)",
		Default:  clientcli.DefaultNode,
		Validate: validateNodes,
	}
	nodesVal, err := nodesPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	profileNodes := splitList(nodesVal)

	schemeSelect := promptui.Select{
		Label: "Scheme",
		Items: []string{"http", "https"},
	}
	_, schemeVal, err := schemeSelect.Run()
	if err != nil {
		return handlePromptError(err)
	}

	namespacePrompt := promptui.Prompt{
		Label: "Namespace (empty for none)",
	}
	namespaceVal, err := namespacePrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	fsPrompt := promptui.Prompt{
		Label:     "Enable filesystem access",
		IsConfirm: true,
	}
	_, fsErr := fsPrompt.Run()
	if errors.Is(fsErr, promptui.ErrInterrupt) {
		return handlePromptError(fsErr)
	}

	uidPrompt := promptui.Prompt{
		Label: "uid",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return clientcli.ErrUIDRequired
			}
			return nil
		},
	}
	uidVal, err := uidPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	secretPrompt := promptui.Prompt{
		Label:    "Shared secret (base64)",
		Mask:     '*',
		Validate: atmos.CheckSecret,
	}
	secretVal, err := secretPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	setAsDefault := false
	if len(cfg.Profiles) == 0 {
		setAsDefault = true // First profile is always default
	} else {
		defaultPrompt := promptui.Prompt{
			Label:     "Set as default profile",
			IsConfirm: true,
		}
		if _, promptErr := defaultPrompt.Run(); promptErr == nil {
			setAsDefault = true
		}
	}

	fmt.Print("Testing connection... ")
	if connErr := testNodeConnection(profileNodes[0]); connErr != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: Could not connect to %s: %v\n", profileNodes[0], connErr)

		continuePrompt := promptui.Prompt{
			Label:     "Save profile anyway",
			IsConfirm: true,
		}
		if _, promptErr := continuePrompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	} else {
		fmt.Println("OK")
	}

	p := clientcli.Profile{
		Name:      name,
		Nodes:     profileNodes,
		Scheme:    schemeVal,
		Namespace: strings.TrimSpace(namespaceVal),
		FSAccess:  fsErr == nil,
		UID:       strings.TrimSpace(uidVal),
		Secret:    secretVal,
		Default:   setAsDefault,
	}

	if setAsDefault {
		for i := range cfg.Profiles {
			cfg.Profiles[i].Default = false
		}
	}

	if existing != nil {
		err = cfg.UpdateProfile(p)
	} else {
		err = cfg.AddProfile(p)
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if existing != nil {
		fmt.Printf("Profile '%s' updated.\n", name)
	} else {
		fmt.Printf("Profile '%s' added.\n", name)
	}
	if setAsDefault {
		fmt.Printf("Set as default profile.\n")
	}

	return nil
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err = cfg.GetProfile(name); err != nil {
		return err
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Remove profile '%s'", name),
		IsConfirm: true,
	}
	if _, promptErr := prompt.Run(); promptErr != nil {
		fmt.Println("Cancelled.")
		return nil //nolint:nilerr // User cancelled, not an error
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.SetDefault(name); err != nil {
		return err
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Default profile set to '%s'.\n", name)
	return nil
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	// An empty name resolved to the default profile.
	isDefault := p.Default || name == ""

	return getFormatter().FormatProfileShow(os.Stdout, *p, isDefault, showSecrets)
}

func validateNodes(input string) error {
	list := splitList(input)
	if len(list) == 0 {
		return errors.New("at least one node is required")
	}
	for _, n := range list {
		if _, _, err := net.SplitHostPort(n); err != nil {
			return fmt.Errorf("invalid node %q: %w", n, err)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// testNodeConnection dials node. Atmos answers unsigned requests with an
// error, so a TCP connection is all that is checked.
func testNodeConnection(node string) error {
	conn, err := net.DialTimeout("tcp", node, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	return conn.Close()
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
