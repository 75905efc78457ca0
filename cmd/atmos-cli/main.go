package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagarc03/atmos/clientcli"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	nodes      []string
	scheme     string
	namespace  string
	fsAccess   bool
	uid        string
	secret     string
	jsonOutput bool
	quiet      bool
	verbose    bool
	retries    uint
)

var rootCmd = &cobra.Command{
	Use:     "atmos-cli",
	Version: version,
	Short:   "Client for EMC Atmos object storage",
	Long: `Atmos CLI - signed requests against an EMC Atmos endpoint

Every request carries x-emc-uid and an HMAC-SHA1 x-emc-signature. The first
data command requests a subtenant for the configured uid.

Objects are addressed by namespace path when filesystem access is enabled
(--fs-access), and by object id otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.atmos/config.yaml, env: ATMOS_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: ATMOS_PROFILE)")
	rootCmd.PersistentFlags().StringSliceVarP(&nodes, "nodes", "n", nil, "storage nodes as host:port (default: localhost:9022, env: ATMOS_NODES)")
	rootCmd.PersistentFlags().StringVar(&scheme, "scheme", "", "http or https (env: ATMOS_SCHEME)")
	rootCmd.PersistentFlags().StringVar(&namespace, "namespace", "", "x-emc-namespace value (env: ATMOS_NAMESPACE)")
	rootCmd.PersistentFlags().BoolVar(&fsAccess, "fs-access", false, "address objects by namespace path (env: ATMOS_FS_ACCESS)")
	rootCmd.PersistentFlags().StringVarP(&uid, "uid", "u", "", "uid (env: ATMOS_UID)")
	rootCmd.PersistentFlags().StringVarP(&secret, "secret", "k", "", "base64 shared secret (env: ATMOS_SECRET)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().UintVar(&retries, "retries", clientcli.DefaultRetries, "subtenant requests before giving up, 0 retries until interrupted")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and canonical strings to stderr")

	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(subtenantCmd)
	rootCmd.AddCommand(canonicalCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(deleteCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// getConfigPath returns the config file from --config, ATMOS_CONFIG or the
// default location, in that order.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the selected profile, env vars and flags. Later
// sources take precedence.
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	profileName := profile
	if profileName == "" {
		profileName = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	file, err := clientcli.LoadConfigFile(configPath)
	switch {
	case err == nil:
		p, profileErr := file.GetProfile(profileName)
		if profileErr != nil && profileName != "" {
			return nil, profileErr
		}
		if profileErr == nil {
			configs = append(configs, clientcli.ConfigFromProfile(p))
		}
	case errors.Is(err, os.ErrNotExist):
		// Only an explicit profile or config file needs to exist.
		if profileName != "" || cfgFile != "" {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
	default:
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}

	configs = append(configs, clientcli.ConfigFromEnv(), &clientcli.Config{
		Nodes:     nodes,
		Scheme:    scheme,
		Namespace: namespace,
		FSAccess:  fsAccess,
		UID:       uid,
		Secret:    secret,
	})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return clientcli.New(cfg,
		clientcli.WithLogger(logger),
		clientcli.WithRetries(retries),
	)
}

// handleError prints err with the active formatter and returns it so that
// cobra sets a non-zero exit code.
func handleError(w io.Writer, err error) error {
	_ = getFormatter().FormatError(w, err)
	return &exitError{code: 1, err: err}
}

// exitError is returned when we want to exit with a specific code
// but don't want cobra to print an error message.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}
