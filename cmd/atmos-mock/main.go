package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/atmos/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "atmos-mock",
	Short:   "In-memory Atmos endpoint for integration testing",
	Long: `atmos-mock serves the Atmos REST API from memory. It verifies
x-emc-signature against configured uid/secret pairs, issues subtenant ids
and stores objects until it exits.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")
		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("keys-file", "", "JSON file with uid/secret pairs (env: ATMOS_KEYS_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: ATMOS_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
