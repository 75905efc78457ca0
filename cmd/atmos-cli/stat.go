package main

import (
	"os"

	"github.com/spf13/cobra"
)

var statCmd = &cobra.Command{
	Use:   "stat <remote-path>",
	Short: "Show object size and content type",
	Long: `Show object size and content type with a HEAD request.

Examples:
  atmos-cli stat 0a1b2c3d
  atmos-cli --fs-access --json stat docs/file.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runStat,
}

func runStat(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Stat(cmd.Context(), args[0])
	if err != nil {
		return handleError(os.Stderr, err)
	}
	return getFormatter().FormatStat(os.Stdout, result)
}
