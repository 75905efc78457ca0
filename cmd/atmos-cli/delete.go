package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/atmos/clientcli"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <remote-path> [remote-path...]",
	Short: "Delete objects",
	Long: `Delete one or more objects by id, or by namespace path with
filesystem access. Every path is attempted; the exit code is non-zero when
any of them failed.

Examples:
  atmos-cli delete 0a1b2c3d
  atmos-cli --fs-access delete old/a.txt old/b.txt
  atmos-cli delete -q 0a1b2c3d`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{Paths: args})
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
