package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var subtenantCmd = &cobra.Command{
	Use:   "subtenant",
	Short: "Request and inspect the subtenant of the configured uid",
	Long: `Request and inspect the subtenant of the configured uid.

Without a subcommand a subtenant is requested from the first storage node
(PUT /rest/subtenant) and its id is printed. Requests are retried with
backoff when the node declines or cannot be reached.`,
	Args: cobra.NoArgs,
	RunE: runSubtenant,
}

var subtenantInfoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Check that a subtenant exists",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubtenantInfo,
}

var subtenantDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a subtenant",
	Args:    cobra.ExactArgs(1),
	RunE:    runSubtenantDelete,
}

func init() {
	subtenantCmd.AddCommand(subtenantInfoCmd)
	subtenantCmd.AddCommand(subtenantDeleteCmd)
}

func runSubtenant(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Subtenant(cmd.Context())
	if err != nil {
		return handleError(os.Stderr, err)
	}
	return getFormatter().FormatSubtenant(os.Stdout, result)
}

func runSubtenantInfo(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.SubtenantInfo(cmd.Context(), args[0])
	if err != nil {
		return handleError(os.Stderr, err)
	}
	return getFormatter().FormatSubtenant(os.Stdout, result)
}

func runSubtenantDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.DeleteSubtenant(cmd.Context(), args[0]); err != nil {
		return handleError(os.Stderr, err)
	}
	if !quiet && !jsonOutput {
		fmt.Printf("Deleted subtenant %s\n", args[0])
	}
	return nil
}
