package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/atmos/clientcli"
)

var canonicalContentType string

var canonicalCmd = &cobra.Command{
	Use:   "canonical <op> [remote-path]",
	Short: "Print the canonical string and signature of a request",
	Long: `Print the canonical string and signature of a request without sending it.

op is one of create, read, update, delete or noop. No subtenant is requested;
a token from the profile or ATMOS_TOKEN is used when present. Compare the
output with the server's log to debug signature mismatches.

Examples:
  atmos-cli canonical read 0a1b2c3d
  atmos-cli --fs-access canonical create dir/file.txt -t text/plain`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCanonical,
}

func init() {
	canonicalCmd.Flags().StringVarP(&canonicalContentType, "content-type", "t", "", "Content-Type header to sign")
}

func runCanonical(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.CanonicalOptions{
		Op:          args[0],
		ContentType: canonicalContentType,
	}
	if len(args) > 1 {
		opts.RemotePath = args[1]
	}

	result, err := client.Canonical(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}
	return getFormatter().FormatCanonical(os.Stdout, result)
}
