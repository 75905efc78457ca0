package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/atmos/clientcli"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <remote-path> [local-path]",
	Short: "Download an object",
	Long: `Download an object by id, or by namespace path with filesystem access.

Examples:
  atmos-cli download 0a1b2c3d ./file.txt
  atmos-cli --fs-access download docs/file.txt
  atmos-cli download --stdout 0a1b2c3d | jq .
  atmos-cli download -o ./output.txt 0a1b2c3d`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	remotePath := args[0]

	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.DownloadOptions{
		RemotePath: remotePath,
		LocalPath:  localPath,
	}

	result, reader, err := client.Download(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		// Metadata goes to stderr so it does not mix with the content.
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
