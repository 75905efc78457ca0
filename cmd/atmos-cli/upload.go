package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/atmos/clientcli"
)

var (
	uploadContentType string
	uploadOverwrite   bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [remote-path]",
	Short: "Upload a file",
	Long: `Upload a file.

With filesystem access the object is created at remote-path in the
namespace. Without it the server assigns an object id, which is printed.
--overwrite updates the object at remote-path, an id or namespace path.

Examples:
  atmos-cli upload ./file.txt
  atmos-cli --fs-access upload ./file.txt docs/file.txt
  atmos-cli upload --overwrite ./file.txt 0a1b2c3d
  atmos-cli upload --content-type application/json ./data`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
	uploadCmd.Flags().BoolVar(&uploadOverwrite, "overwrite", false, "update an existing object")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.UploadOptions{
		LocalPath:   args[0],
		ContentType: uploadContentType,
		Overwrite:   uploadOverwrite,
	}
	if len(args) > 1 {
		opts.RemotePath = args[1]
	}

	result, err := client.Upload(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}
	return getFormatter().FormatUpload(os.Stdout, result)
}
