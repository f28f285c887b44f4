package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/granite-tools/packmgr/pkg/api"
)

var downloadCmd = &cobra.Command{
	Use:   "download <package>",
	Short: "Download a package from the server",
	Long: `Download a package from the server.

By default the file is written below --dir mirroring its installation path,
e.g. ./etc/packages/acme/site-content-1.0.zip. --file writes to an exact path.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("dir", ".", "Directory to download into")
	downloadCmd.Flags().String("file", "", "Exact file to write")
	downloadCmd.MarkFlagsMutuallyExclusive("dir", "file")
	viper.BindPFlag("download.dir", downloadCmd.Flags().Lookup("dir"))
	viper.BindPFlag("download.file", downloadCmd.Flags().Lookup("file"))
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := api.ParsePID(args[0])
	if err != nil {
		return err
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	var resp *api.DownloadResponse
	if file := viper.GetString("download.file"); file != "" {
		resp, err = s.client.Download(ctx, id, file)
	} else {
		resp, err = s.client.DownloadToDirectory(ctx, id, viper.GetString("download.dir"))
	}
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), resp, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Package:\t%s\n", id)
		fmt.Fprintf(tw, "File:\t%s\n", resp.Content)
		fmt.Fprintf(tw, "Bytes:\t%d\n", resp.Length)
	})
}
