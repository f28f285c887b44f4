package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/granite-tools/packmgr/pkg/history"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <package.zip>",
	Short: "Upload a package file to the server",
	Long: `Upload a package file to the server.

Without --force an upload is skipped when the same package id already exists
on the server.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolP("force", "f", false, "Replace an existing package with the same id")
	viper.BindPFlag("upload.force", uploadCmd.Flags().Lookup("force"))
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	file := args[0]
	id, err := identifyFile(file, false)
	if err != nil {
		return err
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	force := viper.GetBool("upload.force")
	if !force {
		exists, err := s.client.ExistsOnServer(ctx, id)
		if err != nil {
			return err
		}
		if exists {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s already exists on %s; use --force to replace it\n", id, s.client.BaseURL())
			return nil
		}
	}

	resp, err := s.client.Upload(ctx, file, force, id)
	if err != nil {
		return err
	}
	s.record(ctx, history.FromSimple(s.client.BaseURL(), "upload", id, resp))

	if err := render(cmd.OutOrStdout(), resp, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Package:\t%s\n", id)
		fmt.Fprintf(tw, "Success:\t%s\n", yesNo(resp.Success))
		fmt.Fprintf(tw, "Message:\t%s\n", resp.Message)
		fmt.Fprintf(tw, "Console:\t%s\n", s.client.ConsoleUIURL(id))
	}); err != nil {
		return err
	}
	if !resp.Success {
		return commandExit(exitCommandFailed)
	}
	return nil
}
