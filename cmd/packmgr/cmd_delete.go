package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/history"
	"github.com/granite-tools/packmgr/pkg/sdk"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <package>",
	Short: "Delete a package from the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimple(cmd, args[0], string(sdk.CmdDelete), (*sdk.Client).Delete)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

type simpleCall func(c *sdk.Client, ctx context.Context, id *api.PackID) (*api.SimpleResponse, error)

func runSimple(cmd *cobra.Command, arg, name string, call simpleCall) error {
	ctx := cmd.Context()
	id, _, err := resolvePackage(arg)
	if err != nil {
		return err
	}
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	resp, err := call(s.client, ctx, id)
	if err != nil {
		return err
	}
	s.record(ctx, history.FromSimple(s.client.BaseURL(), name, id, resp))

	if err := render(cmd.OutOrStdout(), resp, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "Package:\t%s\n", id)
		fmt.Fprintf(tw, "Success:\t%s\n", yesNo(resp.Success))
		fmt.Fprintf(tw, "Message:\t%s\n", resp.Message)
	}); err != nil {
		return err
	}
	if !resp.Success {
		return commandExit(exitCommandFailed)
	}
	return nil
}
