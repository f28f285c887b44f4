package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/history"
	"github.com/granite-tools/packmgr/pkg/response"
	"github.com/granite-tools/packmgr/pkg/sdk"
)

type detailedCall func(c *sdk.Client, ctx context.Context, id *api.PackID, l response.Listener) (*api.DetailedResponse, error)

// runDetailed runs one console command against an uploaded package,
// records it and prints the outcome.
func runDetailed(cmd *cobra.Command, s *session, name string, id *api.PackID, call detailedCall) error {
	ctx := cmd.Context()
	resp, err := call(s.client, ctx, id, progressListener(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	s.record(ctx, history.FromDetailed(s.client.BaseURL(), name, id, resp))

	if err := render(cmd.OutOrStdout(), resp, func(tw *tabwriter.Writer) {
		printDetailed(tw, id, resp)
	}); err != nil {
		return err
	}
	if !resp.Success {
		return commandExit(exitCommandFailed)
	}
	return nil
}

func printDetailed(tw *tabwriter.Writer, id *api.PackID, resp *api.DetailedResponse) {
	fmt.Fprintf(tw, "Package:\t%s\n", id)
	fmt.Fprintf(tw, "Success:\t%s\n", yesNo(resp.Success))
	fmt.Fprintf(tw, "Message:\t%s\n", resp.Message)
	fmt.Fprintf(tw, "Duration:\t%s\n", durationText(resp.Duration))
	if resp.HasErrors() {
		fmt.Fprintf(tw, "Errors:\t%d\n", len(resp.ProgressErrors))
		for _, e := range resp.ProgressErrors {
			fmt.Fprintf(tw, "\t%s\n", e)
		}
	}
	for _, line := range resp.StackTrace {
		fmt.Fprintf(tw, "\t%s\n", line)
	}
}

// detailedCommand builds a subcommand that runs call for one package argument.
func detailedCommand(use, short, name string, call detailedCall) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <package>",
		Short: short,
		Long: short + `.

<package> is a package id (group:name[:version]) or a package file whose id
is read from its properties.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _, err := resolvePackage(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()
			return runDetailed(cmd, s, name, id, call)
		},
	}
}
