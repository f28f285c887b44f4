package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/granite-tools/packmgr/pkg/api"
)

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List packages on the server",
	Example: `  packmgr list
  packmgr list acme
  packmgr list --package acme:site-content --versions`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().String("package", "", "List a single package id or file")
	listCmd.Flags().Bool("versions", false, "Include other versions of --package")
	viper.BindPFlag("list.package", listCmd.Flags().Lookup("package"))
	viper.BindPFlag("list.versions", listCmd.Flags().Lookup("versions"))
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	var resp *api.ListResponse
	switch {
	case viper.GetString("list.package") != "":
		id, _, err := resolvePackage(viper.GetString("list.package"))
		if err != nil {
			return err
		}
		resp, err = s.client.ListPackage(ctx, id, viper.GetBool("list.versions"))
		if err != nil {
			return err
		}
	case len(args) == 1:
		resp, err = s.client.ListQuery(ctx, args[0])
	default:
		resp, err = s.client.List(ctx)
	}
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), resp, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "PACKAGE\tSNAPSHOT\tNEEDS REWRAP")
		for _, r := range resp.Results {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.PackID, yesNo(r.HasSnapshot), yesNo(r.NeedsRewrap))
		}
		fmt.Fprintf(tw, "\n%d of %d packages\n", len(resp.Results), resp.Total)
	})
}
