package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/granite-tools/packmgr/pkg/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [receipt-id]",
	Short: "Show recorded remote operations",
	Example: `  packmgr history --limit 20
  packmgr history --package acme:site-content:1.0 --command install
  packmgr history 1b4e28ba-2fa1-11d2-883f-0016d3cca427 -o yaml
  packmgr history --prune 720h`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("package", "", "Only receipts for this package id")
	historyCmd.Flags().String("command", "", "Only receipts of this command")
	historyCmd.Flags().Int("limit", 50, "Maximum receipts to show (0 for all)")
	historyCmd.Flags().Duration("prune", 0, "Delete receipts older than this instead of listing")

	viper.BindPFlag("history.package", historyCmd.Flags().Lookup("package"))
	viper.BindPFlag("history.command", historyCmd.Flags().Lookup("command"))
	viper.BindPFlag("history.limit", historyCmd.Flags().Lookup("limit"))
	viper.BindPFlag("history.prune", historyCmd.Flags().Lookup("prune"))
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openHistory(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("%w: history is disabled", ErrOpenHistory)
	}
	defer store.Close()

	if age := viper.GetDuration("history.prune"); age > 0 {
		n, err := store.Prune(ctx, time.Now().Add(-age))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d receipts\n", n)
		return nil
	}

	if len(args) == 1 {
		r, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), r, func(tw *tabwriter.Writer) {
			printReceipt(tw, r)
		})
	}

	receipts, err := store.List(ctx, history.Query{
		Package: viper.GetString("history.package"),
		Command: viper.GetString("history.command"),
		Limit:   viper.GetInt("history.limit"),
	})
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), receipts, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ID\tWHEN\tCOMMAND\tPACKAGE\tOK\tDURATION\tMESSAGE")
		for _, r := range receipts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Command, r.Package,
				yesNo(r.Success), durationText(r.Duration), r.Message)
		}
	})
}

func printReceipt(tw *tabwriter.Writer, r history.Receipt) {
	fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	fmt.Fprintf(tw, "When:\t%s\n", r.CreatedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(tw, "Server:\t%s\n", r.Server)
	fmt.Fprintf(tw, "Command:\t%s\n", r.Command)
	fmt.Fprintf(tw, "Package:\t%s\n", r.Package)
	fmt.Fprintf(tw, "Success:\t%s\n", yesNo(r.Success))
	fmt.Fprintf(tw, "Message:\t%s\n", r.Message)
	fmt.Fprintf(tw, "Duration:\t%s\n", durationText(r.Duration))
	for _, e := range r.ProgressErrors {
		fmt.Fprintf(tw, "Error:\t%s\n", e)
	}
	for _, line := range r.StackTrace {
		fmt.Fprintf(tw, "\t%s\n", line)
	}
}
