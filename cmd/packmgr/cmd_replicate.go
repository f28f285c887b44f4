package main

import (
	"github.com/spf13/cobra"

	"github.com/granite-tools/packmgr/pkg/sdk"
)

var replicateCmd = &cobra.Command{
	Use:   "replicate <package>",
	Short: "Replicate a package to publish instances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimple(cmd, args[0], string(sdk.CmdReplicate), (*sdk.Client).Replicate)
	},
}

func init() {
	rootCmd.AddCommand(replicateCmd)
}
