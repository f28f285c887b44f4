package main

import (
	"github.com/granite-tools/packmgr/pkg/sdk"
)

var dryRunCmd = detailedCommand("dryrun", "Simulate installing a package", string(sdk.CmdDryRun),
	(*sdk.Client).DryRun)

func init() {
	rootCmd.AddCommand(dryRunCmd)
}
