package main

import (
	"github.com/granite-tools/packmgr/pkg/sdk"
)

var rewrapCmd = detailedCommand("rewrap", "Rewrite package metadata without rebuilding content", string(sdk.CmdRewrap),
	(*sdk.Client).Rewrap)

func init() {
	rootCmd.AddCommand(rewrapCmd)
}
