package main

import (
	"github.com/granite-tools/packmgr/pkg/sdk"
)

var buildCmd = detailedCommand("build", "Rebuild a package from repository content", string(sdk.CmdBuild),
	(*sdk.Client).Build)

func init() {
	rootCmd.AddCommand(buildCmd)
}
