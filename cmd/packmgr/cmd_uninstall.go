package main

import (
	"github.com/granite-tools/packmgr/pkg/sdk"
)

var uninstallCmd = detailedCommand("uninstall", "Revert an installed package from its snapshot", string(sdk.CmdUninstall),
	(*sdk.Client).Uninstall)

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
