package main

import (
	"github.com/granite-tools/packmgr/pkg/sdk"
)

var contentsCmd = detailedCommand("contents", "List the content of a package on the server", string(sdk.CmdContents),
	(*sdk.Client).Contents)

func init() {
	rootCmd.AddCommand(contentsCmd)
}
