package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/granite-tools/packmgr/pkg/api"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <package.zip>...",
	Short: "Print the package id of local package files",
	Long: `Print the package id of local package files.

Without --strict, a package without usable properties is identified by its
file name under the my_packages group.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIdentify,
}

func init() {
	identifyCmd.Flags().Bool("strict", false, "Require group and name in META-INF/vault/properties.xml")
	viper.BindPFlag("identify.strict", identifyCmd.Flags().Lookup("strict"))
	rootCmd.AddCommand(identifyCmd)
}

type identified struct {
	File   string      `json:"file" yaml:"file"`
	PackID *api.PackID `json:"packId" yaml:"packId"`
}

func runIdentify(cmd *cobra.Command, args []string) error {
	strict := viper.GetBool("identify.strict")
	out := make([]identified, 0, len(args))
	for _, file := range args {
		id, err := identifyFile(file, strict)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		out = append(out, identified{File: file, PackID: id})
	}

	return render(cmd.OutOrStdout(), out, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "FILE\tPACKAGE\tINSTALL PATH")
		for _, o := range out {
			fmt.Fprintf(tw, "%s\t%s\t%s.zip\n", o.File, o.PackID, o.PackID.InstallationPath)
		}
	})
}
