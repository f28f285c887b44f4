package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/filter"
	"github.com/granite-tools/packmgr/pkg/vault"
)

var filterCmd = &cobra.Command{
	Use:   "filter <file|->",
	Short: "Convert a workspace filter between formats",
	Long: `Convert a workspace filter between formats.

Input formats (--from):
  spec   simple filter spec: "/root" lines followed by "+pattern" / "-pattern"
  xml    META-INF/vault/filter.xml
  json   [{"root": "/apps", "rules": [{"modifier": "include", "pattern": ".*"}]}]
  zip    a package file; its filter.xml is read

Output formats (--to): spec, xml, json.`,
	Example: `  packmgr filter --from zip --to spec site-content-1.0.zip
  echo '/apps/site' | packmgr filter --to xml -`,
	Args: cobra.ExactArgs(1),
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().String("from", "", "Input format (spec, xml, json, zip); guessed from the file name when empty")
	filterCmd.Flags().String("to", "spec", "Output format (spec, xml, json)")
	viper.BindPFlag("filter.from", filterCmd.Flags().Lookup("from"))
	viper.BindPFlag("filter.to", filterCmd.Flags().Lookup("to"))
	rootCmd.AddCommand(filterCmd)
}

func inputFormat(name, from string) string {
	if from != "" {
		return from
	}
	switch {
	case strings.HasSuffix(name, ".zip"):
		return "zip"
	case strings.HasSuffix(name, ".xml"):
		return "xml"
	case strings.HasSuffix(name, ".json"):
		return "json"
	}
	return "spec"
}

func readFilter(name, format string, stdin io.Reader) (filter.Filter, error) {
	if format == "zip" {
		a, err := vault.Open(name)
		if err != nil {
			return filter.Filter{}, err
		}
		defer a.Close()
		meta, err := a.MetaInf()
		if err != nil {
			return filter.Filter{}, err
		}
		return meta.Filter, nil
	}

	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return filter.Filter{}, err
	}

	switch format {
	case "spec":
		return filter.ParseSpec(string(data))
	case "xml":
		return filter.ParseXML(bytes.NewReader(data))
	case "json":
		var f filter.Filter
		err := json.Unmarshal(data, &f)
		return f, err
	}
	return filter.Filter{}, errx.With(ErrInvalidFilter, ": unknown input format %q", format)
}

func writeFilter(w io.Writer, f filter.Filter, format string) error {
	switch format {
	case "spec":
		_, err := io.WriteString(w, f.Spec())
		return err
	case "xml":
		data, err := f.XML()
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}
	return errx.With(ErrInvalidFilter, ": unknown output format %q", format)
}

func runFilter(cmd *cobra.Command, args []string) error {
	name := args[0]
	f, err := readFilter(name, inputFormat(name, viper.GetString("filter.from")), cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("%s: %w", name, errx.Wrap(ErrInvalidFilter, err))
	}
	return writeFilter(cmd.OutOrStdout(), f, viper.GetString("filter.to"))
}
