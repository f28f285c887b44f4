package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate --policy <policy.yaml> <package.zip>...",
	Short: "Check package files against a deployment policy",
	Long: `Check package files against a deployment policy.

The policy is a YAML document:

  validationFilter: |
    /apps/acme
      -/apps/acme/install(/.*)?
  allowNonCoveredRoots: false
  strictness: all            # or absolute-only
  forbiddenExtensions: [.jar]
  forbiddenACHandlingModes: [clear, overwrite]
  forbiddenFilterRootPrefixes: [/etc/map]
  pathsDeniedForInclusion: [/content/dam]

Packages are validated concurrently. The command exits with status 3 when any
package fails.`,
	Example: `  packmgr validate --policy policy.yaml target/*.zip
  packmgr validate --policy policy.yaml -o json site-content-1.0.zip`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("policy", "", "Deployment policy file (required)")
	validateCmd.Flags().Int("jobs", 4, "Packages validated in parallel")
	validateCmd.Flags().String("strictness", "", "Override the policy strictness (all, absolute-only)")
	validateCmd.MarkFlagRequired("policy")

	viper.BindPFlag("validate.policy", validateCmd.Flags().Lookup("policy"))
	viper.BindPFlag("validate.jobs", validateCmd.Flags().Lookup("jobs"))
	viper.BindPFlag("validate.strictness", validateCmd.Flags().Lookup("strictness"))
	rootCmd.AddCommand(validateCmd)
}

type validated struct {
	File   string            `json:"file" yaml:"file"`
	Reason validation.Reason `json:"reason" yaml:"reason"`
	Detail string            `json:"detail,omitempty" yaml:"detail,omitempty"`
}

func loadValidator() (*validation.Validator, error) {
	opts, err := validation.LoadPolicy(viper.GetString("validate.policy"))
	if err != nil {
		return nil, errx.Wrap(ErrLoadPolicy, err)
	}
	if s := viper.GetString("validate.strictness"); s != "" {
		opts.Strictness, err = validation.ParseStrictness(s)
		if err != nil {
			return nil, errx.Wrap(ErrLoadPolicy, err)
		}
	}
	return validation.NewValidator(opts, logger), nil
}

// validateFiles validates every file, at most jobs at a time, and keeps the
// results in argument order.
func validateFiles(v *validation.Validator, files []string, jobs int) []validated {
	out := make([]validated, len(files))
	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, file := range files {
		g.Go(func() error {
			r := v.ValidateFile(file)
			out[i] = validated{File: file, Reason: r.Reason, Detail: resultDetail(r)}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func resultDetail(r validation.Result) string {
	switch {
	case r.Cause != nil:
		return r.Cause.Error()
	case r.ForbiddenEntry != "":
		return r.ForbiddenEntry
	case r.ForbiddenACHandling != api.ACHandlingUnset:
		return r.ForbiddenACHandling.String()
	case r.InvalidRoot != nil:
		return r.InvalidRoot.Path
	}
	return ""
}

func runValidate(cmd *cobra.Command, args []string) error {
	v, err := loadValidator()
	if err != nil {
		return err
	}

	results := validateFiles(v, args, viper.GetInt("validate.jobs"))
	failed := 0
	for _, r := range results {
		if r.Reason != validation.ReasonSuccess {
			failed++
		}
	}

	if err := render(cmd.OutOrStdout(), results, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "FILE\tRESULT\tDETAIL")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.File, r.Reason, r.Detail)
		}
	}); err != nil {
		return err
	}
	if failed > 0 {
		return commandExit(exitInvalid)
	}
	return nil
}
