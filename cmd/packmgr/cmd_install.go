package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/deploy"
	"github.com/granite-tools/packmgr/pkg/history"
	"github.com/granite-tools/packmgr/pkg/sdk"
	"github.com/granite-tools/packmgr/pkg/validation"
)

var installCmd = &cobra.Command{
	Use:   "install <package>",
	Short: "Install a package",
	Long: `Install a package.

<package> is either a package id already on the server or a package file.
A file is uploaded first; with --policy it is validated before the upload
and a failing package is neither uploaded nor installed (exit status 3).`,
	Example: `  packmgr install --policy policy.yaml --recursive site-content-1.0.zip
  packmgr install --ac-handling merge_preserve acme:site-content:1.0`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().Bool("recursive", false, "Also install subpackages")
	installCmd.Flags().Int("autosave", sdk.MinAutosave, "Nodes between intermediate saves")
	installCmd.Flags().String("ac-handling", "", "Access control handling (ignore, overwrite, merge, merge_preserve, clear)")
	installCmd.Flags().BoolP("force", "f", false, "Replace the package on the server when uploading a file")
	installCmd.Flags().String("policy", "", "Deployment policy to validate a package file against")

	viper.BindPFlag("install.recursive", installCmd.Flags().Lookup("recursive"))
	viper.BindPFlag("install.autosave", installCmd.Flags().Lookup("autosave"))
	viper.BindPFlag("install.ac-handling", installCmd.Flags().Lookup("ac-handling"))
	viper.BindPFlag("install.force", installCmd.Flags().Lookup("force"))
	viper.BindPFlag("install.policy", installCmd.Flags().Lookup("policy"))
	rootCmd.AddCommand(installCmd)
}

func installBuilder() (*sdk.InstallBuilder, error) {
	b := sdk.NewInstall().WithAutosave(viper.GetInt("install.autosave"))
	if viper.GetBool("install.recursive") {
		b.Recursive()
	}
	if s := viper.GetString("install.ac-handling"); s != "" {
		mode, err := api.ParseACHandling(s)
		if err != nil {
			return nil, err
		}
		b.WithACHandling(mode)
	}
	return b, nil
}

func loadPolicyValidator() (*validation.Validator, error) {
	path := viper.GetString("install.policy")
	if path == "" {
		return nil, nil
	}
	opts, err := validation.LoadPolicy(path)
	if err != nil {
		return nil, errx.Wrap(ErrLoadPolicy, err)
	}
	return validation.NewValidator(opts, logger), nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, err := installBuilder()
	if err != nil {
		return err
	}
	id, file, err := resolvePackage(args[0])
	if err != nil {
		return err
	}

	opts := []deploy.Option{
		deploy.WithLogger(logger),
		deploy.WithListener(progressListener(cmd.ErrOrStderr())),
	}
	if file != "" {
		v, err := loadPolicyValidator()
		if err != nil {
			return err
		}
		if v != nil {
			opts = append(opts, deploy.WithValidator(v))
		}
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if file == "" {
		exists, err := s.client.ExistsOnServer(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return errx.With(ErrNotOnServer, ": %s", id)
		}
	}

	out, err := deploy.NewPipeline(s.client, opts...).Run(ctx, deploy.Request{
		File:    file,
		ID:      id,
		Force:   viper.GetBool("install.force"),
		Install: b.Options(),
	})
	if out != nil && out.Upload != nil {
		s.record(ctx, history.FromSimple(s.client.BaseURL(), string(sdk.CmdUpload), id, out.Upload))
	}
	if err != nil {
		return err
	}
	if out.Phase == deploy.PhaseRejected {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", file, out.Validation)
		return commandExit(exitInvalid)
	}
	s.record(ctx, history.FromDetailed(s.client.BaseURL(), string(sdk.CmdInstall), id, out.Install))

	if err := render(cmd.OutOrStdout(), out.Install, func(tw *tabwriter.Writer) {
		printDetailed(tw, id, out.Install)
		fmt.Fprintf(tw, "Phase:\t%s\n", out.Phase)
	}); err != nil {
		return err
	}
	if !out.Succeeded() {
		return commandExit(exitCommandFailed)
	}
	return nil
}
