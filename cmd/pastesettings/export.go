// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/pastesettings/pastesettings/internal/confvars"
	"github.com/pastesettings/pastesettings/pkg/pastedeploy"

	"github.com/spf13/cobra"
)

func newExportCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <config-uri>",
		Short: "Export the decoded options of an application",
		Long: `Export decodes the local options of an application and prints them as
plain string variables. Strings are printed verbatim, scalars in their
literal form, lists and objects as compact JSON. No settings module is
needed.

` + SubtitleStyle.Render("Examples:") + `
  eval "$(pastesettings export config:production.ini -f env)"
  pastesettings export production.ini#api -f yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(app.runExport(args[0], format))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(confvars.FormatEnv), "output format: env, json, yaml or toml")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		formats := confvars.Formats()
		out := make([]string, len(formats))
		for i, f := range formats {
			out[i] = string(f)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func (a *App) runExport(rawURI, rawFormat string) error {
	format, err := confvars.ParseFormat(rawFormat)
	if err != nil {
		return err
	}

	uri, err := pastedeploy.ParseURI(rawURI, "")
	if err != nil {
		return err
	}
	appCfg, err := pastedeploy.ReadAppConfig(uri)
	if err != nil {
		return err
	}

	vars, err := confvars.Decode(appCfg.Global, appCfg.Local)
	if err != nil {
		return issueFor(err, "export options", uri.String(),
			"every option value must be a JSON literal; quote strings")
	}

	a.logger.Debug("exporting options", "uri", uri.String(), "format", format, "count", len(vars))
	if err := confvars.Write(a.stdout, vars, format); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}
