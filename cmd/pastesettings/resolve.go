// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/pastesettings/pastesettings/pkg/pastedeploy"
	"github.com/pastesettings/pastesettings/pkg/settings"

	"github.com/spf13/cobra"
)

// resolvedDocument is the --json output of `resolve`.
type resolvedDocument struct {
	URI            string         `json:"uri"`
	Use            string         `json:"use,omitempty"`
	SettingsModule string         `json:"settings_module"`
	Settings       map[string]any `json:"settings"`
}

func newResolveCommand(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <config-uri>",
		Short: "Show the settings an application would merge into its settings module",
		Long: `Resolve reads the application addressed by a config URI, substitutes
references to [DEFAULT] options and decodes every option as JSON. The
settings module is located but not modified.

` + SubtitleStyle.Render("Examples:") + `
  pastesettings resolve config:development.ini
  pastesettings resolve development.ini#api --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(app.runResolve(args[0], asJSON))
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the resolved settings as JSON")
	return cmd
}

func (a *App) runResolve(rawURI string, asJSON bool) error {
	loader := a.newLoader()

	appCfg, err := loader.AppConfig(rawURI)
	if err != nil {
		return err
	}

	resolved, err := loader.Resolver().Resolve(appCfg.Global, appCfg.Local)
	if err != nil {
		return issueFor(err, "resolve settings", appCfg.URI.String(),
			"run with --verbose to see which option failed",
			"every option value must be a JSON literal; quote strings")
	}

	doc := resolvedDocument{
		URI:            appCfg.URI.String(),
		Use:            appCfg.Use,
		SettingsModule: appCfg.Global[settings.SettingsModuleOption],
		Settings:       resolved,
	}
	if asJSON {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	return a.printResolved(doc)
}

func (a *App) printResolved(doc resolvedDocument) error {
	fmt.Fprintf(a.stdout, "%s %s\n", KeyStyle.Render("application:"), doc.URI)
	if doc.Use != "" {
		fmt.Fprintf(a.stdout, "%s %s\n", KeyStyle.Render("use:"), pastedeploy.NormalizeSpec(doc.Use))
	}
	fmt.Fprintf(a.stdout, "%s %s\n\n", KeyStyle.Render("settings module:"), doc.SettingsModule)

	for _, name := range settings.ResolvedOptions(doc.Settings).Names() {
		value, err := json.Marshal(doc.Settings[name])
		if err != nil {
			return fmt.Errorf("encode setting %s: %w", name, err)
		}
		fmt.Fprintf(a.stdout, "  %s = %s\n", KeyStyle.Render(name), value)
	}
	return nil
}
