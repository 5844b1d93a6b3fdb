// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for pastesettings.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pastesettings/pastesettings/internal/config"
	"github.com/pastesettings/pastesettings/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	verbose   bool
	cfgFile   string
	logFormat string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "pastesettings",
		Short: "Configure settings modules from PasteDeploy descriptors",
		Long: TitleStyle.Render("pastesettings") + SubtitleStyle.Render(" - PasteDeploy descriptors for settings modules") + `

pastesettings reads the [DEFAULT] and [app:*] sections of a PasteDeploy .ini
file, decodes the options as JSON and merges them into the settings module
named by django_settings_module.

` + SubtitleStyle.Render("Examples:") + `
  pastesettings resolve config:development.ini       Show the resolved settings
  pastesettings export development.ini#api -f env    Export decoded options
  pastesettings serve config:development.ini         Serve the settings inspector
  pastesettings test --paste-config-uri config:test.ini ./...`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.initSession(cmd.Context(), flags)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "config file (default is $HOME/.config/pastesettings/config.cue)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format: text, logfmt or json")

	rootCmd.AddCommand(newResolveCommand(app))
	rootCmd.AddCommand(newExportCommand(app))
	rootCmd.AddCommand(newServeCommand(app))
	rootCmd.AddCommand(newTestCommand(app))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		// fang has printed err; add the catalog entry that explains it.
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			renderServiceError(app.stderr, svcErr, app.style, app.logger)
		}

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initSession loads the configuration and builds the logger. A broken
// configuration is reported and replaced by the defaults so that
// `config init` and friends keep working.
func (a *App) initSession(ctx context.Context, flags *rootFlags) error {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.cfgFile})
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, flags.verbose))
		cfg = config.DefaultConfig()
	}

	logger, err := newLogger(a, cfg, flags)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.verbose = flags.verbose || cfg.UI.Verbose
	a.style = string(cfg.UI.ColorScheme)
	if a.style == "" {
		a.style = string(config.ColorSchemeAuto)
	}
	return nil
}

func newLogger(a *App, cfg *config.Config, flags *rootFlags) (*log.Logger, error) {
	level, err := log.ParseLevel(string(cfg.LogLevel))
	if err != nil {
		level = log.InfoLevel
	}
	if flags.verbose || cfg.UI.Verbose {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix:          config.AppName,
		Level:           level,
		ReportTimestamp: flags.logFormat != "text",
	})

	switch strings.ToLower(flags.logFormat) {
	case "", "text":
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	default:
		return nil, fmt.Errorf("unknown log format %q (expected text, logfmt or json)", flags.logFormat)
	}
	return logger, nil
}

// fail classifies err for Execute. In verbose mode the full error chain of
// an ActionableError is rendered as the styled message.
func (a *App) fail(err error) error {
	if err == nil {
		return nil
	}

	issueID, styled := classifyError(err, a.verbose)
	if !a.verbose {
		styled = ""
	}
	svcErr := newServiceError(err, issueID, styled)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.Code, Err: svcErr}
	}
	return svcErr
}

// issueFor wraps err with operation context for display.
func issueFor(err error, operation, resource string, suggestions ...string) error {
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithSuggestions(suggestions...).
		Wrap(err).
		BuildError()
}
