// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pastesettings/pastesettings/internal/config"

	"github.com/spf13/cobra"
)

// settableKeys lists the keys accepted by `config set`.
var settableKeys = []string{
	"log_level",
	"ui.color_scheme",
	"ui.verbose",
	"test_database.engine",
	"test_database.image",
	"test_database.name",
	"test_database.user",
	"test_database.password",
	"test_database.keep",
	"test_database.dir",
	"test_database.startup_timeout",
}

// newConfigCommand creates the `pastesettings config` command tree. The
// configuration shown is the one loaded by the root command.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pastesettings configuration",
		Long: `Manage pastesettings configuration.

Configuration is stored in:
  - Linux: ~/.config/pastesettings/config.cue
  - macOS: ~/Library/Application Support/pastesettings/config.cue
  - Windows: %APPDATA%\pastesettings\config.cue

Every value can be overridden with a PASTESETTINGS_* environment variable,
for example PASTESETTINGS_TEST_DATABASE_ENGINE=postgres.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(app.showConfig(flags))
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(app.initConfig(flags))
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path(config.LoadOptions{ConfigFilePath: flags.cfgFile})
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: settableKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(app.setConfigValue(flags, args[0], args[1]))
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(app.stdout, config.GenerateCUE(app.cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig(flags *rootFlags) error {
	cfg := a.cfg
	keyStyle := KeyStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(a.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(a.stdout)

	path, err := config.Path(config.LoadOptions{ConfigFilePath: flags.cfgFile})
	if err != nil {
		return err
	}
	if fileExistsCheck(path) {
		fmt.Fprintf(a.stdout, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(a.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(a.stdout)

	fmt.Fprintf(a.stdout, "%s:\n", keyStyle.Render("settings_paths"))
	for _, p := range cfg.SettingsPaths {
		fmt.Fprintf(a.stdout, "  - %s\n", valueStyle.Render(p))
	}
	fmt.Fprintf(a.stdout, "%s: %s\n", keyStyle.Render("log_level"), valueStyle.Render(cfg.LogLevel.String()))

	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(a.stdout, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(a.stdout, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))

	db := cfg.TestDatabase
	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "%s:\n", keyStyle.Render("test_database"))
	fmt.Fprintf(a.stdout, "  engine: %s\n", valueStyle.Render(db.Engine.String()))
	fmt.Fprintf(a.stdout, "  name: %s\n", valueStyle.Render(db.Name))
	if db.Engine == config.DatabaseEnginePostgres {
		fmt.Fprintf(a.stdout, "  image: %s\n", valueStyle.Render(db.Image))
		fmt.Fprintf(a.stdout, "  user: %s\n", valueStyle.Render(db.User))
		if db.Password != "" {
			fmt.Fprintf(a.stdout, "  password: %s\n", valueStyle.Render("********"))
		}
		fmt.Fprintf(a.stdout, "  startup_timeout: %s\n", valueStyle.Render(db.StartupTimeout))
	} else if db.Dir != "" {
		fmt.Fprintf(a.stdout, "  dir: %s\n", valueStyle.Render(db.Dir))
	}
	fmt.Fprintf(a.stdout, "  keep: %s\n", valueStyle.Render(strconv.FormatBool(db.Keep)))

	return nil
}

func (a *App) initConfig(flags *rootFlags) error {
	path, created, err := config.CreateDefaultConfig(config.LoadOptions{ConfigFilePath: flags.cfgFile})
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	if !created {
		fmt.Fprintf(a.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(a.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

// setConfigValue writes the effective configuration with key changed.
// Environment overrides in effect are persisted too.
func (a *App) setConfigValue(flags *rootFlags, key, value string) error {
	cfg := *a.cfg
	cfg.SettingsPaths = append([]string(nil), a.cfg.SettingsPaths...)

	switch key {
	case "log_level":
		cfg.LogLevel = config.LogLevel(value)
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	case "ui.verbose":
		cfg.UI.Verbose = parseBoolValue(value)
	case "test_database.engine":
		cfg.TestDatabase.Engine = config.DatabaseEngine(value)
	case "test_database.image":
		cfg.TestDatabase.Image = value
	case "test_database.name":
		cfg.TestDatabase.Name = value
	case "test_database.user":
		cfg.TestDatabase.User = value
	case "test_database.password":
		cfg.TestDatabase.Password = value
	case "test_database.keep":
		cfg.TestDatabase.Keep = parseBoolValue(value)
	case "test_database.dir":
		cfg.TestDatabase.Dir = value
	case "test_database.startup_timeout":
		cfg.TestDatabase.StartupTimeout = value
	default:
		return fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(settableKeys, ", "))
	}

	if valid, errs := cfg.IsValid(); !valid {
		return errors.Join(errs...)
	}

	path, err := config.Path(config.LoadOptions{ConfigFilePath: flags.cfgFile})
	if err != nil {
		return err
	}
	if err := config.Save(path, &cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	a.cfg = &cfg
	fmt.Fprintf(a.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}

func parseBoolValue(value string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && b
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
