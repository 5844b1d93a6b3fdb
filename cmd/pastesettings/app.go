// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/pastesettings/pastesettings/internal/config"
	"github.com/pastesettings/pastesettings/pkg/pastedeploy"
	"github.com/pastesettings/pastesettings/pkg/settings"
	"github.com/pastesettings/pastesettings/pkg/settingsmodule"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every command handler receives it.
	App struct {
		Config ConfigProvider
		Tests  TestRunner
		stdout io.Writer
		stderr io.Writer

		// Resolved by the root command before any subcommand runs.
		cfg     *config.Config
		logger  *log.Logger
		verbose bool
		// style is the glamour style issues are rendered with.
		style string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Tests  TestRunner
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// TestRunner runs `go test` with extra environment variables.
	TestRunner interface {
		Run(ctx context.Context, req TestRequest) error
	}

	// TestRequest captures one `go test` invocation.
	TestRequest struct {
		// Args are passed to `go test` verbatim.
		Args []string
		// Env is appended to the inherited environment.
		Env    []string
		Stdout io.Writer
		Stderr io.Writer
	}

	// goTestRunner runs the go tool from PATH.
	goTestRunner struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Tests == nil {
		deps.Tests = goTestRunner{}
	}

	return &App{
		Config: deps.Config,
		Tests:  deps.Tests,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		cfg:    config.DefaultConfig(),
		logger: log.NewWithOptions(deps.Stderr, log.Options{Prefix: config.AppName}),
		style:  string(config.ColorSchemeAuto),
	}
}

// Run executes `go test` and returns its *exec.ExitError on test failures.
func (goTestRunner) Run(ctx context.Context, req TestRequest) error {
	c := exec.CommandContext(ctx, "go", append([]string{"test"}, req.Args...)...)
	c.Env = append(os.Environ(), req.Env...)
	c.Stdin = os.Stdin
	c.Stdout = req.Stdout
	c.Stderr = req.Stderr
	return c.Run()
}

// newLoader builds a PasteDeploy loader whose settings modules are found
// under the configured settings paths. Extra resolver options, such as a
// marker, are applied last.
func (a *App) newLoader(opts ...settings.Option) *pastedeploy.Loader {
	registry := settings.NewRegistry()
	for _, root := range a.cfg.SettingsPaths {
		registry.AddLocator(settingsmodule.New(root, settingsmodule.WithLogger(a.logger.WithPrefix("settingsmodule"))))
	}

	resolverOpts := append([]settings.Option{
		settings.WithRegistry(registry),
		settings.WithLogger(a.logger.WithPrefix("settings")),
	}, opts...)

	return pastedeploy.NewLoader(
		settings.NewResolver(resolverOpts...),
		pastedeploy.WithLogger(a.logger.WithPrefix("pastedeploy")),
	)
}
