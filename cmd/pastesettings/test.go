// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"slices"

	"github.com/pastesettings/pastesettings/pkg/pastedeploy"
	"github.com/pastesettings/pastesettings/pkg/testdb"
	"github.com/pastesettings/pastesettings/pkg/testrunner"

	"github.com/spf13/cobra"
)

var errConfigURIMissing = errors.New("no config URI given: pass --" + testrunner.ConfigURIFlag)

func newTestCommand(app *App) *cobra.Command {
	var opts testrunner.Options

	cmd := &cobra.Command{
		Use:   "test [packages] [-- go test flags]",
		Short: "Run go test against an application's settings",
		Long: `Test runs ` + "`go test`" + ` with the test plugin configured through the
environment. Test binaries whose TestMain calls testrunner.Main load the
application, apply its settings and provision the configured test database
before any test runs.

Packages default to ./... and arguments after -- go to ` + "`go test`" + ` verbatim.

` + SubtitleStyle.Render("Examples:") + `
  pastesettings test --paste-config-uri config:test.ini
  pastesettings test --paste-config-uri test.ini#api --keep-db ./internal/... -- -run TestViews -count=1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			packages, goFlags := args, []string(nil)
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				packages, goFlags = args[:dash], args[dash:]
			}
			return app.fail(app.runTest(cmd.Context(), opts, packages, goFlags))
		},
	}

	testrunner.RegisterFlags(cmd.Flags(), &opts)
	return cmd
}

func (a *App) runTest(ctx context.Context, opts testrunner.Options, packages, goFlags []string) error {
	if opts.ConfigURI == "" {
		return errConfigURIMissing
	}

	// Test binaries run in their package directory, so relative URIs are
	// made absolute against ours first.
	uri, err := pastedeploy.ParseURI(opts.ConfigURI, "")
	if err != nil {
		return err
	}
	opts.ConfigURI = uri.String()
	opts.KeepDB = opts.KeepDB || a.cfg.TestDatabase.Keep

	if len(packages) == 0 {
		packages = []string{"./..."}
	}
	args := slices.Concat(packages, goFlags)

	db := a.cfg.TestDatabase
	env := append(opts.Environ(), testdb.Environ(testdb.Engine(db.Engine), testdb.Options{
		Name:           db.Name,
		Image:          db.Image,
		User:           db.User,
		Password:       db.Password,
		Dir:            db.Dir,
		StartupTimeout: db.Timeout(),
	})...)

	a.logger.Debug("running go test", "uri", opts.ConfigURI, "engine", db.Engine, "keep_db", opts.KeepDB, "no_db", opts.NoDB, "args", args)

	return exitErrorFrom(a.Tests.Run(ctx, TestRequest{
		Args:   args,
		Env:    env,
		Stdout: a.stdout,
		Stderr: a.stderr,
	}))
}
