// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"testing"

	"github.com/pastesettings/pastesettings/internal/issue"
	"github.com/pastesettings/pastesettings/pkg/pastedeploy"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand(NewApp(Dependencies{}))
	for _, name := range []string{"resolve", "export", "serve", "test", "config"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (err: %v)", name, err)
		}
	}
	for _, flag := range []string{"verbose", "config", "log-format"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s not registered", flag)
		}
	}
}

func TestApp_Fail(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{})

	if err := app.fail(nil); err != nil {
		t.Errorf("fail(nil) = %v, want nil", err)
	}

	err := app.fail(pastedeploy.ErrInvalidURI)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("fail() = %T, want *ServiceError", err)
	}
	if svcErr.IssueID != issue.InvalidConfigURIId {
		t.Errorf("IssueID = %d, want InvalidConfigURIId", svcErr.IssueID)
	}
	if svcErr.StyledMessage != "" {
		t.Errorf("StyledMessage = %q, want empty outside verbose mode", svcErr.StyledMessage)
	}

	err = app.fail(&ExitError{Code: 3, Err: errors.New("tests failed")})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Fatalf("fail() = %v, want ExitError with code 3", err)
	}
	if !errors.As(err, &svcErr) {
		t.Error("the exit error should carry a ServiceError")
	}
}

func TestApp_FailVerbose(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{})
	app.verbose = true

	var svcErr *ServiceError
	if !errors.As(app.fail(errors.New("boom")), &svcErr) {
		t.Fatal("fail() should return a ServiceError")
	}
	if svcErr.StyledMessage == "" {
		t.Error("verbose mode should carry the styled message")
	}
}
