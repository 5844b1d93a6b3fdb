// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"maps"
	"net"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/pastesettings/pastesettings/internal/config"
	"github.com/pastesettings/pastesettings/internal/issue"
	"github.com/pastesettings/pastesettings/internal/testutil"
	"github.com/pastesettings/pastesettings/pkg/pastedeploy"
	"github.com/pastesettings/pastesettings/pkg/settings"
	"github.com/pastesettings/pastesettings/pkg/testdb"
	"github.com/pastesettings/pastesettings/pkg/testrunner"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

func TestResolveCommand(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	app, _, stdout, _ := newTestApp(t, fx.dir)

	if err := execute(app, "resolve", "config:"+fx.descriptor); err != nil {
		t.Fatalf("resolve returned error: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"settings module: myproject.settings",
		"egg:pastesettings#main",
		`SITE_URL = "https://example.com/"`,
		"CACHE_TTL = 300",
		`INSTALLED_APPS = ["api"]`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestResolveCommand_JSON(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	app, _, stdout, _ := newTestApp(t, fx.dir)

	if err := execute(app, "resolve", fx.descriptor+"#main", "--json"); err != nil {
		t.Fatalf("resolve --json returned error: %v", err)
	}

	var doc resolvedDocument
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if doc.SettingsModule != "myproject.settings" {
		t.Errorf("SettingsModule = %q", doc.SettingsModule)
	}
	if doc.URI != "config:"+fx.descriptor+"#main" {
		t.Errorf("URI = %q", doc.URI)
	}
	if doc.Settings["SITE_URL"] != "https://example.com/" {
		t.Errorf("SITE_URL = %v", doc.Settings["SITE_URL"])
	}
	if doc.Settings[settings.DebugSetting] != false {
		t.Errorf("DEBUG = %v, want false", doc.Settings[settings.DebugSetting])
	}
}

func TestResolveCommand_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		uri       func(fx fixture) string
		emptyPath bool
		wantIssue issue.Id
		wantErr   error
	}{
		{
			name:      "unsupported scheme",
			uri:       func(fixture) string { return "egg:myproject" },
			wantIssue: issue.InvalidConfigURIId,
			wantErr:   pastedeploy.ErrInvalidURI,
		},
		{
			name:      "missing descriptor",
			uri:       func(fx fixture) string { return filepath.Join(fx.dir, "missing.ini") },
			wantIssue: issue.DescriptorNotFoundId,
		},
		{
			name:      "unknown application",
			uri:       func(fx fixture) string { return fx.descriptor + "#admin" },
			wantIssue: issue.AppNotFoundId,
			wantErr:   pastedeploy.ErrAppNotFound,
		},
		{
			name:      "invalid value",
			uri:       func(fx fixture) string { return fx.descriptor + "#broken" },
			wantIssue: issue.InvalidSettingValueId,
			wantErr:   settings.ErrInvalidSettingValue,
		},
		{
			name:      "settings module not found",
			uri:       func(fx fixture) string { return fx.descriptor },
			emptyPath: true,
			wantIssue: issue.SettingsModuleNotFoundId,
			wantErr:   settings.ErrSettingsModuleNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fx := newFixture(t)
			settingsPath := fx.dir
			if tt.emptyPath {
				settingsPath = t.TempDir()
			}
			app, _, _, _ := newTestApp(t, settingsPath)

			err := execute(app, "resolve", tt.uri(fx))
			var svcErr *ServiceError
			if !errors.As(err, &svcErr) {
				t.Fatalf("resolve error = %v, want a ServiceError", err)
			}
			if svcErr.IssueID != tt.wantIssue {
				t.Errorf("IssueID = %d, want %d (err: %v)", svcErr.IssueID, tt.wantIssue, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExportCommand(t *testing.T) {
	t.Parallel()

	want := map[string]string{
		"SITE_URL":       "https://example.com/",
		"CACHE_TTL":      "300",
		"INSTALLED_APPS": `["api"]`,
	}
	decoders := map[string]func([]byte, *map[string]string) error{
		"json": func(b []byte, v *map[string]string) error { return json.Unmarshal(b, v) },
		"yaml": func(b []byte, v *map[string]string) error { return yaml.Unmarshal(b, v) },
		"toml": func(b []byte, v *map[string]string) error { return toml.Unmarshal(b, v) },
	}

	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			t.Parallel()

			fx := newFixture(t)
			// Export needs no settings module.
			app, _, stdout, _ := newTestApp(t, t.TempDir())

			if err := execute(app, "export", fx.descriptor, "-f", format); err != nil {
				t.Fatalf("export returned error: %v", err)
			}
			var got map[string]string
			if err := decode(stdout.Bytes(), &got); err != nil {
				t.Fatalf("output does not decode: %v\n%s", err, stdout)
			}
			if !maps.Equal(got, want) {
				t.Errorf("export -f %s = %v, want %v", format, got, want)
			}
		})
	}

	t.Run("env", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		app, _, stdout, _ := newTestApp(t, t.TempDir())

		if err := execute(app, "export", fx.descriptor); err != nil {
			t.Fatalf("export returned error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		if len(lines) != 3 || lines[0] != "CACHE_TTL=300" || !strings.HasPrefix(lines[2], "SITE_URL=") {
			t.Errorf("env output = %q", lines)
		}
	})
}

func TestExportCommand_UnknownFormat(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	app, _, _, _ := newTestApp(t, fx.dir)

	if err := execute(app, "export", fx.descriptor, "--format", "xml"); err == nil {
		t.Fatal("export should reject an unknown format")
	}
}

func TestTestCommand(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	app, runner, _, _ := newTestApp(t, fx.dir)

	err := execute(app, "test", "--paste-config-uri", fx.descriptor+"#main", "--no-db", "./internal/...", "--", "-run", "TestViews")
	if err != nil {
		t.Fatalf("test returned error: %v", err)
	}
	if len(runner.requests) != 1 {
		t.Fatalf("go test ran %d times, want 1", len(runner.requests))
	}

	req := runner.requests[0]
	if want := []string{"./internal/...", "-run", "TestViews"}; !slices.Equal(req.Args, want) {
		t.Errorf("Args = %q, want %q", req.Args, want)
	}
	for _, want := range []string{
		testrunner.ConfigURIEnv + "=config:" + fx.descriptor + "#main",
		testrunner.NoDBEnv + "=true",
		testrunner.KeepDBEnv + "=false",
		testdb.EngineEnv + "=sqlite",
		testdb.NameEnv + "=test_pastesettings",
		testdb.StartupTimeoutEnv + "=1m0s",
	} {
		if !slices.Contains(req.Env, want) {
			t.Errorf("Env missing %q: %q", want, req.Env)
		}
	}
}

func TestTestCommand_Defaults(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	app, runner, _, _ := newTestApp(t, fx.dir)
	provider := app.Config.(*fakeConfigProvider)
	provider.cfg.TestDatabase.Keep = true
	provider.cfg.TestDatabase.Engine = config.DatabaseEnginePostgres

	if err := execute(app, "test", "--paste-config-uri", fx.descriptor); err != nil {
		t.Fatalf("test returned error: %v", err)
	}

	req := runner.requests[0]
	if !slices.Equal(req.Args, []string{"./..."}) {
		t.Errorf("Args = %q, want [./...]", req.Args)
	}
	for _, want := range []string{testrunner.KeepDBEnv + "=true", testdb.EngineEnv + "=postgres"} {
		if !slices.Contains(req.Env, want) {
			t.Errorf("Env missing %q: %q", want, req.Env)
		}
	}
}

func TestTestCommand_Errors(t *testing.T) {
	t.Parallel()

	t.Run("no config URI", func(t *testing.T) {
		t.Parallel()

		app, runner, _, _ := newTestApp(t, t.TempDir())
		err := execute(app, "test")
		var svcErr *ServiceError
		if !errors.As(err, &svcErr) || svcErr.IssueID != issue.ConfigURIMissingId {
			t.Fatalf("test error = %v, want ConfigURIMissingId", err)
		}
		if len(runner.requests) != 0 {
			t.Error("go test should not run without a config URI")
		}
	})

	t.Run("runner error", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		app, runner, _, _ := newTestApp(t, fx.dir)
		boom := errors.New("go: command not found")
		runner.err = boom

		if err := execute(app, "test", "--paste-config-uri", fx.descriptor); !errors.Is(err, boom) {
			t.Fatalf("test error = %v, want %v", err, boom)
		}
	})
}

func TestServe(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	app, _, _, _ := newTestApp(t, fx.dir)

	loader := app.newLoader()
	handler, err := loader.LoadApp(fx.descriptor)
	if err != nil {
		t.Fatalf("LoadApp() returned error: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln, handler) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/settings/SITE_URL")
	if err != nil {
		cancel()
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	testutil.DeferClose(t, resp.Body)()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "https://example.com/") {
		t.Errorf("GET /settings/SITE_URL = %d %s", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() returned error after shutdown: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve() did not stop after cancel")
	}
}

func TestServeCommand_LoadError(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	app, _, _, _ := newTestApp(t, fx.dir)

	err := execute(app, "serve", fx.descriptor+"#admin", "--addr", "127.0.0.1:0")
	if !errors.Is(err, pastedeploy.ErrAppNotFound) {
		t.Fatalf("serve error = %v, want ErrAppNotFound", err)
	}
}

func TestConfigCommands(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.cue")

	t.Run("path", func(t *testing.T) {
		t.Parallel()

		app, _, stdout, _ := newTestApp(t, dir)
		if err := execute(app, "--config", cfgPath, "config", "path"); err != nil {
			t.Fatalf("config path returned error: %v", err)
		}
		if strings.TrimSpace(stdout.String()) != cfgPath {
			t.Errorf("config path = %q, want %q", stdout, cfgPath)
		}
	})

	t.Run("show", func(t *testing.T) {
		t.Parallel()

		app, _, stdout, _ := newTestApp(t, "/srv/settings")
		if err := execute(app, "--config", cfgPath, "config", "show"); err != nil {
			t.Fatalf("config show returned error: %v", err)
		}
		for _, want := range []string{"/srv/settings", "sqlite", "(using defaults)"} {
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("config show missing %q:\n%s", want, stdout)
			}
		}
	})

	t.Run("dump", func(t *testing.T) {
		t.Parallel()

		app, _, stdout, _ := newTestApp(t, "/srv/settings")
		if err := execute(app, "config", "dump"); err != nil {
			t.Fatalf("config dump returned error: %v", err)
		}
		if !strings.Contains(stdout.String(), `settings_paths: ["/srv/settings"]`) {
			t.Errorf("config dump = %s", stdout)
		}
	})
}

func TestConfigInitAndSet(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "nested", "config.cue")
	app, _, stdout, _ := newTestApp(t, ".")

	if err := execute(app, "--config", cfgPath, "config", "init"); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Created default configuration at "+cfgPath) {
		t.Errorf("config init output = %q", stdout)
	}

	if err := execute(app, "--config", cfgPath, "config", "set", "test_database.engine", "postgres"); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}
	cfg, err := config.NewProvider().Load(context.Background(), config.LoadOptions{ConfigFilePath: cfgPath})
	if err != nil {
		t.Fatalf("saved config does not load: %v", err)
	}
	if cfg.TestDatabase.Engine != config.DatabaseEnginePostgres {
		t.Errorf("TestDatabase.Engine = %q, want postgres", cfg.TestDatabase.Engine)
	}

	if err := execute(app, "--config", cfgPath, "config", "set", "test_database.engine", "mysql"); !errors.Is(err, config.ErrInvalidDatabaseEngine) {
		t.Errorf("config set with an invalid engine = %v", err)
	}
	if err := execute(app, "--config", cfgPath, "config", "set", "containers", "true"); err == nil {
		t.Error("config set should reject unknown keys")
	}
}
