// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pastesettings/pastesettings/internal/issue"
	"github.com/pastesettings/pastesettings/internal/testutil"
)

func load(t *testing.T, opts LoadOptions) (*Config, string, error) {
	t.Helper()
	return loadWithOptions(context.Background(), opts)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if !reflect.DeepEqual(cfg.SettingsPaths, []string{"."}) {
		t.Errorf("SettingsPaths = %v, want [.]", cfg.SettingsPaths)
	}
	if cfg.LogLevel != LogLevelInfo {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.TestDatabase.Engine != DatabaseEngineSQLite {
		t.Errorf("TestDatabase.Engine = %q, want sqlite", cfg.TestDatabase.Engine)
	}
	if cfg.TestDatabase.Timeout() != time.Minute {
		t.Errorf("TestDatabase.Timeout() = %v, want 1m", cfg.TestDatabase.Timeout())
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("DefaultConfig() is invalid: %v", errs)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := load(t, LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("load() returned error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("load() = %+v, want defaults", cfg)
	}
}

func TestLoad_ConfigDirFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := testutil.MustWriteFile(t, dir, "config.cue", `
settings_paths: ["/srv/app", "/srv/shared"]
log_level: "debug"
test_database: {
	engine: "postgres"
	keep: true
}
`)

	cfg, path, err := load(t, LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("load() returned error: %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}
	if !reflect.DeepEqual(cfg.SettingsPaths, []string{"/srv/app", "/srv/shared"}) {
		t.Errorf("SettingsPaths = %v", cfg.SettingsPaths)
	}
	if cfg.LogLevel != LogLevelDebug {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.TestDatabase.Engine != DatabaseEnginePostgres || !cfg.TestDatabase.Keep {
		t.Errorf("TestDatabase = %+v", cfg.TestDatabase)
	}
	// Omitted fields keep their defaults.
	if cfg.TestDatabase.Image != "postgres:16-alpine" || cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Parallel()

	path := testutil.MustWriteFile(t, t.TempDir(), "custom.cue", `ui: color_scheme: "light"`)
	cfg, resolved, err := load(t, LoadOptions{ConfigFilePath: path, ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("load() returned error: %v", err)
	}
	if resolved != path || cfg.UI.ColorScheme != ColorSchemeLight {
		t.Errorf("load() = %+v from %q", cfg.UI, resolved)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		missing bool
		want    string
	}{
		{name: "missing explicit file", missing: true, want: "config file not found"},
		{name: "syntax error", content: `log_level: "debug`, want: "load configuration"},
		{name: "schema violation", content: `log_level: "verbose"`, want: "log_level"},
		{name: "unknown field", content: `containers: true`, want: "containers"},
		{name: "bad database name", content: `test_database: name: "my-db"`, want: "test_database.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.cue")
			if !tt.missing {
				path = testutil.MustWriteFile(t, filepath.Dir(path), "config.cue", tt.content)
			}

			_, _, err := load(t, LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("load() should fail")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be an ActionableError, got %T: %v", err, err)
			}
			if !ae.HasSuggestions() {
				t.Error("error should carry suggestions")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

// Environment tests cannot run in parallel.

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PASTESETTINGS_LOG_LEVEL", "warn")
	t.Setenv("PASTESETTINGS_TEST_DATABASE_ENGINE", "postgres")
	t.Setenv("PASTESETTINGS_UI_VERBOSE", "true")

	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "config.cue", `log_level: "debug"`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.LogLevel != LogLevelWarn {
		t.Errorf("LogLevel = %q, want the environment to win", cfg.LogLevel)
	}
	if cfg.TestDatabase.Engine != DatabaseEnginePostgres || !cfg.UI.Verbose {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	t.Setenv("PASTESETTINGS_TEST_DATABASE_ENGINE", "mysql")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidDatabaseEngine) {
		t.Fatalf("Load() error = %v, want ErrInvalidDatabaseEngine", err)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error should also match ErrInvalidConfig")
	}
}

func TestConfigDirEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnv, dir)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}

	path, err := Path(LoadOptions{})
	if err != nil {
		t.Fatalf("Path() returned error: %v", err)
	}
	if path != filepath.Join(dir, "config.cue") {
		t.Errorf("Path() = %q", path)
	}
}

func TestCreateDefaultConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	opts := LoadOptions{ConfigDirPath: filepath.Join(dir, "nested")}

	path, created, err := CreateDefaultConfig(opts)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() returned error: %v", err)
	}
	if !created {
		t.Error("CreateDefaultConfig() should create the file")
	}

	cfg, resolved, err := load(t, opts)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("round trip = %+v, want defaults", cfg)
	}

	if _, created, err := CreateDefaultConfig(opts); err != nil || created {
		t.Errorf("second CreateDefaultConfig() = created %v, err %v", created, err)
	}
}

func TestGenerateCUE(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TestDatabase.Password = "s3cret"
	cfg.TestDatabase.Dir = "/var/cache/testdb"
	out := GenerateCUE(cfg)

	for _, want := range []string{
		`settings_paths: ["."]`,
		`log_level: "info"`,
		"\tcolor_scheme: \"auto\"\n",
		"\tengine: \"sqlite\"\n",
		"\tpassword: \"s3cret\"\n",
		"\tdir: \"/var/cache/testdb\"\n",
		"\tstartup_timeout: \"60s\"\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("GenerateCUE() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(GenerateCUE(DefaultConfig()), "password") {
		t.Error("an empty password should be omitted")
	}
}
