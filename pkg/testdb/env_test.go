// SPDX-License-Identifier: MPL-2.0

package testdb

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func envFunc(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestFromEnv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		env        map[string]string
		wantEngine Engine
		wantOpts   Options
		wantErr    error
	}{
		{name: "empty", wantEngine: EngineSQLite},
		{
			name: "postgres",
			env: map[string]string{
				EngineEnv:         "postgres",
				ImageEnv:          "postgres:17",
				NameEnv:           "app_test",
				PasswordEnv:       "secret",
				StartupTimeoutEnv: "90s",
			},
			wantEngine: EnginePostgres,
			wantOpts:   Options{Image: "postgres:17", Name: "app_test", Password: "secret", StartupTimeout: 90 * time.Second},
		},
		{name: "unknown engine", env: map[string]string{EngineEnv: "oracle"}, wantErr: ErrUnknownEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine, opts, err := FromEnv(envFunc(tt.env))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FromEnv() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromEnv() returned error: %v", err)
			}
			if engine != tt.wantEngine || !reflect.DeepEqual(opts, tt.wantOpts) {
				t.Errorf("FromEnv() = %q, %+v, want %q, %+v", engine, opts, tt.wantEngine, tt.wantOpts)
			}
		})
	}
}

func TestFromEnv_BadTimeout(t *testing.T) {
	t.Parallel()

	_, _, err := FromEnv(envFunc(map[string]string{StartupTimeoutEnv: "soon"}))
	if err == nil || !strings.Contains(err.Error(), StartupTimeoutEnv) {
		t.Errorf("FromEnv() error = %v, want it to name %s", err, StartupTimeoutEnv)
	}
}

func TestEnviron_RoundTrip(t *testing.T) {
	t.Parallel()

	opts := Options{Name: "app_test", User: "app", Dir: "/var/cache/testdb", StartupTimeout: 2 * time.Minute}
	env := make(map[string]string)
	for _, kv := range Environ(EnginePostgres, opts) {
		key, value, _ := strings.Cut(kv, "=")
		env[key] = value
	}
	if _, ok := env[PasswordEnv]; ok {
		t.Error("an empty password should not be exported")
	}

	engine, got, err := FromEnv(envFunc(env))
	if err != nil {
		t.Fatalf("FromEnv() returned error: %v", err)
	}
	if engine != EnginePostgres || !reflect.DeepEqual(got, opts) {
		t.Errorf("round trip = %q, %+v, want postgres, %+v", engine, got, opts)
	}
}
