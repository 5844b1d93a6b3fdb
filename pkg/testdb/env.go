// SPDX-License-Identifier: MPL-2.0

package testdb

import (
	"fmt"
	"strings"
	"time"
)

// Environment variables carrying the database selection into test binaries.
// They match the PASTESETTINGS_TEST_DATABASE_* overrides of the tool config.
const (
	EngineEnv         = "PASTESETTINGS_TEST_DATABASE_ENGINE"
	ImageEnv          = "PASTESETTINGS_TEST_DATABASE_IMAGE"
	NameEnv           = "PASTESETTINGS_TEST_DATABASE_NAME"
	UserEnv           = "PASTESETTINGS_TEST_DATABASE_USER"
	PasswordEnv       = "PASTESETTINGS_TEST_DATABASE_PASSWORD"
	DirEnv            = "PASTESETTINGS_TEST_DATABASE_DIR"
	StartupTimeoutEnv = "PASTESETTINGS_TEST_DATABASE_STARTUP_TIMEOUT"
)

// FromEnv reads the engine and options through getenv. Unset variables
// leave the defaults of New in place; Keep and Logger are not carried.
func FromEnv(getenv func(string) string) (Engine, Options, error) {
	engine, err := ParseEngine(getenv(EngineEnv))
	if err != nil {
		return "", Options{}, err
	}

	opts := Options{
		Image:    strings.TrimSpace(getenv(ImageEnv)),
		Name:     strings.TrimSpace(getenv(NameEnv)),
		User:     strings.TrimSpace(getenv(UserEnv)),
		Password: getenv(PasswordEnv),
		Dir:      strings.TrimSpace(getenv(DirEnv)),
	}
	if raw := strings.TrimSpace(getenv(StartupTimeoutEnv)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return "", Options{}, fmt.Errorf("%s: %w", StartupTimeoutEnv, err)
		}
		opts.StartupTimeout = d
	}
	return engine, opts, nil
}

// Environ returns the variables that make FromEnv reproduce engine and opts.
// Empty fields are omitted.
func Environ(engine Engine, opts Options) []string {
	env := []string{EngineEnv + "=" + string(engine)}
	add := func(key, value string) {
		if value != "" {
			env = append(env, key+"="+value)
		}
	}
	add(ImageEnv, opts.Image)
	add(NameEnv, opts.Name)
	add(UserEnv, opts.User)
	add(PasswordEnv, opts.Password)
	add(DirEnv, opts.Dir)
	if opts.StartupTimeout > 0 {
		add(StartupTimeoutEnv, opts.StartupTimeout.String())
	}
	return env
}
