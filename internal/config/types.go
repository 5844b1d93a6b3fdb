// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// LogLevelDebug logs resolution steps and every applied setting.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs merge warnings and recoverable failures only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs failures only.
	LogLevelError LogLevel = "error"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DatabaseEngineSQLite provisions a file-backed SQLite test database.
	// Defined locally to avoid coupling config to pkg/testdb.
	DatabaseEngineSQLite DatabaseEngine = "sqlite"
	// DatabaseEnginePostgres provisions a PostgreSQL container.
	DatabaseEnginePostgres DatabaseEngine = "postgres"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidDatabaseEngine is returned when a DatabaseEngine value is not recognized.
	ErrInvalidDatabaseEngine = errors.New("invalid test database engine")
	// ErrInvalidSettingsPath is returned for empty or whitespace-only settings paths.
	ErrInvalidSettingsPath = errors.New("invalid settings path")
	// ErrInvalidStartupTimeout is returned when startup_timeout is not a positive duration.
	ErrInvalidStartupTimeout = errors.New("invalid startup timeout")
	// ErrInvalidTestDatabaseConfig is the sentinel error wrapped by InvalidTestDatabaseConfigError.
	ErrInvalidTestDatabaseConfig = errors.New("invalid test database config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of the CLI logger.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// DatabaseEngine selects the disposable test database implementation.
	DatabaseEngine string

	// InvalidDatabaseEngineError is returned when a DatabaseEngine value is not recognized.
	InvalidDatabaseEngineError struct {
		Value DatabaseEngine
	}

	// InvalidSettingsPathError is returned for a blank settings_paths entry.
	InvalidSettingsPathError struct {
		Index int
	}

	// InvalidStartupTimeoutError is returned when startup_timeout does not
	// parse as a positive duration.
	InvalidStartupTimeoutError struct {
		Value string
		Cause error
	}

	// InvalidTestDatabaseConfigError aggregates test_database field errors.
	InvalidTestDatabaseConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError aggregates every field error of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the tool configuration.
	Config struct {
		// SettingsPaths are the roots searched for settings modules, in order.
		SettingsPaths []string `json:"settings_paths" mapstructure:"settings_paths"`
		// LogLevel is the minimum level of the CLI logger. --verbose forces debug.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// TestDatabase configures the database created by `pastesettings test`.
		TestDatabase TestDatabaseConfig `json:"test_database" mapstructure:"test_database"`
	}

	// UIConfig contains UI-related configuration.
	UIConfig struct {
		// ColorScheme sets the color scheme used to render issues.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging by default.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// TestDatabaseConfig configures the disposable test database.
	TestDatabaseConfig struct {
		Engine DatabaseEngine `json:"engine" mapstructure:"engine"`
		// Image is the PostgreSQL container image.
		Image string `json:"image" mapstructure:"image"`
		// Name is the database name, and the file name for SQLite.
		Name     string `json:"name" mapstructure:"name"`
		User     string `json:"user" mapstructure:"user"`
		Password string `json:"password,omitempty" mapstructure:"password"`
		// Keep retains the database between runs.
		Keep bool `json:"keep" mapstructure:"keep"`
		// Dir is where SQLite databases are created. Empty means a temp dir,
		// or the user cache dir when Keep is set.
		Dir string `json:"dir,omitempty" mapstructure:"dir"`
		// StartupTimeout bounds container readiness, as a Go duration string.
		StartupTimeout string `json:"startup_timeout" mapstructure:"startup_timeout"`
	}
)

func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func (de DatabaseEngine) String() string { return string(de) }

// IsValid returns whether the DatabaseEngine is supported.
func (de DatabaseEngine) IsValid() (bool, []error) {
	switch de {
	case DatabaseEngineSQLite, DatabaseEnginePostgres:
		return true, nil
	default:
		return false, []error{&InvalidDatabaseEngineError{Value: de}}
	}
}

func (e *InvalidDatabaseEngineError) Error() string {
	return fmt.Sprintf("invalid test database engine %q (valid: sqlite, postgres)", e.Value)
}

func (e *InvalidDatabaseEngineError) Unwrap() error { return ErrInvalidDatabaseEngine }

func (e *InvalidSettingsPathError) Error() string {
	return fmt.Sprintf("settings_paths[%d]: must not be empty", e.Index)
}

func (e *InvalidSettingsPathError) Unwrap() error { return ErrInvalidSettingsPath }

func (e *InvalidStartupTimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid startup timeout %q: %v", e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid startup timeout %q: must be positive", e.Value)
}

func (e *InvalidStartupTimeoutError) Unwrap() error { return ErrInvalidStartupTimeout }

// Timeout returns StartupTimeout as a duration, or zero when it is unset or
// malformed.
func (c TestDatabaseConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.StartupTimeout)
	if err != nil {
		return 0
	}
	return d
}

// IsValid validates every field of the test database configuration.
func (c TestDatabaseConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Engine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.StartupTimeout != "" {
		d, err := time.ParseDuration(c.StartupTimeout)
		if err != nil || d <= 0 {
			errs = append(errs, &InvalidStartupTimeoutError{Value: c.StartupTimeout, Cause: err})
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidTestDatabaseConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidTestDatabaseConfigError) Error() string {
	return fmt.Sprintf("invalid test database config: %s", joinFieldErrors(e.FieldErrors))
}

func (e *InvalidTestDatabaseConfigError) Unwrap() []error {
	return append([]error{ErrInvalidTestDatabaseConfig}, e.FieldErrors...)
}

// IsValid validates the whole configuration and reports every field error.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	for i, path := range c.SettingsPaths {
		if strings.TrimSpace(path) == "" {
			errs = append(errs, &InvalidSettingsPathError{Index: i})
		}
	}
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.TestDatabase.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s", joinFieldErrors(e.FieldErrors))
}

// Unwrap exposes ErrInvalidConfig and every field error to errors.Is/As.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

func joinFieldErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		SettingsPaths: []string{"."},
		LogLevel:      LogLevelInfo,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
		TestDatabase: TestDatabaseConfig{
			Engine:         DatabaseEngineSQLite,
			Image:          "postgres:16-alpine",
			Name:           "test_pastesettings",
			User:           "postgres",
			Keep:           false,
			StartupTimeout: "60s",
		},
	}
}
