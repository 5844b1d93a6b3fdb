// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"errors"
	"fmt"
)

const (
	// DebugInSettingsModule means the target namespace already defines DEBUG.
	DebugInSettingsModule DebugFlagReason = iota + 1
	// DebugInConfiguration means DEBUG was set directly in the deployment options.
	DebugInConfiguration
	// DebugMissing means the global "debug" option is absent.
	DebugMissing
	// DebugNotBoolean means the global "debug" option does not decode to a boolean.
	DebugNotBoolean
)

var (
	// ErrSetting is the common ancestor of every error produced while resolving options.
	ErrSetting = errors.New("setting error")
	// ErrMissingSettingsModule is returned when the global options do not name a settings module.
	ErrMissingSettingsModule = fmt.Errorf("%w: the %q option is not set", ErrSetting, SettingsModuleOption)
	// ErrSettingsModuleNotFound is the sentinel wrapped by SettingsModuleNotFoundError.
	ErrSettingsModuleNotFound = fmt.Errorf("%w: settings module not found", ErrSetting)
	// ErrBadDebugFlag is the sentinel wrapped by BadDebugFlagError.
	ErrBadDebugFlag = fmt.Errorf("%w: bad debug flag", ErrSetting)
	// ErrUnsupportedSetting is the sentinel wrapped by UnsupportedSettingError.
	ErrUnsupportedSetting = fmt.Errorf("%w: unsupported setting", ErrSetting)
	// ErrInvalidSettingValue is the sentinel wrapped by InvalidSettingValueError
	// and MissingReferenceError.
	ErrInvalidSettingValue = fmt.Errorf("%w: invalid setting value", ErrSetting)
)

type (
	// DebugFlagReason tells which debug placement rule was violated.
	DebugFlagReason int

	// SettingsModuleNotFoundError is returned when no namespace is registered
	// or locatable under Name. It wraps ErrSettingsModuleNotFound.
	SettingsModuleNotFoundError struct {
		Name string
	}

	// BadDebugFlagError is returned when DEBUG is defined somewhere other than
	// the global "debug" option. It wraps ErrBadDebugFlag.
	BadDebugFlagError struct {
		Reason DebugFlagReason
	}

	// UnsupportedSettingError is returned when a local option cannot be
	// injected because the target treats it specially. It wraps ErrUnsupportedSetting.
	UnsupportedSettingError struct {
		Name string
	}

	// InvalidSettingValueError is returned when a raw option value is not a
	// JSON literal. It wraps ErrInvalidSettingValue.
	InvalidSettingValueError struct {
		Option string
		Value  string
		Cause  error
	}

	// MissingReferenceError is returned when a local option references a
	// global option that does not exist. It wraps ErrInvalidSettingValue.
	MissingReferenceError struct {
		Option    string
		Reference string
	}
)

// String returns the human-readable message for the reason.
func (r DebugFlagReason) String() string {
	switch r {
	case DebugInSettingsModule:
		return `Settings modules must not define "DEBUG". It must be set in the PasteDeploy configuration file as "debug".`
	case DebugInConfiguration:
		return `Django's "DEBUG" setting must not be set in the configuration file; use Paste's "debug" instead`
	case DebugMissing:
		return `Paste's "debug" option must be set in the configuration file`
	case DebugNotBoolean:
		return `Paste's "debug" option must be a JSON boolean ("true" or "false")`
	default:
		return "unknown debug flag problem"
	}
}

// Error implements the error interface for SettingsModuleNotFoundError.
func (e *SettingsModuleNotFoundError) Error() string {
	return fmt.Sprintf("settings module %q could not be found", e.Name)
}

// Unwrap returns ErrSettingsModuleNotFound for errors.Is() compatibility.
func (e *SettingsModuleNotFoundError) Unwrap() error { return ErrSettingsModuleNotFound }

// Error implements the error interface for BadDebugFlagError.
func (e *BadDebugFlagError) Error() string {
	return e.Reason.String()
}

// Unwrap returns ErrBadDebugFlag for errors.Is() compatibility.
func (e *BadDebugFlagError) Unwrap() error { return ErrBadDebugFlag }

// Error implements the error interface for UnsupportedSettingError.
func (e *UnsupportedSettingError) Error() string {
	return fmt.Sprintf("setting %s is not (yet) supported; you have to define it in your settings module", e.Name)
}

// Unwrap returns ErrUnsupportedSetting for errors.Is() compatibility.
func (e *UnsupportedSettingError) Unwrap() error { return ErrUnsupportedSetting }

// Error implements the error interface for InvalidSettingValueError.
func (e *InvalidSettingValueError) Error() string {
	msg := fmt.Sprintf("could not decode value for option %q: %q", e.Option, e.Value)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns ErrInvalidSettingValue for errors.Is() compatibility.
// The JSON syntax error is kept in Cause.
func (e *InvalidSettingValueError) Unwrap() error { return ErrInvalidSettingValue }

// Error implements the error interface for MissingReferenceError.
func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("option %q references the undefined global option %q", e.Option, e.Reference)
}

// Unwrap returns ErrInvalidSettingValue for errors.Is() compatibility.
func (e *MissingReferenceError) Unwrap() error { return ErrInvalidSettingValue }
