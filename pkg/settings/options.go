// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"slices"

	"golang.org/x/exp/maps"
)

const (
	// DebugOption is the global option carrying the JSON-encoded debug flag.
	DebugOption = "debug"
	// SettingsModuleOption is the global option naming the settings module.
	SettingsModuleOption = "django_settings_module"
	// ConfigFileOption is the global option carrying the descriptor path.
	ConfigFileOption = "__file__"

	// DebugSetting is the resolved setting mirroring DebugOption.
	DebugSetting = "DEBUG"
	// ConfigFileSetting is the resolved setting mirroring ConfigFileOption.
	ConfigFileSetting = "paste_configuration_file"
)

// UnsupportedSettings lists the settings that may not be set from a
// deployment descriptor because the target gives them special treatment.
var UnsupportedSettings = map[string]struct{}{
	"FILE_UPLOAD_PERMISSIONS": {},
	"LANGUAGES":               {},
	"MESSAGE_TAGS":            {},
}

type (
	// GlobalOptions are the raw options shared by every section of a
	// deployment descriptor.
	GlobalOptions map[string]string

	// LocalOptions are the raw, JSON-encoded options of one application section.
	LocalOptions map[string]string

	// ResolvedOptions maps setting names to decoded JSON values.
	ResolvedOptions map[string]any
)

// Names returns the option names in sorted order.
func (o LocalOptions) Names() []string {
	return sortedKeys(o)
}

// Clone returns a copy that can be modified without touching o.
func (o LocalOptions) Clone() LocalOptions {
	clone := make(LocalOptions, len(o)+1)
	for name, value := range o {
		clone[name] = value
	}
	return clone
}

// Names returns the setting names in sorted order.
func (o ResolvedOptions) Names() []string {
	return sortedKeys(o)
}

// IsUnsupported reports whether name is one of UnsupportedSettings.
func IsUnsupported(name string) bool {
	_, ok := UnsupportedSettings[name]
	return ok
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	return slices.Sorted(maps.Keys(m))
}
