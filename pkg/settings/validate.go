// SPDX-License-Identifier: MPL-2.0

package settings

// validateDebugPlacement makes sure the debug flag only comes from the
// global "debug" option. The first violated rule wins.
func validateDebugPlacement(global GlobalOptions, local LocalOptions, ns Namespace) error {
	if _, defined := ns.Lookup(DebugSetting); defined {
		return &BadDebugFlagError{Reason: DebugInSettingsModule}
	}

	_, inGlobal := global[DebugSetting]
	_, inLocal := local[DebugSetting]
	if inGlobal || inLocal {
		return &BadDebugFlagError{Reason: DebugInConfiguration}
	}

	if _, ok := global[DebugOption]; !ok {
		return &BadDebugFlagError{Reason: DebugMissing}
	}

	return nil
}

// validateSupportedNames rejects local options that cannot be injected.
func validateSupportedNames(local LocalOptions) error {
	for _, name := range local.Names() {
		if IsUnsupported(name) {
			return &UnsupportedSettingError{Name: name}
		}
	}
	return nil
}
