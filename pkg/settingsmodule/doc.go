// SPDX-License-Identifier: MPL-2.0

// Package settingsmodule loads settings modules from disk so they can be
// found by a settings.Registry.
//
// A dotted module name such as "myproject.settings" maps to
// "<root>/myproject/settings" followed by the first existing extension among
// .cue, .json and .jsonc. The top level of the file must be an object; its
// fields become the module's attributes.
package settingsmodule
