// SPDX-License-Identifier: MPL-2.0

// Package settings converts PasteDeploy-style deployment options into
// settings attached to a settings module namespace.
//
// A deployment descriptor provides two flat string maps: global options,
// shared by every section, and the local options of one application section.
// Resolution runs in a fixed order:
//
//  1. locate the settings module named by the "django_settings_module"
//     global option;
//  2. check that DEBUG is only configured through the global "debug" option
//     and that no unsupported setting is present;
//  3. replace "${name}" references with global option values ("$${name}"
//     escapes a literal "${name}");
//  4. decode every value as a JSON literal;
//  5. expose the descriptor path as "paste_configuration_file".
//
// Apply additionally merges the result into the settings module. Existing
// sequence attributes are extended and other existing attributes are left
// untouched with a warning.
//
//	resolver := settings.NewResolver(settings.WithRegistry(registry))
//	ctx, err := resolver.Apply(global, local)
package settings
