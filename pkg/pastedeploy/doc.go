// SPDX-License-Identifier: MPL-2.0

// Package pastedeploy reads PasteDeploy-style INI deployment descriptors and
// builds the application they describe.
//
// A descriptor is addressed by a config URI, "config:<path>[#<name>]". The
// [DEFAULT] section provides the global options, extended with "__file__"
// and "here". The [app:<name>] section provides the local options and names
// its application factory with "use". Inside the app section, "set <key>"
// overrides a global option and "get <key> = <global>" copies one into the
// local options.
//
//	[DEFAULT]
//	debug = false
//	django_settings_module = myproject.settings
//
//	[app:main]
//	use = egg:pastesettings#main
//	SECRET_KEY = "s3cr3t"
//	STATIC_ROOT = "${here}/static"
package pastedeploy
