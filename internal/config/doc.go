// SPDX-License-Identifier: MPL-2.0

// Package config handles the pastesettings tool configuration using Viper
// with CUE as the file format.
//
// Configuration is loaded from ~/.config/pastesettings/config.cue (or the XDG
// equivalent on Linux, ~/Library/Application Support/pastesettings/config.cue
// on macOS, %APPDATA%\pastesettings\config.cue on Windows), or from the file
// given with --config. Files are validated against the embedded CUE schema
// (config_schema.cue); PASTESETTINGS_* environment variables override any key.
package config
