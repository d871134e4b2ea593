// SPDX-License-Identifier: MPL-2.0

// Package config handles taskconf's own settings using Viper with CUE as the file format.
//
// Settings are loaded from taskconf.cue in the user config directory
// (~/.config/taskconf/taskconf.cue or XDG equivalent on Linux,
// ~/Library/Application Support/taskconf/taskconf.cue on macOS,
// %APPDATA%\taskconf\taskconf.cue on Windows), falling back to ./taskconf.cue. Every
// key can be overridden from the environment with a TASKCONF_ prefix
// (TASKCONF_OUTPUT=json, TASKCONF_UI_VERBOSE=true).
//
// Files are validated against an embedded CUE schema (config_schema.cue) before they
// reach Viper, so a typo in a key or an invalid enum value is reported with its path.
package config
