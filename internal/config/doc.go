// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE
// as the file format.
//
// Configuration is loaded from ~/.config/bv/config.cue (or the XDG
// equivalent on Linux, ~/Library/Application Support/bv/config.cue on
// macOS, %APPDATA%\bv\config.cue on Windows). It covers the local
// publish directory, the Python interpreter used to create virtual
// environments, the optional orchestrator endpoint, and UI settings.
//
// Every file is validated against a CUE schema (config_schema.cue)
// before its values are merged, so a typo surfaces as a field-level
// error instead of a silently ignored setting.
package config
