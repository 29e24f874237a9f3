// SPDX-License-Identifier: MPL-2.0

// Package config loads the bundlekit configuration with Viper, using CUE as
// the file format.
//
// The file is read from --config, else <ConfigDir>/config.cue (XDG on Linux,
// ~/Library/Application Support on macOS, %APPDATA% on Windows), else
// ./config.cue. It is validated against the embedded config_schema.cue and
// merged over the defaults; BUNDLEKIT_* environment variables override both,
// e.g. BUNDLEKIT_ESBUILD_VERSION for esbuild.version.
package config
