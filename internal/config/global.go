// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride lets tests bypass os.UserHomeDir, which ignores HOME on
// some platforms.
var configDirOverride string //nolint:gochecknoglobals // test seam

// Reset clears test overrides.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride replaces the platform config directory.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
