// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"runtime"
	"strings"
)

// classifiers maps GOOS/GOARCH to the npm platform package suffix.
//
//nolint:gochecknoglobals // lookup table
var classifiers = map[string]string{
	"linux/amd64":   "linux-x64",
	"linux/arm64":   "linux-arm64",
	"darwin/amd64":  "darwin-x64",
	"darwin/arm64":  "darwin-arm64",
	"windows/amd64": "win32-x64",
	"windows/arm64": "win32-arm64",
}

// Classifier returns the esbuild platform classifier for goos and goarch.
func Classifier(goos, goarch string) (string, error) {
	c, ok := classifiers[goos+"/"+goarch]
	if !ok {
		return "", &UnsupportedPlatformError{OS: goos, Arch: goarch}
	}
	return c, nil
}

// CurrentClassifier returns the classifier of the running platform.
func CurrentClassifier() (string, error) {
	return Classifier(runtime.GOOS, runtime.GOARCH)
}

func isWindowsClassifier(classifier string) bool {
	return strings.HasPrefix(classifier, "win32-")
}

// mvnpmClassifier converts an npm classifier to the platform names of the
// mvnpm esbuild releases, which use macos and windows.
func mvnpmClassifier(classifier string) string {
	if arch, ok := strings.CutPrefix(classifier, "darwin-"); ok {
		return "macos-" + arch
	}
	if arch, ok := strings.CutPrefix(classifier, "win32-"); ok {
		return "windows-" + arch
	}
	return classifier
}
