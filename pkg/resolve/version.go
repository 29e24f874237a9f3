// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// mvnpmMarker identifies esbuild builds republished by mvnpm, e.g.
// 0.19.9-mvnpm-0.0.1.
const mvnpmMarker = "mvnpm"

// NormalizeVersion strips a leading "v" and validates the result as a
// semantic version. The returned string is safe to use in file names.
func NormalizeVersion(v string) (string, error) {
	norm := strings.TrimPrefix(strings.TrimSpace(v), "v")
	if norm == "" || !semver.IsValid("v"+norm) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return norm, nil
}

// isMvnpmBuild reports whether version is an mvnpm republication.
func isMvnpmBuild(version string) bool {
	return strings.Contains(version, mvnpmMarker)
}

// mvnpmRelease returns the release part of an mvnpm build version, the text
// after the last '-'.
func mvnpmRelease(version string) string {
	return version[strings.LastIndex(version, "-")+1:]
}

// archiveName returns the tarball file name for classifier and version, as
// published upstream and as bundled into the binary.
func archiveName(classifier, version string) string {
	if isMvnpmBuild(version) {
		return fmt.Sprintf("esbuild-%s-%s.tgz", mvnpmClassifier(classifier), version)
	}
	return fmt.Sprintf("%s-%s.tgz", classifier, version)
}
