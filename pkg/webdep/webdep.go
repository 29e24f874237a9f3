// SPDX-License-Identifier: MPL-2.0

// Package webdep models web dependencies packaged inside Maven artifacts
// (webjars and mvnpm jars) and derives their identifiers.
package webdep

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind selects the package-root discovery convention of an artifact.
type Kind int

const (
	// KindWebjars is a classic webjar (META-INF/resources/webjars).
	KindWebjars Kind = iota
	// KindMvnpm is an mvnpm artifact (META-INF/resources/_static).
	KindMvnpm
)

const (
	// WebjarsPrefix is the resource root of webjar artifacts.
	WebjarsPrefix = "META-INF/resources/webjars"
	// MvnpmPrefix is the resource root of mvnpm artifacts.
	MvnpmPrefix = "META-INF/resources/_static"
)

// ErrUnknownKind is returned when a kind name cannot be parsed.
var ErrUnknownKind = errors.New("unknown web dependency kind")

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindWebjars:
		return "webjars"
	case KindMvnpm:
		return "mvnpm"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Prefixes returns the archive-relative directories searched for package
// roots, in order.
func (k Kind) Prefixes() []string {
	switch k {
	case KindMvnpm:
		return []string{MvnpmPrefix}
	case KindWebjars:
		return []string{WebjarsPrefix}
	default:
		return nil
	}
}

// SupportsImportMap reports whether the import-map fallback applies.
func (k Kind) SupportsImportMap() bool {
	return k == KindMvnpm
}

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "webjars", "webjar":
		return KindWebjars, nil
	case "mvnpm":
		return KindMvnpm, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// KindForGroup derives the kind from a Maven group id.
func KindForGroup(groupID string) (Kind, bool) {
	switch {
	case groupID == "org.mvnpm" || strings.HasPrefix(groupID, "org.mvnpm."):
		return KindMvnpm, true
	case groupID == "org.webjars" || strings.HasPrefix(groupID, "org.webjars."):
		return KindWebjars, true
	default:
		return 0, false
	}
}

// WebDependency is a single dependency artifact to materialize.
type WebDependency struct {
	// ID is a caller-assigned unique identifier, conventionally a GAV.
	ID string
	// ArchivePath points at the zip-format artifact on disk.
	ArchivePath string
	Kind        Kind
}

// New returns a dependency with an explicit id.
func New(id, archivePath string, kind Kind) WebDependency {
	return WebDependency{ID: id, ArchivePath: archivePath, Kind: kind}
}

// FromPath returns a dependency whose id is derived from the artifact
// location: the GAV when the path sits in a Maven repository layout,
// otherwise the file name without its extension.
func FromPath(archivePath string, kind Kind) WebDependency {
	if gav, ok := ParseRepositoryPath(archivePath); ok {
		return New(gav.String(), archivePath, kind)
	}
	return New(IDFromFileName(archivePath), archivePath, kind)
}

// IDFromFileName strips the directory and the last extension.
func IDFromFileName(archivePath string) string {
	base := filepath.Base(archivePath)
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

// String returns "id (path)".
func (d WebDependency) String() string {
	return fmt.Sprintf("%s (%s)", d.ID, d.ArchivePath)
}
