// SPDX-License-Identifier: MPL-2.0

package locate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bundlekit/bundlekit/pkg/webdep"
)

const (
	// PackageJSON is the package manifest file name.
	PackageJSON = "package.json"
	// MoreArchiveSuffix marks the optional nested resource archive of mvnpm
	// artifacts.
	MoreArchiveSuffix = ".more.tgz"
)

// DefaultCompositeGroups lists the groups whose artifacts bundle several
// packages.
var DefaultCompositeGroups = []string{"org.mvnpm.at.mvnpm"}

// DefaultSupportedMajors lists the packaging-format majors understood.
var DefaultSupportedMajors = []string{"v1"}

// PackageRoot maps a package name to its directory in the extracted tree.
type PackageRoot struct {
	Name string
	Dir  string
}

// Locator discovers package roots.
type Locator struct {
	compositeGroups []string
	supported       []string
	logger          *log.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithCompositeGroups replaces the composite allow-list.
func WithCompositeGroups(groups ...string) Option {
	return func(l *Locator) { l.compositeGroups = groups }
}

// WithSupportedMajors replaces the supported packaging-format majors
// (semver majors such as "v1").
func WithSupportedMajors(majors ...string) Option {
	return func(l *Locator) { l.supported = majors }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Locator) { l.logger = logger }
}

// New creates a Locator.
func New(opts ...Option) *Locator {
	l := &Locator{
		compositeGroups: DefaultCompositeGroups,
		supported:       DefaultSupportedMajors,
		logger:          log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the package roots of the artifact extracted in dir, in
// discovery order with unique names. An empty result means the artifact
// contains no installable package.
func (l *Locator) Locate(id, dir string, kind webdep.Kind) ([]PackageRoot, error) {
	coords, hasCoords, err := ReadCoordinates(dir)
	if err != nil {
		return nil, err
	}
	if hasCoords {
		if err := checkMarker(id, coords, l.supported); err != nil {
			return nil, err
		}
	}
	multiple := hasCoords && slices.Contains(l.compositeGroups, coords.GroupID)

	var manifests []string
	for _, root := range searchRoots(dir, kind) {
		hits, err := breadthFirst(root, named(PackageJSON), multiple)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, hits...)
		if len(manifests) > 0 && !multiple {
			break
		}
	}

	var roots []PackageRoot
	seen := make(map[string]bool)
	for _, m := range manifests {
		name, err := readPackageName(m)
		if err != nil {
			return nil, err
		}
		if name == "" {
			l.logger.Debug("package.json without name", "path", m)
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		roots = append(roots, PackageRoot{Name: name, Dir: filepath.Dir(m)})
		l.logger.Debug("package.json found", "name", name, "path", m)
	}
	if len(roots) > 0 || !kind.SupportsImportMap() {
		return roots, nil
	}

	version := coords.Version
	if version == "" {
		version = defaultVersion
	}
	return l.fromImportMap(id, dir, version)
}

func (l *Locator) fromImportMap(id, dir, version string) ([]PackageRoot, error) {
	path := filepath.Join(dir, filepath.FromSlash(ImportMapFile))
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	m, err := readImportMap(path)
	if err != nil {
		return nil, fmt.Errorf("dependency %s: %w", id, err)
	}
	pkgs, err := packagesFromImportMap(m)
	if err != nil {
		l.logger.Warn("import map not usable", "id", id, "err", err)
		return nil, nil
	}

	var roots []PackageRoot
	for _, p := range pkgs {
		root, ok := rootDir(dir, p.root)
		if !ok {
			l.logger.Warn("import map entry escapes artifact", "id", id, "specifier", p.name)
			continue
		}
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			l.logger.Debug("import map root missing", "id", id, "root", root)
			continue
		}
		if err := writePackageJSON(root, p.name, version, p.main); err != nil {
			return nil, fmt.Errorf("dependency %s: writing package.json: %w", id, err)
		}
		l.logger.Debug("package.json synthesized from import map", "name", p.name, "root", root)
		roots = append(roots, PackageRoot{Name: p.name, Dir: root})
	}
	return roots, nil
}

// searchRoots returns the existing kind prefixes under dir, or dir itself
// when none exists.
func searchRoots(dir string, kind webdep.Kind) []string {
	var roots []string
	for _, prefix := range kind.Prefixes() {
		p := filepath.Join(dir, filepath.FromSlash(prefix))
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			roots = append(roots, p)
		}
	}
	if len(roots) == 0 {
		roots = append(roots, dir)
	}
	return roots
}

func readPackageName(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	return strings.TrimSpace(pkg.Name), nil
}

// FindMoreArchive returns the first *.more.tgz found breadth-first under
// dir, or "" when there is none.
func FindMoreArchive(dir string) (string, error) {
	hits, err := breadthFirst(dir, func(name string) bool {
		return strings.HasSuffix(name, MoreArchiveSuffix)
	}, false)
	if err != nil || len(hits) == 0 {
		return "", err
	}
	return hits[0], nil
}
