// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bundlekit/bundlekit/pkg/archive"
)

const (
	// toolName prefixes every version directory.
	toolName = "esbuild"

	executablePath       = "package/bin/esbuild"
	legacyExecutablePath = "package/esbuild"
)

// Layout describes the on-disk cache shared by all resolvers.
type Layout struct {
	// Root holds one esbuild-<version> directory per version.
	Root string
	// Classifier selects the platform build.
	Classifier string
}

// NewLayout returns a layout under root for the running platform. An empty
// root selects the system temporary directory.
func NewLayout(root string) (Layout, error) {
	classifier, err := CurrentClassifier()
	if err != nil {
		return Layout{}, err
	}
	if root == "" {
		root = os.TempDir()
	}
	return Layout{Root: root, Classifier: classifier}, nil
}

// Dir returns the cache directory for version.
func (l Layout) Dir(version string) string {
	return filepath.Join(l.Root, toolName+"-"+version)
}

// Executable returns where the executable of version lives. Archives
// without a package/bin directory use the legacy location.
func (l Layout) Executable(version string) string {
	dir := l.Dir(version)
	rel := executablePath
	if info, err := os.Stat(filepath.Join(dir, "package", "bin")); err != nil || !info.IsDir() {
		rel = legacyExecutablePath
	}
	if isWindowsClassifier(l.Classifier) {
		rel += ".exe"
	}
	return filepath.Join(dir, filepath.FromSlash(rel))
}

// Lookup returns the executable of version when it is already present.
func (l Layout) Lookup(version string) (string, bool) {
	path := l.Executable(version)
	return path, isExecutable(path)
}

// errNoExecutable is returned when an archive extracts cleanly but holds no
// esbuild executable. It is fatal for the chain, unlike ErrNotFound.
var errNoExecutable = errors.New("archive has no esbuild executable")

// extract unpacks a gzip-compressed tarball into the directory of version
// and returns the executable path.
func (l Layout) extract(r io.Reader, version string) (string, error) {
	dir := l.Dir(version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := archive.ExtractTarGz(r, dir); err != nil {
		return "", err
	}
	path, ok := l.Lookup(version)
	if !ok {
		return "", fmt.Errorf("%w at %s", errNoExecutable, path)
	}
	return path, nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// openArchive opens name in fsys, reporting ErrNotFound when it is absent.
func openArchive(fsys fs.FS, name string) (fs.File, error) {
	f, err := fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}
