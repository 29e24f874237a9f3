// SPDX-License-Identifier: MPL-2.0

package install

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// ReservedDir holds the manifest and the scratch area inside the target.
	ReservedDir = ".mvnpm"
	// ManifestFile is the manifest file name inside ReservedDir.
	ManifestFile = "mvnpm.json"
	scratchDir   = "tmp"
)

// InstalledDependency records the top-level directories a dependency
// placed under the target directory.
type InstalledDependency struct {
	ID   string   `json:"id"`
	Dirs []string `json:"dirs"`
}

// Manifest is the persisted installation state.
type Manifest struct {
	Installed []InstalledDependency `json:"installed"`
}

// ManifestPath returns the manifest location for target.
func ManifestPath(target string) string {
	return filepath.Join(target, ReservedDir, ManifestFile)
}

// Find returns the entry with the given id.
func (m Manifest) Find(id string) (InstalledDependency, bool) {
	for _, d := range m.Installed {
		if d.ID == id {
			return d, true
		}
	}
	return InstalledDependency{}, false
}

// Dirs returns every recorded directory.
func (m Manifest) Dirs() []string {
	var dirs []string
	for _, d := range m.Installed {
		dirs = append(dirs, d.Dirs...)
	}
	return dirs
}

// normalized returns a copy sorted by id with empty ids dropped.
func (m Manifest) normalized() Manifest {
	out := Manifest{Installed: make([]InstalledDependency, 0, len(m.Installed))}
	for _, d := range m.Installed {
		if d.ID == "" {
			continue
		}
		out.Installed = append(out.Installed, InstalledDependency{ID: d.ID, Dirs: slices.Clone(d.Dirs)})
	}
	slices.SortFunc(out.Installed, func(a, b InstalledDependency) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// ReadManifest loads the manifest at path. A missing file yields an empty
// manifest; an unreadable or corrupt one is deleted and also yields an
// empty manifest.
func ReadManifest(path string, logger *log.Logger) Manifest {
	m, err := loadManifest(path)
	if err == nil {
		return m
	}
	logger.Warn("manifest corrupt, starting from scratch", "path", path, "err", err)
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		logger.Warn("could not delete corrupt manifest", "path", path, "err", rmErr)
	}
	return Manifest{}
}

// PeekManifest is ReadManifest without side effects: a corrupt manifest
// yields an empty one but stays on disk.
func PeekManifest(path string, logger *log.Logger) Manifest {
	m, err := loadManifest(path)
	if err != nil {
		logger.Warn("manifest corrupt, ignoring it", "path", path, "err", err)
		return Manifest{}
	}
	return m
}

// loadManifest reads and decodes path. A missing file is not an error.
func loadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Manifest{}, nil
	}
	if err != nil {
		return Manifest{}, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	return m.normalized(), nil
}

// WriteManifest replaces the manifest at path.
func WriteManifest(path string, m Manifest) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing old manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(m.normalized(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename manifest: %w", err)
	}
	return nil
}
