// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bundlekit/bundlekit/pkg/archive"
	"github.com/bundlekit/bundlekit/pkg/locate"
	"github.com/bundlekit/bundlekit/pkg/webdep"
)

// ErrUnsafeDir is returned when a package or manifest directory name would
// resolve outside of the target directory.
var ErrUnsafeDir = errors.New("directory escapes target")

// Metrics receives synchronization counters.
type Metrics interface {
	ObserveSync(outcome string)
	AddInstalled(n int)
	AddEvicted(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveSync(string) {}
func (noopMetrics) AddInstalled(int)   {}
func (noopMetrics) AddEvicted(int)     {}

// Result summarizes a synchronization.
type Result struct {
	Changed bool
	// Installed lists the package directories placed in this call.
	Installed []string
	// Evicted lists the directories deleted as stale.
	Evicted []string
	// Skipped lists dependency ids without any package root.
	Skipped []string
	// Retained counts the dependencies left untouched.
	Retained int
}

// Installer synchronizes target directories.
type Installer struct {
	locator *locate.Locator
	logger  *log.Logger
	metrics Metrics
}

// Option configures an Installer.
type Option func(*Installer)

// WithLocator sets the package root locator.
func WithLocator(l *locate.Locator) Option {
	return func(i *Installer) { i.locator = l }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(i *Installer) { i.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(i *Installer) { i.metrics = m }
}

// New creates an Installer.
func New(opts ...Option) *Installer {
	i := &Installer{
		logger:  log.New(io.Discard),
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.locator == nil {
		i.locator = locate.New(locate.WithLogger(i.logger))
	}
	return i
}

// Sync converges target to desired and reports whether anything was
// installed or evicted. It must not run concurrently with another Sync on
// the same target.
func (i *Installer) Sync(ctx context.Context, target string, desired []webdep.WebDependency) (bool, error) {
	res, err := i.SyncResult(ctx, target, desired)
	if err != nil {
		return false, err
	}
	return res.Changed, nil
}

// SyncResult is Sync with a detailed summary.
func (i *Installer) SyncResult(ctx context.Context, target string, desired []webdep.WebDependency) (*Result, error) {
	res, err := i.sync(ctx, target, desired)
	switch {
	case err != nil:
		i.metrics.ObserveSync("error")
	case res.Changed:
		i.metrics.ObserveSync("changed")
	default:
		i.metrics.ObserveSync("unchanged")
	}
	if res != nil {
		i.metrics.AddInstalled(len(res.Installed))
		i.metrics.AddEvicted(len(res.Evicted))
	}
	return res, err
}

func (i *Installer) sync(ctx context.Context, target string, desired []webdep.WebDependency) (*Result, error) {
	manifestPath := ManifestPath(target)
	old := ReadManifest(manifestPath, i.logger)
	plan := NewPlan(old, desired)

	if plan.Reset {
		if err := os.RemoveAll(target); err != nil {
			return nil, fmt.Errorf("cleaning %s: %w", target, err)
		}
	}
	if len(desired) == 0 {
		return &Result{}, nil
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", target, err)
	}

	res := &Result{Changed: plan.Changed(), Retained: len(plan.Retained)}
	for _, entry := range plan.Retained {
		i.logger.Debug("skipping package as it already exists", "id", entry.ID)
	}

	tmp := filepath.Join(target, ReservedDir, scratchDir)
	if err := os.RemoveAll(tmp); err != nil {
		return nil, fmt.Errorf("clearing scratch area: %w", err)
	}

	var installed []InstalledDependency
	runErr := func() error {
		for _, action := range plan.Actions() {
			if err := ctx.Err(); err != nil {
				return err
			}
			switch action.Kind {
			case ActionEvict:
				if err := i.evict(target, action.Dir); err != nil {
					return err
				}
				res.Evicted = append(res.Evicted, action.Dir)
			case ActionInstall:
				entry, ok, err := i.install(target, tmp, action.Dep)
				if err != nil {
					return err
				}
				if !ok {
					res.Skipped = append(res.Skipped, action.Dep.ID)
					continue
				}
				installed = append(installed, entry)
				res.Installed = append(res.Installed, entry.Dirs...)
			}
		}
		return nil
	}()

	if err := os.RemoveAll(tmp); err != nil {
		i.logger.Warn("could not clear scratch area", "path", tmp, "err", err)
	}

	// The manifest is rewritten even on failure so it only ever lists
	// directories that are present.
	if err := WriteManifest(manifestPath, plan.Manifest(installed)); err != nil {
		if runErr != nil {
			return res, errors.Join(runErr, err)
		}
		return res, err
	}
	if runErr != nil {
		return res, runErr
	}
	return res, nil
}

func (i *Installer) evict(target, dir string) error {
	path, err := childPath(target, dir)
	if err != nil {
		i.logger.Warn("ignoring manifest directory", "dir", dir, "err", err)
		return nil
	}
	i.logger.Debug("removing package as it is not needed anymore", "dir", dir)
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("evicting %s: %w", dir, err)
	}
	return nil
}

// install extracts dep and moves its package roots under target. The
// boolean is false when the artifact holds no package.
func (i *Installer) install(target, tmp string, dep webdep.WebDependency) (InstalledDependency, bool, error) {
	extractDir := filepath.Join(tmp, scratchName(dep.ID))
	if err := os.RemoveAll(extractDir); err != nil {
		return InstalledDependency{}, false, err
	}
	if err := archive.Unzip(dep.ArchivePath, extractDir); err != nil {
		return InstalledDependency{}, false, fmt.Errorf("extracting %s: %w", dep, err)
	}

	if dep.Kind == webdep.KindMvnpm {
		i.extractMore(extractDir)
	}

	roots, err := i.locator.Locate(dep.ID, extractDir, dep.Kind)
	if err != nil {
		return InstalledDependency{}, false, err
	}
	if len(roots) == 0 {
		i.logger.Warn("package.json not found in dep", "id", dep.ID, "path", dep.ArchivePath)
		return InstalledDependency{}, false, nil
	}

	entry := InstalledDependency{ID: dep.ID}
	for _, root := range roots {
		dst, err := childPath(target, root.Name)
		if err != nil {
			return InstalledDependency{}, false, fmt.Errorf("dependency %s: package %q: %w", dep.ID, root.Name, err)
		}
		if _, err := os.Stat(root.Dir); errors.Is(err, fs.ErrNotExist) {
			// Nested inside a root that was already moved.
			i.logger.Warn("package root vanished", "id", dep.ID, "package", root.Name)
			continue
		}
		if err := os.RemoveAll(dst); err != nil {
			return InstalledDependency{}, false, fmt.Errorf("replacing %s: %w", root.Name, err)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return InstalledDependency{}, false, err
		}
		if err := SafeMove(root.Dir, dst, i.logger); err != nil {
			return InstalledDependency{}, false, err
		}
		entry.Dirs = append(entry.Dirs, root.Name)
		i.logger.Debug("installed package", "name", root.Name)
	}
	if len(entry.Dirs) == 0 {
		return InstalledDependency{}, false, nil
	}
	i.logger.Debug("installed dep", "id", dep.ID, "path", dep.ArchivePath)
	return entry, true, nil
}

// extractMore unpacks the optional nested resource archive in place.
func (i *Installer) extractMore(dir string) {
	more, err := locate.FindMoreArchive(dir)
	if err != nil || more == "" {
		return
	}
	i.logger.Debug("found more archive", "path", more)
	if err := archive.UnTgz(more, filepath.Dir(more)); err != nil {
		i.logger.Warn("could not extract .more.tgz archive", "path", more, "err", err)
	}
}

// childPath joins a slash-separated package name onto target, refusing
// names that escape it or collide with the reserved directory.
func childPath(target, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || clean == "." || filepath.IsAbs(clean) || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", name, ErrUnsafeDir)
	}
	if first := strings.Split(filepath.ToSlash(clean), "/")[0]; first == ReservedDir {
		return "", fmt.Errorf("%q: %w", name, ErrUnsafeDir)
	}
	return filepath.Join(target, clean), nil
}

// scratchName maps an id to a relative extraction directory, splitting
// coordinates on ':' and dropping unsafe components.
func scratchName(id string) string {
	parts := strings.FieldsFunc(id, func(r rune) bool {
		return r == ':' || r == '/' || r == '\\'
	})
	kept := parts[:0]
	for _, p := range parts {
		if p != "." && p != ".." {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return "_"
	}
	return filepath.Join(kept...)
}
