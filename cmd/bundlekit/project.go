// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bundlekit/bundlekit/internal/depfile"
	"github.com/bundlekit/bundlekit/internal/fslock"
	"github.com/bundlekit/bundlekit/internal/issue"
	"github.com/bundlekit/bundlekit/pkg/install"
	"github.com/bundlekit/bundlekit/pkg/locate"
	"github.com/bundlekit/bundlekit/pkg/resolve"
	"github.com/bundlekit/bundlekit/pkg/webdep"

	"github.com/google/uuid"
)

// project is a loaded bundlekit.toml with its derived inputs.
type project struct {
	file   *depfile.File
	deps   []webdep.WebDependency
	target string
}

// loadProject reads the project file and decides the target directory:
// the --dir flag, else node_modules from the file, else install.node_modules
// from the configuration, relative to the project file.
func (a *App) loadProject(path, dir string) (*project, error) {
	f, err := depfile.Load(path)
	if err != nil {
		suggestions := []string{"Run 'bundlekit issue project-file-invalid' for an example"}
		if errors.Is(err, os.ErrNotExist) {
			suggestions = []string{"Create a " + depfile.FileName + " or pass --file"}
		}
		return nil, actionable(err, "load project file", path, suggestions...)
	}

	deps, err := f.WebDependencies()
	if err != nil {
		return nil, actionable(err, "load project file", path)
	}

	target := dir
	switch {
	case target != "":
	case f.NodeModules != "":
		target = f.Resolve(f.NodeModules)
	default:
		target = f.Resolve(a.cfg.Install.NodeModules)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, issue.WrapWithOperation(err, "resolve target directory")
	}

	return &project{file: f, deps: deps, target: abs}, nil
}

// installer builds a synchronizer configured from the application config.
func (a *App) installer() *install.Installer {
	locator := locate.New(
		locate.WithCompositeGroups(a.cfg.Install.CompositeGroups...),
		locate.WithLogger(a.logger),
	)
	return install.New(
		install.WithLocator(locator),
		install.WithLogger(a.logger),
		install.WithMetrics(a.Metrics),
	)
}

// syncProject converges the project's target directory, holding the target
// lock unless noLock is set or locking is disabled in the configuration.
func (a *App) syncProject(ctx context.Context, p *project, noLock bool) (*install.Result, error) {
	logger := a.logger.With("run", uuid.NewString()[:8])

	if !noLock && a.cfg.Install.Lock {
		release, err := a.lock(ctx, p.target)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	logger.Debug("synchronizing", "target", p.target, "dependencies", len(p.deps))
	res, err := a.installer().SyncResult(ctx, p.target, p.deps)
	if err != nil {
		return res, actionable(err, "sync dependencies", p.target,
			"Rerun with --verbose to see which dependency failed")
	}
	return res, nil
}

// lock takes the advisory lock guarding target. Where flock is unavailable
// the sync proceeds unlocked.
func (a *App) lock(ctx context.Context, target string) (func(), error) {
	path := fslock.PathFor(target)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create parent of %s: %w", target, err)
	}

	l, err := fslock.TryAcquire(path)
	switch {
	case errors.Is(err, fslock.ErrUnsupported):
		a.logger.Debug("file locking unavailable, continuing unlocked")
		return func() {}, nil
	case errors.Is(err, fslock.ErrLocked):
		a.logger.Info("waiting for another bundlekit process", "lock", path)
		l, err = fslock.Acquire(ctx, path)
	}
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("lock target directory").
			WithResource(target).
			WithSuggestion("Pass --no-lock if runs are serialized by other means").
			WithIssue(issue.LockBusyId).
			Wrap(err).
			BuildError()
	}

	return func() {
		if err := l.Release(); err != nil {
			a.logger.Debug("could not release lock", "lock", path, "err", err)
		}
	}, nil
}

// resolveEsbuild finds the executable for version and records the source
// that produced it.
func (a *App) resolveEsbuild(ctx context.Context, version string) (string, string, error) {
	chain, err := resolve.Default(a.cfg.Esbuild.CacheDir, a.Bundled, a.logger, a.downloadOptions()...)
	if err != nil {
		return "", "", actionable(err, "resolve esbuild", version)
	}

	start := time.Now()
	path, source, err := chain.Lookup(ctx, version)
	if err != nil {
		a.Metrics.ObserveResolve("error", time.Since(start).Seconds())
		return "", "", actionable(err, "resolve esbuild", version)
	}
	a.Metrics.ObserveResolve(source, time.Since(start).Seconds())
	a.logger.Debug("resolved esbuild", "version", version, "source", source, "path", path)
	return path, source, nil
}

func (a *App) downloadOptions() []resolve.DownloadOption {
	cfg := a.cfg
	opts := []resolve.DownloadOption{
		resolve.WithHTTPClient(a.httpClient()),
		resolve.WithRegistryVerification(cfg.Esbuild.Verify),
		resolve.WithUserAgent("bundlekit/" + Version),
	}
	if cfg.Download.Retries >= 0 {
		opts = append(opts, resolve.WithRetries(uint64(cfg.Download.Retries)))
	}
	if cfg.Esbuild.DownloadURL != "" {
		opts = append(opts, resolve.WithURLTemplate(cfg.Esbuild.DownloadURL))
	}
	if cfg.Esbuild.Integrity != "" {
		opts = append(opts, resolve.WithIntegrity(cfg.Esbuild.Integrity))
	}
	if cfg.Esbuild.S3.Region != "" || cfg.Esbuild.S3.Endpoint != "" {
		opts = append(opts, resolve.WithS3Region(cfg.Esbuild.S3.Region, cfg.Esbuild.S3.Endpoint))
	}
	if cfg.Download.Progress && isTerminal(a.stderr) {
		opts = append(opts, resolve.WithProgress(a.stderr))
	}
	return opts
}
