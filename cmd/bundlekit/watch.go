// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"path/filepath"

	"github.com/bundlekit/bundlekit/internal/watch"
)

// watchProject runs fn once and then after every change to the project
// file or a jar below its directory, until ctx is canceled. Failures of
// later runs are reported without stopping the watch.
func (a *App) watchProject(ctx context.Context, file, dir string, fn func(context.Context) error, extraPatterns ...string) error {
	if err := fn(ctx); err != nil {
		renderError(a.stderr, err, a.verbose)
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	root := filepath.Dir(abs)

	var ignore []string
	if dir != "" {
		if rel, err := filepath.Rel(root, dir); err == nil && filepath.IsLocal(rel) {
			ignore = append(ignore, filepath.ToSlash(rel)+"/**")
		}
	}
	if p, err := a.loadProject(file, dir); err == nil {
		if rel, err := filepath.Rel(root, p.target); err == nil && filepath.IsLocal(rel) {
			ignore = append(ignore, filepath.ToSlash(rel)+"/**")
		}
		if out := p.file.Esbuild.Outdir; out != "" && filepath.IsLocal(out) {
			ignore = append(ignore, filepath.ToSlash(out)+"/**")
		}
	}

	w, err := watch.New(watch.Config{
		Dir:      root,
		Patterns: append([]string{filepath.Base(abs), "**/*.jar"}, extraPatterns...),
		Ignore:   ignore,
		Logger:   a.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			a.logger.Info("change detected", "paths", changed)
			if err := fn(ctx); err != nil {
				renderError(a.stderr, err, a.verbose)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	a.logger.Info("watching for changes", "dir", root)
	return w.Run(ctx)
}
