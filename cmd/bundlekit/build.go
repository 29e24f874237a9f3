// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/bundlekit/bundlekit/internal/issue"
	"github.com/bundlekit/bundlekit/internal/logging"
	"github.com/bundlekit/bundlekit/pkg/esbuild"

	"github.com/spf13/cobra"
)

type buildParams struct {
	file     string
	dir      string
	noLock   bool
	skipSync bool
	watch    bool
}

func newBuildCommand(app *App) *cobra.Command {
	var params buildParams

	cmd := &cobra.Command{
		Use:   "build [-- esbuild args...]",
		Short: "Sync dependencies, resolve esbuild and run the configured build",
		Long: `Sync dependencies, resolve esbuild and run the configured build.

The [esbuild] table of bundlekit.toml is turned into command-line flags.
Arguments after -- are appended verbatim. esbuild runs in the directory of
the project file and its exit status becomes the exit status of bundlekit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer app.flushMetrics()
			return runBuild(cmd, app, params, args)
		},
	}

	addProjectFlags(cmd, &params.file, &params.dir)
	cmd.Flags().BoolVar(&params.noLock, "no-lock", false, "do not take the target directory lock")
	cmd.Flags().BoolVar(&params.skipSync, "skip-sync", false, "run esbuild without synchronizing node_modules first")
	cmd.Flags().BoolVarP(&params.watch, "watch", "w", false, "build again whenever the project file, a jar or a source changes")

	return cmd
}

func runBuild(cmd *cobra.Command, app *App, params buildParams, extra []string) error {
	ctx := cmd.Context()
	if !params.watch {
		return buildOnce(ctx, app, params, extra)
	}
	return app.watchProject(ctx, params.file, params.dir, func(ctx context.Context) error {
		return buildOnce(ctx, app, params, extra)
	}, "**/*.{js,jsx,ts,tsx,css,json}")
}

func buildOnce(ctx context.Context, app *App, params buildParams, extra []string) error {
	logger := logging.FromContext(ctx)

	p, err := app.loadProject(params.file, params.dir)
	if err != nil {
		return err
	}

	if !params.skipSync {
		if _, err := app.syncProject(ctx, p, params.noLock); err != nil {
			return err
		}
	}

	exe, _, err := app.resolveEsbuild(ctx, p.file.EsbuildVersion(app.cfg.Esbuild.Version))
	if err != nil {
		return err
	}

	runner := &esbuild.Runner{
		Executable: exe,
		WorkDir:    p.file.Dir(),
		Stdout:     app.stdout,
		Stderr:     app.stderr,
	}
	cfg := p.file.Esbuild.Config

	progress := logging.Start(logger)
	res := runner.Run(ctx, &cfg, extra...)
	logger.Debug("esbuild", "args", strings.Join(res.Args, " "))
	if res.Error != nil {
		return actionable(res.Error, "run esbuild", exe)
	}
	if res.ExitCode != 0 {
		return &ExitError{
			Code: res.ExitCode,
			Err: issue.NewErrorContext().
				WithOperation("run esbuild").
				WithResource(p.file.Dir()).
				WithIssue(issue.BuildFailedId).
				Wrap(fmt.Errorf("esbuild exited with status %d", res.ExitCode)).
				BuildError(),
		}
	}
	progress.Done("build finished")

	fmt.Fprintln(app.stdout, SuccessStyle.Render("Build succeeded"))
	return nil
}
