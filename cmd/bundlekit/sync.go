// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bundlekit/bundlekit/internal/depfile"
	"github.com/bundlekit/bundlekit/internal/logging"
	"github.com/bundlekit/bundlekit/pkg/install"

	"github.com/spf13/cobra"
)

type syncParams struct {
	file   string
	dir    string
	noLock bool
	dryRun bool
	watch  bool
}

func newSyncCommand(app *App) *cobra.Command {
	var params syncParams

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Install the declared web dependencies into node_modules",
		Long: `Install the declared web dependencies into node_modules.

Every jar listed in bundlekit.toml is extracted and its npm package roots are
moved into the target directory. Packages installed by an earlier run and
still declared are left alone; packages no longer declared are removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer app.flushMetrics()
			return runSync(cmd, app, params)
		},
	}

	addProjectFlags(cmd, &params.file, &params.dir)
	cmd.Flags().BoolVar(&params.noLock, "no-lock", false, "do not take the target directory lock")
	cmd.Flags().BoolVar(&params.dryRun, "dry-run", false, "print the planned changes without applying them")
	cmd.Flags().BoolVarP(&params.watch, "watch", "w", false, "sync again whenever the project file or a jar changes")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "watch")

	return cmd
}

func addProjectFlags(cmd *cobra.Command, file, dir *string) {
	cmd.Flags().StringVarP(file, "file", "f", depfile.FileName, "project file")
	cmd.Flags().StringVar(dir, "dir", "", "target directory (default: node_modules next to the project file)")
}

func runSync(cmd *cobra.Command, app *App, params syncParams) error {
	ctx := cmd.Context()
	if !params.watch {
		return syncOnce(ctx, app, params)
	}
	return app.watchProject(ctx, params.file, params.dir, func(ctx context.Context) error {
		return syncOnce(ctx, app, params)
	})
}

func syncOnce(ctx context.Context, app *App, params syncParams) error {
	p, err := app.loadProject(params.file, params.dir)
	if err != nil {
		return err
	}

	if params.dryRun {
		old := install.PeekManifest(install.ManifestPath(p.target), app.logger)
		printPlan(app.stdout, p.target, install.NewPlan(old, p.deps))
		return nil
	}

	progress := logging.Start(logging.FromContext(ctx))
	res, err := app.syncProject(ctx, p, params.noLock)
	if err != nil {
		return err
	}
	progress.Done("synchronized", "target", p.target)

	printSyncResult(app.stdout, p.target, res)
	return nil
}

func printSyncResult(w io.Writer, target string, res *install.Result) {
	if !res.Changed {
		fmt.Fprintf(w, "%s %s\n", CmdStyle.Render(target), SubtitleStyle.Render("is up to date"))
		return
	}

	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Synchronized"), CmdStyle.Render(target))
	for _, dir := range res.Evicted {
		fmt.Fprintf(w, "  %s %s\n", ErrorStyle.Render("-"), dir)
	}
	for _, dir := range res.Installed {
		fmt.Fprintf(w, "  %s %s\n", SuccessStyle.Render("+"), dir)
	}
	for _, id := range res.Skipped {
		fmt.Fprintf(w, "  %s %s %s\n", WarningStyle.Render("!"), id, SubtitleStyle.Render("(no package root)"))
	}
	if res.Retained > 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render(fmt.Sprintf("%d unchanged", res.Retained)))
	}
}

func printPlan(w io.Writer, target string, plan install.Plan) {
	actions := plan.Actions()
	if len(actions) == 0 && !plan.Reset {
		fmt.Fprintf(w, "%s %s\n", CmdStyle.Render(target), SubtitleStyle.Render("is up to date"))
		return
	}

	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Plan for"), CmdStyle.Render(target))
	if plan.Reset {
		fmt.Fprintf(w, "  %s %s\n", ErrorStyle.Render("reset"), SubtitleStyle.Render("(target is wiped)"))
	}
	for _, action := range actions {
		switch action.Kind {
		case install.ActionEvict:
			fmt.Fprintf(w, "  %s %s\n", ErrorStyle.Render(action.Kind.String()), action.Dir)
		case install.ActionInstall:
			fmt.Fprintf(w, "  %s %s\n", SuccessStyle.Render(action.Kind.String()), action.Dep.ID)
		}
	}
	if n := len(plan.Retained); n > 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render(fmt.Sprintf("%d unchanged", n)))
	}
}
