// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for bundlekit.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bundlekit/bundlekit/internal/config"
	"github.com/bundlekit/bundlekit/internal/logging"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // set via -ldflags
var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type rootFlags struct {
	configPath string
	verbose    bool
	logFormat  string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "bundlekit",
		Short: "Install web dependencies from Maven artifacts and bundle them with esbuild",
		Long: TitleStyle.Render("bundlekit") + SubtitleStyle.Render(" - web dependencies from jars, bundled with esbuild") + `

bundlekit extracts the npm packages shipped inside WebJars and mvnpm jars
into a node_modules directory, keeping it in sync with bundlekit.toml, and
resolves a matching esbuild executable to bundle them.

` + SubtitleStyle.Render("Examples:") + `
  bundlekit sync              Install the dependencies of ./bundlekit.toml
  bundlekit sync --dry-run    Show what would be installed or removed
  bundlekit resolve           Print the path of the esbuild executable
  bundlekit build             Sync, resolve and run esbuild
  bundlekit config show       Show the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is <config dir>/bundlekit/config.cue)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging and detailed errors")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: text or json (overrides log.format)")

	rootCmd.AddCommand(
		newSyncCommand(app),
		newResolveCommand(app),
		newManifestCommand(app),
		newBuildCommand(app),
		newConfigCommand(app),
		newIssueCommand(app),
		newVersionCommand(app),
	)

	return rootCmd
}

// init loads the configuration and builds the logger. Subcommands find both
// on the App and the logger also on the command context.
func (a *App) init(cmd *cobra.Command, flags rootFlags) error {
	ctx := cmd.Context()
	a.verbose = flags.verbose

	cfg, path, err := a.Config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return err
	}
	a.cfg, a.cfgPath = cfg, path

	level := string(cfg.Log.Level)
	if flags.verbose {
		level = string(config.LogLevelDebug)
	}
	format := cfg.Log.Format
	if flags.logFormat != "" {
		format = config.LogFormat(flags.logFormat)
		if ok, errs := format.IsValid(); !ok {
			return errors.Join(errs...)
		}
	}

	logger, err := logging.New(a.stderr, logging.Options{
		Level: level,
		JSON:  format == config.LogFormatJSON,
	})
	if err != nil {
		return err
	}
	a.logger = logger
	cmd.SetContext(logging.WithLogger(ctx, logger))
	return nil
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's status. It is called by
// main.main.
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			renderError(w, err, app.verbose)
		}),
	)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
