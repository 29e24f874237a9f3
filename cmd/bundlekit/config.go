// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/bundlekit/bundlekit/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the bundlekit configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newConfigShowCommand(app),
		newConfigInitCommand(app),
		newConfigPathCommand(app),
	)

	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			source := app.cfgPath
			if source == "" {
				source = "defaults"
			}
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("// source: "+source))
			fmt.Fprint(app.stdout, config.GenerateCUE(app.cfg))
			return nil
		},
	}
}

func newConfigInitCommand(app *App) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, created, err := config.CreateDefaultConfig(dir)
			if err != nil {
				return actionable(err, "create configuration", dir)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s %s\n", WarningStyle.Render("Configuration already exists:"), CmdStyle.Render(path))
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created"), CmdStyle.Render(path))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory to write config.cue into (default is the config dir)")

	return cmd
}

func newConfigPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if app.cfgPath != "" {
				fmt.Fprintln(app.stdout, app.cfgPath)
				return nil
			}
			path, err := config.FilePath("")
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	}
}
