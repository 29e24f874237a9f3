// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/bundlekit/bundlekit/internal/depfile"

	"github.com/spf13/cobra"
)

type resolveParams struct {
	version string
	file    string
	source  bool
}

func newResolveCommand(app *App) *cobra.Command {
	var params resolveParams

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the path of the esbuild executable, downloading it if needed",
		Long: `Print the path of the esbuild executable, downloading it if needed.

The version comes from --version, else [esbuild] version in bundlekit.toml,
else esbuild.version from the configuration. Bundled archives are tried
first, then the cache directory, then a download.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer app.flushMetrics()
			return runResolve(cmd, app, params)
		},
	}

	cmd.Flags().StringVar(&params.version, "version", "", "esbuild version")
	cmd.Flags().StringVarP(&params.file, "file", "f", depfile.FileName, "project file consulted for the version")
	cmd.Flags().BoolVar(&params.source, "show-source", false, "also print which resolver produced the executable")

	return cmd
}

func runResolve(cmd *cobra.Command, app *App, params resolveParams) error {
	version := params.version
	if version == "" {
		v, err := app.projectVersion(params.file)
		if err != nil {
			return err
		}
		version = v
	}

	path, source, err := app.resolveEsbuild(cmd.Context(), version)
	if err != nil {
		return err
	}

	if params.source {
		fmt.Fprintf(app.stdout, "%s\t%s\n", path, source)
	} else {
		fmt.Fprintln(app.stdout, path)
	}
	return nil
}

// projectVersion returns the version pinned by the project file, falling
// back to the configuration when the file does not exist.
func (a *App) projectVersion(path string) (string, error) {
	f, err := depfile.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return a.cfg.Esbuild.Version, nil
	}
	if err != nil {
		return "", actionable(err, "load project file", path)
	}
	return f.EsbuildVersion(a.cfg.Esbuild.Version), nil
}
