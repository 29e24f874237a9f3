// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bundlekit/bundlekit/pkg/install"

	"github.com/spf13/cobra"
)

type manifestParams struct {
	file string
	dir  string
	json bool
}

func newManifestCommand(app *App) *cobra.Command {
	var params manifestParams

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "List the dependencies recorded as installed in the target directory",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runManifest(app, params)
		},
	}

	addProjectFlags(cmd, &params.file, &params.dir)
	cmd.Flags().BoolVar(&params.json, "json", false, "print the raw manifest")

	return cmd
}

func runManifest(app *App, params manifestParams) error {
	target := params.dir
	if target == "" {
		p, err := app.loadProject(params.file, "")
		if err != nil {
			return err
		}
		target = p.target
	}

	m := install.ReadManifest(install.ManifestPath(target), app.logger)

	if params.json {
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}
		return nil
	}

	if len(m.Installed) == 0 {
		fmt.Fprintf(app.stdout, "%s %s\n", CmdStyle.Render(filepath.Clean(target)), SubtitleStyle.Render("has no installed dependencies"))
		return nil
	}
	for _, entry := range m.Installed {
		fmt.Fprintf(app.stdout, "%s\t%s\n", CmdStyle.Render(entry.ID), strings.Join(entry.Dirs, ", "))
	}
	return nil
}
