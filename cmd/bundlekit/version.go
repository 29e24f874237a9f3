// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"runtime"

	"github.com/bundlekit/bundlekit/pkg/resolve"

	"github.com/spf13/cobra"
)

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and platform information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprintf(app.stdout, "bundlekit %s\n", getVersionString())
			platform := SubtitleStyle.Render("unsupported")
			if classifier, err := resolve.CurrentClassifier(); err == nil {
				platform = classifier
			}
			fmt.Fprintf(app.stdout, "platform: %s/%s (esbuild %s)\n", runtime.GOOS, runtime.GOARCH, platform)
			fmt.Fprintf(app.stdout, "esbuild:  %s\n", app.cfg.Esbuild.Version)
			return nil
		},
	}
}
