// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/bundlekit/bundlekit/internal/issue"

	"github.com/spf13/cobra"
)

func newIssueCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "issue [slug]",
		Short: "Explain a known failure and how to fix it",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var slugs []string
			for _, i := range issue.Values() {
				slugs = append(slugs, i.Id().String())
			}
			return slugs, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, i := range issue.Values() {
					fmt.Fprintf(app.stdout, "%-26s %s\n", CmdStyle.Render(i.Id().String()), issueTitle(i))
				}
				return nil
			}

			id, ok := issue.ParseId(args[0])
			if !ok {
				return fmt.Errorf("unknown issue %q; run 'bundlekit issue' for the list", args[0])
			}
			style := "notty"
			if isTerminal(app.stdout) {
				style = "dark"
			}
			out, err := issue.Get(id).Render(style)
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}
}

// issueTitle returns the first markdown heading of i.
func issueTitle(i *issue.Issue) string {
	for line := range strings.Lines(string(i.MarkdownMsg())) {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return title
		}
	}
	return ""
}
