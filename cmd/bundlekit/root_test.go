// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"
	"testing"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2025-06-15T10:00:00Z"

		want := "v1.2.3 (commit: abc1234, built: 2025-06-15T10:00:00Z)"
		if got := getVersionString(); got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)
	root := NewRootCommand(app)

	for _, name := range []string{"sync", "resolve", "manifest", "build", "config", "issue", "version"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestRootCommand_InvalidLogFormat(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)
	err := execute(app, "--log-format", "xml", "version")
	if err == nil || !strings.Contains(err.Error(), "xml") {
		t.Errorf("error = %v, want invalid log format", err)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	app, stdout := newTestApp(t, nil)
	if err := execute(app, "version"); err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "bundlekit ") {
		t.Errorf("output = %q", stdout.String())
	}
}
