// SPDX-License-Identifier: MPL-2.0

// Package cli contains CLI integration tests using testscript.
//
// These tests build the bundlekit binary once and drive it through the
// scripts in testdata with deterministic output capture.
package cli

import (
	"archive/zip"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var (
	// binaryPath is the path to the built bundlekit binary.
	binaryPath string
	// projectRoot is the path to the bundlekit project root.
	projectRoot string
)

func TestMain(m *testing.M) {
	wd, err := os.Getwd()
	if err != nil {
		panic("failed to get working directory: " + err.Error())
	}

	// Walk up to find go.mod
	projectRoot = wd
	for {
		if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(projectRoot)
		if parent == projectRoot {
			panic("could not find project root (go.mod)")
		}
		projectRoot = parent
	}

	binDir := filepath.Join(projectRoot, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		panic("failed to create bin directory: " + err.Error())
	}

	binaryName := "bundlekit"
	if runtime.GOOS == "windows" {
		binaryName = "bundlekit.exe"
	}
	binaryPath = filepath.Join(binDir, binaryName)

	cmd := exec.CommandContext(context.Background(), "go", "build", "-o", binaryPath, ".")
	cmd.Dir = projectRoot
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build bundlekit: " + err.Error())
	}

	os.Exit(m.Run())
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			binDir := filepath.Dir(binaryPath)
			env.Setenv("PATH", binDir+string(os.PathListSeparator)+env.Getenv("PATH"))

			// Keep the user's configuration and caches out of the scripts.
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(env.WorkDir, ".config"))
			env.Setenv("BUNDLEKIT_ESBUILD_CACHE_DIR", filepath.Join(env.WorkDir, ".cache"))
			env.Setenv("BUNDLEKIT_DOWNLOAD_PROGRESS", "false")
			env.Setenv("NO_COLOR", "1")
			return nil
		},
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"mkjar": cmdMkjar,
		},
		Condition: func(cond string) (bool, error) {
			switch cond {
			case "unix":
				return runtime.GOOS != "windows", nil
			}
			return false, nil
		},
		// Continue running all tests even if one fails
		ContinueOnError: true,
	})
}

// cmdMkjar writes an mvnpm-style jar: mkjar <jar> <package> [version].
func cmdMkjar(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! mkjar")
	}
	if len(args) < 2 || len(args) > 3 {
		ts.Fatalf("usage: mkjar <jar> <package> [version]")
	}
	pkg, version := args[1], "1.0.0"
	if len(args) == 3 {
		version = args[2]
	}

	path := ts.MkAbs(args[0])
	ts.Check(os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	ts.Check(err)
	defer func() { ts.Check(f.Close()) }()

	root := "META-INF/resources/_static/" + pkg + "/" + version + "/"
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{
		root + "package.json": `{"name":"` + pkg + `","version":"` + version + `"}`,
		root + "index.js":     "export default 1\n",
	} {
		w, err := zw.Create(name)
		ts.Check(err)
		_, err = w.Write([]byte(body))
		ts.Check(err)
	}
	ts.Check(zw.Close())
}
