// SPDX-License-Identifier: MPL-2.0

package install

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/bundlekit/bundlekit/internal/testutil"
)

func TestSafeMove_Rename(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	testutil.MustWriteFile(t, filepath.Join(src, "a", "b.js"), "b")

	if err := SafeMove(src, dst, discard()); err != nil {
		t.Fatalf("SafeMove() error = %v", err)
	}
	if got := testutil.MustReadFile(t, filepath.Join(dst, "a", "b.js")); got != "b" {
		t.Errorf("moved content = %q", got)
	}
	if testutil.Exists(src) {
		t.Error("source still exists")
	}
}

// Swaps the package level rename seam, so it must not run in parallel.
func TestSafeMove_FallbackOnContention(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	testutil.MustWriteFile(t, filepath.Join(src, "index.js"), "index")
	testutil.MustWriteFile(t, filepath.Join(src, "lib", "util.js"), "util")
	testutil.MustWriteFile(t, filepath.Join(src, "lib", "locked.js"), "locked")

	orig := rename
	t.Cleanup(func() { rename = orig })
	rename = func(oldpath, newpath string) error {
		if oldpath == src || filepath.Base(oldpath) == "locked.js" {
			return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EBUSY}
		}
		return orig(oldpath, newpath)
	}

	if err := SafeMove(src, dst, discard()); err != nil {
		t.Fatalf("SafeMove() error = %v", err)
	}
	for name, want := range map[string]string{
		"index.js":                        "index",
		filepath.Join("lib", "util.js"):   "util",
		filepath.Join("lib", "locked.js"): "locked",
	} {
		if got := testutil.MustReadFile(t, filepath.Join(dst, name)); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if testutil.Exists(src) {
		t.Error("source should be removed after fallback")
	}
}

func TestSafeMove_MissingSource(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := SafeMove(filepath.Join(root, "nope"), filepath.Join(root, "dst"), discard()); err == nil {
		t.Fatal("SafeMove() error = nil, want error")
	}
}
