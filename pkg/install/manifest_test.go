// SPDX-License-Identifier: MPL-2.0

package install

import (
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/bundlekit/bundlekit/internal/testutil"
)

func discard() *log.Logger {
	return log.New(io.Discard)
}

func TestManifest_RoundTrip(t *testing.T) {
	t.Parallel()

	path := ManifestPath(t.TempDir())
	var m Manifest
	for n := range 4 {
		entry := InstalledDependency{ID: fmt.Sprintf("org.mvnpm:pkg%d:1.0.%d", n, n)}
		for d := range 3 {
			entry.Dirs = append(entry.Dirs, fmt.Sprintf("@scope%d/dir%d", n, d))
		}
		m.Installed = append(m.Installed, entry)
	}

	if err := WriteManifest(path, m); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	got := ReadManifest(path, discard())
	if !reflect.DeepEqual(got, m) {
		t.Errorf("ReadManifest() = %+v, want %+v", got, m)
	}
	if testutil.Exists(path + ".tmp") {
		t.Error("temporary manifest left behind")
	}
}

func TestReadManifest_Missing(t *testing.T) {
	t.Parallel()

	m := ReadManifest(filepath.Join(t.TempDir(), "nope.json"), discard())
	if len(m.Installed) != 0 {
		t.Errorf("ReadManifest() = %+v, want empty", m)
	}
}

func TestReadManifest_CorruptIsDeleted(t *testing.T) {
	t.Parallel()

	path := ManifestPath(t.TempDir())
	testutil.MustWriteFile(t, path, "{not json")

	m := ReadManifest(path, discard())
	if len(m.Installed) != 0 {
		t.Errorf("ReadManifest() = %+v, want empty", m)
	}
	if testutil.Exists(path) {
		t.Error("corrupt manifest should be deleted")
	}
}

func TestPeekManifest_CorruptIsKept(t *testing.T) {
	t.Parallel()

	path := ManifestPath(t.TempDir())
	testutil.MustWriteFile(t, path, "{not json")

	m := PeekManifest(path, discard())
	if len(m.Installed) != 0 {
		t.Errorf("PeekManifest() = %+v, want empty", m)
	}
	if got := testutil.MustReadFile(t, path); got != "{not json" {
		t.Errorf("manifest = %q, want it untouched", got)
	}
}

func TestWriteManifest_Format(t *testing.T) {
	t.Parallel()

	path := ManifestPath(t.TempDir())
	m := Manifest{Installed: []InstalledDependency{{ID: "pkg-a", Dirs: []string{"react-bootstrap"}}}}
	if err := WriteManifest(path, m); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	want := "{\n  \"installed\": [\n    {\n      \"id\": \"pkg-a\",\n      \"dirs\": [\n        \"react-bootstrap\"\n      ]\n    }\n  ]\n}\n"
	if got := testutil.MustReadFile(t, path); got != want {
		t.Errorf("manifest content =\n%s\nwant\n%s", got, want)
	}
}
