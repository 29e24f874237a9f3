// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/bundlekit/bundlekit/internal/testutil"
	"github.com/bundlekit/bundlekit/pkg/archive"
	"github.com/bundlekit/bundlekit/pkg/locate"
	"github.com/bundlekit/bundlekit/pkg/webdep"
)

// mvnpmJar writes an mvnpm-style artifact holding one package.
func mvnpmJar(t *testing.T, dir, id, pkg string) webdep.WebDependency {
	t.Helper()
	path := testutil.WriteZip(t, dir, id+".jar", testutil.Files(map[string]string{
		"META-INF/resources/_static/" + pkg + "/1.0.0/package.json": `{"name":"` + pkg + `"}`,
		"META-INF/resources/_static/" + pkg + "/1.0.0/index.js":     "export default 1",
	}))
	return webdep.New(id, path, webdep.KindMvnpm)
}

func manifestDirs(t *testing.T, target string) []string {
	t.Helper()
	dirs := ReadManifest(ManifestPath(target), discard()).Dirs()
	sort.Strings(dirs)
	return dirs
}

func TestSync_Scenario(t *testing.T) {
	t.Parallel()

	artifacts := t.TempDir()
	target := filepath.Join(t.TempDir(), "node_modules")
	d := mvnpmJar(t, artifacts, "pkg-a", "react-bootstrap")

	changed, err := New().Sync(context.Background(), target, []webdep.WebDependency{d})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !changed {
		t.Error("Sync() changed = false, want true")
	}
	if !testutil.Exists(filepath.Join(target, "react-bootstrap", "package.json")) {
		t.Error("react-bootstrap/package.json missing")
	}

	m := ReadManifest(ManifestPath(target), discard())
	want := Manifest{Installed: []InstalledDependency{{ID: "pkg-a", Dirs: []string{"react-bootstrap"}}}}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("manifest = %+v, want %+v", m, want)
	}
	if testutil.Exists(filepath.Join(target, ReservedDir, scratchDir)) {
		t.Error("scratch area left behind")
	}
}

func TestSync_Idempotent(t *testing.T) {
	t.Parallel()

	artifacts := t.TempDir()
	target := filepath.Join(t.TempDir(), "node_modules")
	deps := []webdep.WebDependency{mvnpmJar(t, artifacts, "a", "a"), mvnpmJar(t, artifacts, "b", "b")}
	inst := New()

	if _, err := inst.Sync(context.Background(), target, deps); err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}

	// A marker survives only if the second call leaves the tree alone.
	marker := filepath.Join(target, "a", "marker")
	testutil.MustWriteFile(t, marker, "x")

	changed, err := inst.Sync(context.Background(), target, deps)
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	if changed {
		t.Error("second Sync() changed = true, want false")
	}
	if !testutil.Exists(marker) {
		t.Error("second Sync() modified an installed package")
	}
}

func TestSync_Convergence(t *testing.T) {
	t.Parallel()

	artifacts := t.TempDir()
	target := filepath.Join(t.TempDir(), "node_modules")
	a := mvnpmJar(t, artifacts, "a", "pkg-a")
	b := mvnpmJar(t, artifacts, "b", "pkg-b")
	c := mvnpmJar(t, artifacts, "c", "pkg-c")
	inst := New()

	if _, err := inst.Sync(context.Background(), target, []webdep.WebDependency{a, b}); err != nil {
		t.Fatalf("Sync(D1) error = %v", err)
	}
	res, err := inst.SyncResult(context.Background(), target, []webdep.WebDependency{b, c})
	if err != nil {
		t.Fatalf("Sync(D2) error = %v", err)
	}

	if got, want := manifestDirs(t, target), []string{"pkg-b", "pkg-c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("manifest dirs = %v, want %v", got, want)
	}
	if testutil.Exists(filepath.Join(target, "pkg-a")) {
		t.Error("pkg-a should have been evicted")
	}
	for _, name := range []string{"pkg-b", "pkg-c"} {
		if !testutil.Exists(filepath.Join(target, name, "package.json")) {
			t.Errorf("%s missing", name)
		}
	}
	if !res.Changed || res.Retained != 1 || !reflect.DeepEqual(res.Evicted, []string{"pkg-a"}) || !reflect.DeepEqual(res.Installed, []string{"pkg-c"}) {
		t.Errorf("result = %+v", res)
	}
}

func TestSync_EmptyResets(t *testing.T) {
	t.Parallel()

	artifacts := t.TempDir()
	target := filepath.Join(t.TempDir(), "node_modules")
	inst := New()

	if _, err := inst.Sync(context.Background(), target, []webdep.WebDependency{mvnpmJar(t, artifacts, "a", "a")}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	changed, err := inst.Sync(context.Background(), target, nil)
	if err != nil {
		t.Fatalf("Sync(empty) error = %v", err)
	}
	if changed {
		t.Error("Sync(empty) changed = true, want false")
	}
	if testutil.Exists(filepath.Join(target, ReservedDir)) {
		t.Error("reserved directory should be gone")
	}
	if testutil.Exists(filepath.Join(target, "a")) {
		t.Error("dependency directory should be gone")
	}
}

func TestSync_CorruptManifestStartsClean(t *testing.T) {
	t.Parallel()

	artifacts := t.TempDir()
	target := filepath.Join(t.TempDir(), "node_modules")
	testutil.MustWriteFile(t, ManifestPath(target), "garbage")
	testutil.MustWriteFile(t, filepath.Join(target, "leftover", "x.js"), "x")

	changed, err := New().Sync(context.Background(), target, []webdep.WebDependency{mvnpmJar(t, artifacts, "a", "a")})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !changed {
		t.Error("Sync() changed = false, want true")
	}
	if testutil.Exists(filepath.Join(target, "leftover")) {
		t.Error("untracked content should be wiped when the manifest is unusable")
	}
	if got := manifestDirs(t, target); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("manifest dirs = %v", got)
	}
}

func TestSync_MissingPackageRootIsSkipped(t *testing.T) {
	t.Parallel()

	artifacts := t.TempDir()
	target := filepath.Join(t.TempDir(), "node_modules")
	empty := webdep.New("empty", testutil.WriteZip(t, artifacts, "empty.jar", testutil.Files(map[string]string{
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n",
	})), webdep.KindWebjars)
	good := mvnpmJar(t, artifacts, "good", "good")

	res, err := New().SyncResult(context.Background(), target, []webdep.WebDependency{empty, good})
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !reflect.DeepEqual(res.Skipped, []string{"empty"}) {
		t.Errorf("Skipped = %v, want [empty]", res.Skipped)
	}
	m := ReadManifest(ManifestPath(target), discard())
	if _, ok := m.Find("empty"); ok {
		t.Error("skipped dependency must not be recorded")
	}
	if _, ok := m.Find("good"); !ok {
		t.Error("good dependency should be recorded")
	}
}

func TestSync_ArchiveEscapeFails(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(root, "project", "node_modules")
	evil := webdep.New("evil", testutil.WriteZip(t, root, "evil.jar", testutil.Files(map[string]string{
		"../../../../escape.txt": "boom",
	})), webdep.KindMvnpm)

	_, err := New().Sync(context.Background(), target, []webdep.WebDependency{evil})
	if !errors.Is(err, archive.ErrUnsafePath) {
		t.Fatalf("Sync() error = %v, want archive.ErrUnsafePath", err)
	}
	if testutil.Exists(filepath.Join(root, "escape.txt")) || testutil.Exists(filepath.Join(root, "project", "escape.txt")) {
		t.Error("file escaped the scratch area")
	}
}

func TestSync_IncompatiblePackaging(t *testing.T) {
	t.Parallel()

	artifacts := t.TempDir()
	target := filepath.Join(t.TempDir(), "node_modules")
	d := webdep.New("org.mvnpm:future:9", testutil.WriteZip(t, artifacts, "future.jar", testutil.Files(map[string]string{
		"META-INF/maven/org.mvnpm/future/pom.properties":   "groupId=org.mvnpm\nartifactId=future\nversion=9\n" + locate.MarkerKey + "=2.0\n",
		"META-INF/resources/_static/future/9/package.json": `{"name":"future"}`,
	})), webdep.KindMvnpm)

	_, err := New().Sync(context.Background(), target, []webdep.WebDependency{d})
	var pkgErr *locate.IncompatiblePackagingError
	if !errors.As(err, &pkgErr) || pkgErr.ID != "org.mvnpm:future:9" {
		t.Fatalf("Sync() error = %v, want IncompatiblePackagingError for the dependency", err)
	}
}

func TestSync_MoreArchive(t *testing.T) {
	t.Parallel()

	artifacts := t.TempDir()
	target := filepath.Join(t.TempDir(), "node_modules")
	more := testutil.TarGzBytes(t, testutil.Files(map[string]string{"extra/fonts.css": "@font-face{}"}))
	path := testutil.WriteZip(t, artifacts, "icons.jar", []testutil.Entry{
		{Name: "META-INF/resources/_static/icons/1.0.0/package.json", Body: `{"name":"icons"}`},
		{Name: "META-INF/resources/_static/icons/1.0.0/icons-1.0.0.more.tgz", Body: string(more)},
	})

	if _, err := New().Sync(context.Background(), target, []webdep.WebDependency{webdep.New("icons", path, webdep.KindMvnpm)}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !testutil.Exists(filepath.Join(target, "icons", "extra", "fonts.css")) {
		t.Error("nested .more.tgz content should be installed")
	}
}

func TestSync_BrokenMoreArchiveIsNotFatal(t *testing.T) {
	t.Parallel()

	artifacts := t.TempDir()
	target := filepath.Join(t.TempDir(), "node_modules")
	path := testutil.WriteZip(t, artifacts, "icons.jar", testutil.Files(map[string]string{
		"META-INF/resources/_static/icons/package.json":    `{"name":"icons"}`,
		"META-INF/resources/_static/icons/broken.more.tgz": "not gzip",
	}))

	if _, err := New().Sync(context.Background(), target, []webdep.WebDependency{webdep.New("icons", path, webdep.KindMvnpm)}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !testutil.Exists(filepath.Join(target, "icons", "package.json")) {
		t.Error("icons should still be installed")
	}
}

func TestSync_ScopedPackage(t *testing.T) {
	t.Parallel()

	artifacts := t.TempDir()
	target := filepath.Join(t.TempDir(), "node_modules")
	d := mvnpmJar(t, artifacts, "org.mvnpm.at.lit:reactive-element:2.0.4", "@lit/reactive-element")

	if _, err := New().Sync(context.Background(), target, []webdep.WebDependency{d}); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !testutil.Exists(filepath.Join(target, "@lit", "reactive-element", "package.json")) {
		t.Error("scoped package not installed under its scope directory")
	}
}

func TestSync_Canceled(t *testing.T) {
	t.Parallel()

	artifacts := t.TempDir()
	target := filepath.Join(t.TempDir(), "node_modules")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Sync(ctx, target, []webdep.WebDependency{mvnpmJar(t, artifacts, "a", "a")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Sync() error = %v, want context.Canceled", err)
	}
	if got := manifestDirs(t, target); len(got) != 0 {
		t.Errorf("manifest dirs = %v, want none", got)
	}
}

func TestChildPath(t *testing.T) {
	t.Parallel()

	target := t.TempDir()
	for _, bad := range []string{"", ".", "..", "../x", "a/../../x", ".mvnpm", ".mvnpm/tmp"} {
		if _, err := childPath(target, bad); !errors.Is(err, ErrUnsafeDir) {
			t.Errorf("childPath(%q) error = %v, want ErrUnsafeDir", bad, err)
		}
	}
	got, err := childPath(target, "@scope/pkg")
	if err != nil || got != filepath.Join(target, "@scope", "pkg") {
		t.Errorf("childPath(@scope/pkg) = %q, %v", got, err)
	}
}

func TestScratchName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"org.mvnpm:lit:3.1.0": filepath.Join("org.mvnpm", "lit", "3.1.0"),
		"../../evil":          "evil",
		"..":                  "_",
	}
	for in, want := range tests {
		if got := scratchName(in); got != want {
			t.Errorf("scratchName(%q) = %q, want %q", in, got, want)
		}
	}
}
