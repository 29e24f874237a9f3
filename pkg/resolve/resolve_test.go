// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/bundlekit/bundlekit/internal/testutil"
)

const testClassifier = "linux-x64"

func testLayout(t *testing.T) Layout {
	t.Helper()
	return Layout{Root: t.TempDir(), Classifier: testClassifier}
}

// esbuildTarball builds a platform tarball with the executable under
// package/bin, or directly under package when legacy is set.
func esbuildTarball(t *testing.T, legacy bool) []byte {
	t.Helper()
	exe := "package/bin/esbuild"
	if legacy {
		exe = "package/esbuild"
	}
	return testutil.TarGzBytes(t, []testutil.Entry{
		{Name: "package/package.json", Body: `{"name":"@esbuild/linux-x64"}`},
		{Name: exe, Body: "#!/bin/sh\necho esbuild\n", Mode: 0o755},
	})
}

type fakeResolver struct {
	source string
	path   string
	err    error
	calls  int
}

func (f *fakeResolver) Source() string { return f.source }

func (f *fakeResolver) Resolve(context.Context, string) (string, error) {
	f.calls++
	return f.path, f.err
}

func TestClassifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		goos, goarch string
		want         string
	}{
		{"linux", "amd64", "linux-x64"},
		{"linux", "arm64", "linux-arm64"},
		{"darwin", "amd64", "darwin-x64"},
		{"darwin", "arm64", "darwin-arm64"},
		{"windows", "amd64", "win32-x64"},
		{"windows", "arm64", "win32-arm64"},
	}
	for _, tt := range tests {
		got, err := Classifier(tt.goos, tt.goarch)
		if err != nil || got != tt.want {
			t.Errorf("Classifier(%s, %s) = %q, %v; want %q", tt.goos, tt.goarch, got, err, tt.want)
		}
	}

	for _, bad := range [][2]string{{"plan9", "amd64"}, {"linux", "386"}, {"freebsd", "arm64"}} {
		_, err := Classifier(bad[0], bad[1])
		var platErr *UnsupportedPlatformError
		if !errors.As(err, &platErr) || !errors.Is(err, ErrUnsupportedPlatform) {
			t.Errorf("Classifier(%s, %s) error = %v, want UnsupportedPlatformError", bad[0], bad[1], err)
		}
	}
}

func TestNormalizeVersion(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"0.25.0":              "0.25.0",
		"v0.25.0":             "0.25.0",
		" 0.19.9-mvnpm-0.0.1": "0.19.9-mvnpm-0.0.1",
	}
	for in, want := range tests {
		got, err := NormalizeVersion(in)
		if err != nil || got != want {
			t.Errorf("NormalizeVersion(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "latest", "0.25", "../0.25.0", "0.25.0/x"} {
		if _, err := NormalizeVersion(bad); !errors.Is(err, ErrInvalidVersion) {
			t.Errorf("NormalizeVersion(%q) error = %v, want ErrInvalidVersion", bad, err)
		}
	}
}

func TestDownloadResolver_URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		classifier string
		opts       []DownloadOption
		version    string
		want       string
	}{
		{
			name:    "npm",
			version: "0.25.0",
			want:    "https://registry.npmjs.org/@esbuild/darwin-arm64/-/darwin-arm64-0.25.0.tgz",
		},
		{
			name:    "mvnpm",
			version: "0.19.9-mvnpm-0.0.1",
			want:    "https://github.com/mvnpm/esbuild/releases/download/v0.0.1/esbuild-macos-arm64-0.19.9-mvnpm-0.0.1.tgz",
		},
		{
			name:       "mvnpm windows",
			classifier: "win32-x64",
			version:    "0.19.9-mvnpm-0.0.1",
			want:       "https://github.com/mvnpm/esbuild/releases/download/v0.0.1/esbuild-windows-x64-0.19.9-mvnpm-0.0.1.tgz",
		},
		{
			name:       "mvnpm linux",
			classifier: "linux-arm64",
			version:    "0.19.9-mvnpm-0.0.1",
			want:       "https://github.com/mvnpm/esbuild/releases/download/v0.0.1/esbuild-linux-arm64-0.19.9-mvnpm-0.0.1.tgz",
		},
		{
			name:    "custom",
			opts:    []DownloadOption{WithURLTemplate("s3://mirror/esbuild/{version}/{classifier}.tgz")},
			version: "0.25.0",
			want:    "s3://mirror/esbuild/0.25.0/darwin-arm64.tgz",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			layout := Layout{Root: "/tmp", Classifier: "darwin-arm64"}
			if tt.classifier != "" {
				layout.Classifier = tt.classifier
			}
			if got := NewDownloadResolver(layout, tt.opts...).URL(tt.version); got != tt.want {
				t.Errorf("URL(%q) = %q, want %q", tt.version, got, tt.want)
			}
		})
	}
}

func TestLayout_Executable(t *testing.T) {
	t.Parallel()

	l := testLayout(t)
	legacy := filepath.Join(l.Dir("1.0.0"), "package", "esbuild")
	if got := l.Executable("1.0.0"); got != legacy {
		t.Errorf("Executable() without package/bin = %q, want %q", got, legacy)
	}

	testutil.MustMkdirAll(t, filepath.Join(l.Dir("1.0.0"), "package", "bin"))
	current := filepath.Join(l.Dir("1.0.0"), "package", "bin", "esbuild")
	if got := l.Executable("1.0.0"); got != current {
		t.Errorf("Executable() = %q, want %q", got, current)
	}

	win := Layout{Root: l.Root, Classifier: "win32-x64"}
	if got := win.Executable("1.0.0"); got != current+".exe" {
		t.Errorf("Executable() on windows = %q, want %q", got, current+".exe")
	}
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	first := &fakeResolver{source: "first", err: fmt.Errorf("nothing here: %w", ErrNotFound)}
	second := &fakeResolver{source: "second", path: "/bin/esbuild"}
	third := &fakeResolver{source: "third", path: "/other"}

	path, source, err := Chain{first, second, third}.Lookup(context.Background(), "v0.25.0")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if path != "/bin/esbuild" || source != "second" {
		t.Errorf("Lookup() = %q, %q", path, source)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 0 {
		t.Errorf("calls = %d/%d/%d, want 1/1/0", first.calls, second.calls, third.calls)
	}
}

func TestChain_StopsOnFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	failing := &fakeResolver{source: "failing", err: boom}
	after := &fakeResolver{source: "after", path: "/bin/esbuild"}

	_, err := Chain{failing, after}.Resolve(context.Background(), "0.25.0")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || resErr.Version != "0.25.0" {
		t.Fatalf("Resolve() error = %v, want ResolutionError for 0.25.0", err)
	}
	if !errors.Is(err, boom) || !errors.Is(err, ErrUnresolved) {
		t.Errorf("Resolve() error = %v, want it to wrap the cause and ErrUnresolved", err)
	}
	if after.calls != 0 {
		t.Error("chain continued after a hard failure")
	}
}

func TestChain_Exhausted(t *testing.T) {
	t.Parallel()

	_, err := Chain{&fakeResolver{err: ErrNotFound}}.Resolve(context.Background(), "0.25.0")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) || resErr.Version != "0.25.0" || resErr.Err != nil {
		t.Fatalf("Resolve() error = %#v, want bare ResolutionError", err)
	}

	_, err = Chain{}.Resolve(context.Background(), "nope")
	if !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("Resolve(invalid) error = %v, want ErrInvalidVersion", err)
	}
}

func TestCacheResolver(t *testing.T) {
	t.Parallel()

	l := testLayout(t)
	c := &CacheResolver{Layout: l}
	if _, err := c.Resolve(context.Background(), "0.25.0"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve() on empty cache error = %v, want ErrNotFound", err)
	}

	// Present but not executable does not count.
	exe := filepath.Join(l.Dir("0.25.0"), "package", "bin", "esbuild")
	testutil.MustWriteFile(t, exe, "x")
	if _, err := c.Resolve(context.Background(), "0.25.0"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve() with non-executable file error = %v, want ErrNotFound", err)
	}

	if err := os.Chmod(exe, 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := c.Resolve(context.Background(), "0.25.0")
	if err != nil || got != exe {
		t.Errorf("Resolve() = %q, %v; want %q", got, err, exe)
	}
}

func TestBundledResolver(t *testing.T) {
	t.Parallel()

	l := testLayout(t)
	fsys := fstest.MapFS{
		"linux-x64-0.25.0.tgz": {Data: esbuildTarball(t, false)},
	}
	b := &BundledResolver{Layout: l, FS: fsys}

	got, err := b.Resolve(context.Background(), "0.25.0")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if want := filepath.Join(l.Dir("0.25.0"), "package", "bin", "esbuild"); got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}

	if _, err := b.Resolve(context.Background(), "0.24.0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(unbundled) error = %v, want ErrNotFound", err)
	}
	if _, err := (&BundledResolver{Layout: l}).Resolve(context.Background(), "0.25.0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve() without FS error = %v, want ErrNotFound", err)
	}
}

func TestBundledResolver_BrokenArchive(t *testing.T) {
	t.Parallel()

	b := &BundledResolver{Layout: testLayout(t), FS: fstest.MapFS{
		"linux-x64-0.25.0.tgz": {Data: []byte("not a tarball")},
	}}
	_, err := b.Resolve(context.Background(), "0.25.0")
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("Resolve() error = %v, want ResolutionError", err)
	}
}
