// SPDX-License-Identifier: MPL-2.0

package webdep

import (
	"errors"
	"testing"
)

func TestParseRepositoryPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		want   string
		wantOK bool
	}{
		{
			name:   "mvnpm scoped package",
			path:   "/home/u/.m2/repository/org/mvnpm/at/lit/reactive-element/2.0.4/reactive-element-2.0.4.jar",
			want:   "org.mvnpm.at.lit:reactive-element:2.0.4",
			wantOK: true,
		},
		{
			name:   "mvnpm plain package",
			path:   "/repo/org/mvnpm/lit/3.1.0/lit-3.1.0.jar",
			want:   "org.mvnpm:lit:3.1.0",
			wantOK: true,
		},
		{
			name:   "webjar",
			path:   "/repo/org/webjars/npm/htmx.org/1.8.4/htmx.org-1.8.4.jar",
			want:   "org.webjars.npm:htmx.org:1.8.4",
			wantOK: true,
		},
		{
			name:   "windows separators",
			path:   `C:\m2\org\mvnpm\lit\3.1.0\lit-3.1.0.jar`,
			want:   "org.mvnpm:lit:3.1.0",
			wantOK: true,
		},
		{name: "file name mismatch", path: "/repo/org/mvnpm/lit/3.1.0/other-3.1.0.jar"},
		{name: "outside known groups", path: "/repo/com/acme/lib/1.0/lib-1.0.jar"},
		{name: "plain file", path: "lit-3.1.0.jar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseRepositoryPath(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("ParseRepositoryPath(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if ok && got.String() != tt.want {
				t.Errorf("ParseRepositoryPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFromPath(t *testing.T) {
	t.Parallel()

	d := FromPath("/tmp/deps/htmx.org-1.8.4.jar", KindWebjars)
	if d.ID != "htmx.org-1.8.4" {
		t.Errorf("ID = %q, want %q", d.ID, "htmx.org-1.8.4")
	}

	d = FromPath("/repo/org/mvnpm/lit/3.1.0/lit-3.1.0.jar", KindMvnpm)
	if d.ID != "org.mvnpm:lit:3.1.0" {
		t.Errorf("ID = %q, want %q", d.ID, "org.mvnpm:lit:3.1.0")
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	if k, err := ParseKind("MVNPM"); err != nil || k != KindMvnpm {
		t.Errorf("ParseKind(MVNPM) = %v, %v", k, err)
	}
	if k, err := ParseKind("webjars"); err != nil || k != KindWebjars {
		t.Errorf("ParseKind(webjars) = %v, %v", k, err)
	}
	if _, err := ParseKind("npm"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(npm) error = %v, want ErrUnknownKind", err)
	}
}

func TestKindForGroup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		group  string
		want   Kind
		wantOK bool
	}{
		{group: "org.mvnpm", want: KindMvnpm, wantOK: true},
		{group: "org.mvnpm.at.lit", want: KindMvnpm, wantOK: true},
		{group: "org.webjars.npm", want: KindWebjars, wantOK: true},
		{group: "org.mvnpmx"},
		{group: "com.acme"},
	}
	for _, tt := range tests {
		got, ok := KindForGroup(tt.group)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("KindForGroup(%q) = %v, %v; want %v, %v", tt.group, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseGAV(t *testing.T) {
	t.Parallel()

	g, err := ParseGAV("org.mvnpm:lit:3.1.0")
	if err != nil {
		t.Fatalf("ParseGAV() error = %v", err)
	}
	if g.GroupID != "org.mvnpm" || g.ArtifactID != "lit" || g.Version != "3.1.0" {
		t.Errorf("ParseGAV() = %+v", g)
	}
	for _, bad := range []string{"", "a:b", "a::c", "a:b:c:d"} {
		if _, err := ParseGAV(bad); err == nil {
			t.Errorf("ParseGAV(%q) expected error", bad)
		}
	}
}
