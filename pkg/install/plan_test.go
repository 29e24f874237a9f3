// SPDX-License-Identifier: MPL-2.0

package install

import (
	"reflect"
	"testing"

	"github.com/bundlekit/bundlekit/pkg/webdep"
)

func dep(id string) webdep.WebDependency {
	return webdep.New(id, "/artifacts/"+id+".jar", webdep.KindMvnpm)
}

func TestNewPlan(t *testing.T) {
	t.Parallel()

	old := Manifest{Installed: []InstalledDependency{
		{ID: "lit:3.0.0", Dirs: []string{"lit"}},
		{ID: "bootstrap:5", Dirs: []string{"bootstrap"}},
		{ID: "composite:1", Dirs: []string{"@mvnpm/a", "@mvnpm/b"}},
		{ID: "lit-shared:1", Dirs: []string{"lit", "lit-extra"}},
	}}
	desired := []webdep.WebDependency{dep("lit:3.0.0"), dep("composite:1"), dep("htmx:1"), dep("htmx:1")}

	p := NewPlan(old, desired)

	if p.Reset {
		t.Error("Reset = true, want false")
	}
	wantRetained := []string{"lit:3.0.0", "composite:1"}
	if got := ids(p.Retained); !reflect.DeepEqual(got, wantRetained) {
		t.Errorf("Retained = %v, want %v", got, wantRetained)
	}
	if len(p.Install) != 1 || p.Install[0].ID != "htmx:1" {
		t.Errorf("Install = %v, want [htmx:1]", p.Install)
	}
	wantEvict := []string{"bootstrap:5", "lit-shared:1"}
	if got := ids(p.Evict); !reflect.DeepEqual(got, wantEvict) {
		t.Errorf("Evict = %v, want %v", got, wantEvict)
	}
	// "lit" is still recorded by a retained entry.
	wantDirs := []string{"bootstrap", "lit-extra"}
	if !reflect.DeepEqual(p.EvictDirs, wantDirs) {
		t.Errorf("EvictDirs = %v, want %v", p.EvictDirs, wantDirs)
	}
	if !p.Changed() {
		t.Error("Changed() = false, want true")
	}

	actions := p.Actions()
	if len(actions) != 3 {
		t.Fatalf("Actions() = %v, want 3 actions", actions)
	}
	if actions[0].Kind != ActionEvict || actions[2].Kind != ActionInstall {
		t.Errorf("Actions() order = %v, want evictions before installs", actions)
	}
}

func TestNewPlan_Reset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		old     Manifest
		desired []webdep.WebDependency
		changed bool
	}{
		{name: "nothing desired", old: Manifest{Installed: []InstalledDependency{{ID: "a", Dirs: []string{"a"}}}}, changed: true},
		{name: "nothing installed", desired: []webdep.WebDependency{dep("a")}, changed: true},
		{name: "both empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewPlan(tt.old, tt.desired)
			if !p.Reset {
				t.Error("Reset = false, want true")
			}
			if p.Changed() != tt.changed {
				t.Errorf("Changed() = %v, want %v", p.Changed(), tt.changed)
			}
			for _, a := range p.Actions() {
				if a.Kind == ActionEvict {
					t.Errorf("reset plan carries eviction %v", a)
				}
			}
		})
	}
}

func TestNewPlan_Unchanged(t *testing.T) {
	t.Parallel()

	old := Manifest{Installed: []InstalledDependency{{ID: "a", Dirs: []string{"a"}}}}
	p := NewPlan(old, []webdep.WebDependency{dep("a")})
	if p.Changed() {
		t.Errorf("Changed() = true for identical sets: %+v", p)
	}
	if len(p.Actions()) != 0 {
		t.Errorf("Actions() = %v, want none", p.Actions())
	}
}

func TestPlan_Manifest(t *testing.T) {
	t.Parallel()

	p := Plan{Retained: []InstalledDependency{{ID: "b", Dirs: []string{"b"}}}}
	m := p.Manifest([]InstalledDependency{{ID: "a", Dirs: []string{"a1", "a2"}}})

	want := Manifest{Installed: []InstalledDependency{
		{ID: "a", Dirs: []string{"a1", "a2"}},
		{ID: "b", Dirs: []string{"b"}},
	}}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("Manifest() = %+v, want %+v", m, want)
	}
}

func ids(entries []InstalledDependency) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
