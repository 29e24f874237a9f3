// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestCatalogCompleteness(t *testing.T) {
	t.Parallel()

	for id := range slugs {
		i := Get(id)
		if i == nil {
			t.Errorf("no catalog entry for %s", id)
			continue
		}
		if i.Id() != id {
			t.Errorf("entry %s has id %d", id, i.Id())
		}
		if strings.TrimSpace(string(i.MarkdownMsg())) == "" {
			t.Errorf("entry %s has no content", id)
		}
	}
	if len(issues) != len(slugs) {
		t.Errorf("catalog has %d entries, %d slugs", len(issues), len(slugs))
	}
}

func TestParseId(t *testing.T) {
	t.Parallel()

	for id, slug := range slugs {
		got, ok := ParseId(slug)
		if !ok || got != id {
			t.Errorf("ParseId(%q) = %d, %v; want %d", slug, got, ok, id)
		}
	}
	if _, ok := ParseId("nope"); ok {
		t.Error("ParseId(nope) ok = true")
	}
	if Id(0).String() != "unknown" {
		t.Errorf("Id(0).String() = %q", Id(0).String())
	}
}

func TestValues_Ordered(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("Values() returned %d entries, want %d", len(values), len(issues))
	}
	for i := 1; i < len(values); i++ {
		if values[i-1].Id() >= values[i].Id() {
			t.Errorf("Values() not ordered at %d", i)
		}
	}
}

func TestIssue_LinksAreCopies(t *testing.T) {
	t.Parallel()

	i := Get(ResolutionFailedId)
	links := i.DocLinks()
	if len(links) == 0 {
		t.Fatal("expected doc links")
	}
	links[0] = "modified"
	if i.DocLinks()[0] == "modified" {
		t.Error("DocLinks() exposes internal slice")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	for _, i := range Values() {
		out, err := i.Render("notty")
		if err != nil {
			t.Errorf("Render(%s) error = %v", i.Id(), err)
			continue
		}
		if out == "" {
			t.Errorf("Render(%s) returned empty output", i.Id())
		}
	}
}

func TestIssue_RenderSeeAlso(t *testing.T) {
	t.Parallel()

	i := &Issue{id: LockBusyId, mdMsg: "# Title", docLinks: []HttpLink{"https://a.example"}, extLinks: []HttpLink{"https://b.example"}}
	out, err := i.Render("notty")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"See also", "https://a.example", "https://b.example"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q:\n%s", want, out)
		}
	}
}
