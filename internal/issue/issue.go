// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Catalog entries. The zero Id means "no entry".
const (
	ArchiveUnsafePathId Id = iota + 1
	IncompatiblePackagingId
	PackageRootNotFoundId
	ResolutionFailedId
	UnsupportedPlatformId
	IntegrityMismatchId
	ConfigInvalidId
	ProjectFileInvalidId
	LockBusyId
	BuildFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the markdown body of an entry.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string //nolint:revive // matches MarkdownMsg naming

	// Issue is a catalog entry.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

//nolint:gochecknoglobals // catalog tables
var (
	slugs = map[Id]string{
		ArchiveUnsafePathId:     "archive-unsafe-path",
		IncompatiblePackagingId: "incompatible-packaging",
		PackageRootNotFoundId:   "package-root-not-found",
		ResolutionFailedId:      "resolution-failed",
		UnsupportedPlatformId:   "unsupported-platform",
		IntegrityMismatchId:     "integrity-mismatch",
		ConfigInvalidId:         "config-invalid",
		ProjectFileInvalidId:    "project-file-invalid",
		LockBusyId:              "lock-busy",
		BuildFailedId:           "build-failed",
	}

	render = glamour.Render
)

// String returns the slug used on the command line, e.g. "lock-busy".
func (id Id) String() string {
	if s, ok := slugs[id]; ok {
		return s
	}
	return "unknown"
}

// ParseId maps a slug back to its Id.
func ParseId(slug string) (Id, bool) { //nolint:revive // paired with Id
	for id, s := range slugs {
		if s == slug {
			return id, true
		}
	}
	return 0, false
}

// Id returns the entry id.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the entry for a terminal with the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			md += "\n- <" + string(link) + ">"
		}
	}
	return render(md, stylePath)
}

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	ids := slices.Sorted(maps.Keys(issues))
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
