// SPDX-License-Identifier: MPL-2.0

package install

import (
	"github.com/bundlekit/bundlekit/pkg/webdep"
)

// Plan is the set of actions converging a target directory from an old
// manifest to a desired dependency list.
type Plan struct {
	// Reset wipes the target directory before anything else. It is set when
	// nothing is desired or nothing is recorded as installed.
	Reset bool
	// Retained entries are kept as they are.
	Retained []InstalledDependency
	// Install lists the dependencies to extract, in desired order.
	Install []webdep.WebDependency
	// Evict lists the stale entries.
	Evict []InstalledDependency
	// EvictDirs are the directories to delete: those of stale entries not
	// also recorded by a retained entry.
	EvictDirs []string
}

// Changed reports whether executing the plan installs or evicts anything.
func (p Plan) Changed() bool {
	return len(p.Install) > 0 || len(p.Evict) > 0
}

// Manifest returns the manifest after the plan succeeded with installed
// as the freshly installed entries.
func (p Plan) Manifest(installed []InstalledDependency) Manifest {
	m := Manifest{Installed: make([]InstalledDependency, 0, len(p.Retained)+len(installed))}
	m.Installed = append(m.Installed, p.Retained...)
	m.Installed = append(m.Installed, installed...)
	return m.normalized()
}

// NewPlan diffs old against desired. It performs no I/O. Duplicate desired
// ids are collapsed, first occurrence wins.
func NewPlan(old Manifest, desired []webdep.WebDependency) Plan {
	p := Plan{Reset: len(desired) == 0 || len(old.Installed) == 0}

	wanted := make(map[string]bool, len(desired))
	for _, d := range desired {
		wanted[d.ID] = true
	}

	retainedIDs := make(map[string]bool)
	retainedDirs := make(map[string]bool)
	for _, entry := range old.Installed {
		if wanted[entry.ID] {
			p.Retained = append(p.Retained, entry)
			retainedIDs[entry.ID] = true
			for _, dir := range entry.Dirs {
				retainedDirs[dir] = true
			}
			continue
		}
		p.Evict = append(p.Evict, entry)
	}

	evicted := make(map[string]bool)
	for _, entry := range p.Evict {
		for _, dir := range entry.Dirs {
			if retainedDirs[dir] || evicted[dir] {
				continue
			}
			evicted[dir] = true
			p.EvictDirs = append(p.EvictDirs, dir)
		}
	}

	queued := make(map[string]bool)
	for _, d := range desired {
		if retainedIDs[d.ID] || queued[d.ID] {
			continue
		}
		queued[d.ID] = true
		p.Install = append(p.Install, d)
	}
	return p
}

// ActionKind enumerates plan actions.
type ActionKind int

const (
	// ActionEvict deletes a top-level directory of the target.
	ActionEvict ActionKind = iota
	// ActionInstall extracts and installs a dependency.
	ActionInstall
)

// String returns the action name.
func (k ActionKind) String() string {
	switch k {
	case ActionEvict:
		return "evict"
	case ActionInstall:
		return "install"
	default:
		return "unknown"
	}
}

// Action is one side effect of a plan.
type Action struct {
	Kind ActionKind
	// Dir is set for ActionEvict.
	Dir string
	// Dep is set for ActionInstall.
	Dep webdep.WebDependency
}

// Actions returns the side effects in execution order: evictions first,
// then installs. A reset plan carries no evictions since the whole target
// is wiped.
func (p Plan) Actions() []Action {
	var actions []Action
	if !p.Reset {
		for _, dir := range p.EvictDirs {
			actions = append(actions, Action{Kind: ActionEvict, Dir: dir})
		}
	}
	for _, d := range p.Install {
		actions = append(actions, Action{Kind: ActionInstall, Dep: d})
	}
	return actions
}
