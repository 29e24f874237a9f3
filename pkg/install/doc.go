// SPDX-License-Identifier: MPL-2.0

// Package install converges a node_modules-style directory to an exact set
// of web dependencies.
//
// The directory's previous state is recorded in a manifest at
// <target>/.mvnpm/mvnpm.json. Plan diffs that manifest against the desired
// dependencies without touching the filesystem; Installer.Sync executes
// the plan: stale entries are evicted, new artifacts are extracted into a
// scratch area, their package roots are located and moved into place, and
// the manifest is rewritten.
//
// Sync does not lock the target directory. Callers that may run several
// synchronizations against the same directory concurrently must serialize
// them.
package install
