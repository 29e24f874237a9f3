// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by tests: filesystem helpers
// that fail the test on error, and in-memory zip and tar.gz builders used
// to fabricate dependency artifacts and tool distributions.
package testutil
