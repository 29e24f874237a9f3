// SPDX-License-Identifier: MPL-2.0

// Package esbuild describes an esbuild invocation and runs the executable.
//
// A [Config] is turned into command-line flags or a JSON object by walking
// a fixed, ordered flag table: every field that differs from its zero value
// becomes a flag.
package esbuild
