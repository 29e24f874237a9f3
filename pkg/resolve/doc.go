// SPDX-License-Identifier: MPL-2.0

// Package resolve locates a platform-specific esbuild executable.
//
// Resolution runs an ordered [Chain] of resolvers: an archive bundled into
// the binary, the on-disk cache and finally a network download. Each
// resolver either returns a path, reports [ErrNotFound] to let the next one
// try, or fails the whole chain. All resolvers share one cache layout,
// <root>/esbuild-<version>, so a successful download is found by the cache
// resolver on the next call.
package resolve
