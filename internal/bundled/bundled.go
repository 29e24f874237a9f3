// SPDX-License-Identifier: MPL-2.0

// Package bundled exposes esbuild tarballs compiled into the binary.
//
// Release builds drop <classifier>-<version>.tgz files into archives/
// before compiling; source builds ship none and resolution falls through to
// the cache and download resolvers.
package bundled

import (
	"embed"
	"io/fs"
)

//go:embed archives
var archives embed.FS

// Archives returns the bundled tarballs rooted at the archive directory.
func Archives() fs.FS {
	sub, err := fs.Sub(archives, "archives")
	if err != nil {
		// fs.Sub only fails on invalid paths.
		panic(err)
	}
	return sub
}
