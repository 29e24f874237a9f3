// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"io/fs"

	"github.com/charmbracelet/log"
)

// Default builds the standard chain, outermost first: archives bundled in
// bundled (may be nil), the cache under root, then a download. It fails
// before any I/O when the running platform has no esbuild build.
func Default(root string, bundled fs.FS, logger *log.Logger, opts ...DownloadOption) (Chain, error) {
	layout, err := NewLayout(root)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		opts = append([]DownloadOption{WithDownloadLogger(logger)}, opts...)
	}
	return Chain{
		&BundledResolver{Layout: layout, FS: bundled, Logger: logger},
		&CacheResolver{Layout: layout},
		NewDownloadResolver(layout, opts...),
	}, nil
}
