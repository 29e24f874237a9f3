// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"
)

// BundledResolver extracts archives shipped inside the binary. Archives are
// looked up by their upstream file name at the root of FS.
type BundledResolver struct {
	Layout Layout
	FS     fs.FS
	Logger *log.Logger
}

// Source implements Resolver.
func (b *BundledResolver) Source() string { return "bundled" }

// Resolve implements Resolver.
func (b *BundledResolver) Resolve(_ context.Context, version string) (_ string, err error) {
	if b.FS == nil {
		return "", ErrNotFound
	}
	name := archiveName(b.Layout.Classifier, version)
	f, err := openArchive(b.FS, name)
	if err != nil {
		return "", err
	}
	defer func() {
		// Read-only handle.
		_ = f.Close()
	}()

	if path, ok := b.Layout.Lookup(version); ok {
		return path, nil
	}

	b.logger().Debug("extracting bundled esbuild", "archive", name, "dir", b.Layout.Dir(version))
	path, err := b.Layout.extract(f, version)
	if err != nil {
		return "", &ResolutionError{Version: version, Err: fmt.Errorf("extracting bundled %s: %w", name, err)}
	}
	return path, nil
}

func (b *BundledResolver) logger() *log.Logger {
	if b.Logger == nil {
		return log.New(io.Discard)
	}
	return b.Logger
}
