// SPDX-License-Identifier: MPL-2.0

package install

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// rename is replaceable in tests to simulate filesystem contention.
var rename = os.Rename //nolint:gochecknoglobals // test seam

// SafeMove moves the directory src to dst. When the filesystem refuses the
// rename (cross-device moves, files held open by other processes) it falls
// back to moving file by file, copying what cannot be renamed, and then
// removes what is left of src.
func SafeMove(src, dst string, logger *log.Logger) error {
	err := rename(src, dst)
	if err == nil {
		return nil
	}
	if !isContention(err) {
		return fmt.Errorf("moving %s to %s: %w", src, dst, err)
	}

	logger.Warn("rename refused, falling back to copy", "src", src, "dst", dst, "err", err)

	// Sources that were copied rather than moved still need deleting.
	var copied []string
	walkErr := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type().IsRegular():
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			if rename(p, target) == nil {
				return nil
			}
			if err := copyFile(p, target); err != nil {
				return fmt.Errorf("copying %s: %w", p, err)
			}
			copied = append(copied, p)
		}
		// Symlinks and special files are not carried over.
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("moving %s to %s: %w", src, dst, walkErr)
	}

	for _, p := range copied {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("could not delete source after copy", "path", p, "err", err)
		}
	}
	if err := os.RemoveAll(src); err != nil {
		logger.Warn("could not remove source directory", "path", src, "err", err)
	}
	return nil
}

// copyFile copies a single file, preserving its permission bits.
func copyFile(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
