// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxEntryBytes bounds the decompressed size of a single entry to guard
// against decompression bombs.
const MaxEntryBytes = 1 << 30

// ErrEntryTooLarge is returned when an entry exceeds MaxEntryBytes.
var ErrEntryTooLarge = fmt.Errorf("archive entry exceeds %d bytes", MaxEntryBytes)

// securePath joins name onto dest and verifies the cleaned result stays
// inside dest.
func securePath(dest, name string) (string, error) {
	// Archives written on Windows may use backslashes.
	normalized := strings.ReplaceAll(name, `\`, "/")
	if filepath.IsAbs(normalized) || strings.HasPrefix(normalized, "/") {
		return "", &SecurityError{Entry: name, Dest: dest}
	}

	target := filepath.Join(dest, filepath.FromSlash(normalized))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &SecurityError{Entry: name, Dest: dest}
	}
	return target, nil
}

// writeFile replaces path with the contents of r, limited to MaxEntryBytes.
func writeFile(path string, r io.Reader, perm os.FileMode) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	// Remove first so read-only files from a previous extraction do not
	// block the rewrite.
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return fmt.Errorf("replacing %s: %w", path, rmErr)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	n, err := io.Copy(f, io.LimitReader(r, MaxEntryBytes+1))
	if err != nil {
		return err
	}
	if n > MaxEntryBytes {
		return fmt.Errorf("%s: %w", path, ErrEntryTooLarge)
	}
	return nil
}

func prepareDest(dest string) (string, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolving destination: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("creating destination: %w", err)
	}
	return abs, nil
}
