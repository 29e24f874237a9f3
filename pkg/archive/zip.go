// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
)

// Unzip extracts the zip file at src into dest.
func Unzip(src, dest string) (err error) {
	zr, err := zip.OpenReader(src)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("opening zip %s: %w", src, err)
	}
	defer func() {
		// Read-only handle; close errors are not actionable.
		_ = zr.Close()
	}()

	return extractZip(&zr.Reader, dest)
}

// ExtractZip extracts a zip archive read from r into dest.
func ExtractZip(r io.ReaderAt, size int64, dest string) error {
	// Non-local names are rejected entry by entry with a SecurityError.
	zr, err := zip.NewReader(r, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("reading zip: %w", err)
	}
	return extractZip(zr, dest)
}

func extractZip(zr *zip.Reader, dest string) error {
	absDest, err := prepareDest(dest)
	if err != nil {
		return err
	}

	for _, file := range zr.File {
		target, err := securePath(absDest, file.Name)
		if err != nil {
			return err
		}

		mode := file.Mode()
		switch {
		case mode&os.ModeSymlink != 0:
			continue
		case file.FileInfo().IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", file.Name, err)
			}
		default:
			if err := extractZipFile(file, target); err != nil {
				return fmt.Errorf("extracting %s: %w", file.Name, err)
			}
		}
	}
	return nil
}

func extractZipFile(file *zip.File, target string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Zip permission bits are unreliable across producers; only keep the
	// execute bit when it is present.
	perm := os.FileMode(0o644)
	if file.Mode().Perm()&0o111 != 0 {
		perm = 0o755
	}
	return writeFile(target, rc, perm)
}
