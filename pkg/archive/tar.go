// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
)

// UnTgz extracts the gzip-compressed tar file at src into dest.
func UnTgz(src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", src, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return ExtractTarGz(f, dest)
}

// ExtractTarGz extracts a gzip-compressed tar stream into dest.
func ExtractTarGz(r io.Reader, dest string) (err error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() {
		if closeErr := gz.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return ExtractTar(gz, dest)
}

// ExtractTar extracts an uncompressed tar stream into dest.
func ExtractTar(r io.Reader, dest string) error {
	absDest, err := prepareDest(dest)
	if err != nil {
		return err
	}

	tr := tar.NewReader(r)
	for {
		hdr, nextErr := tr.Next()
		if errors.Is(nextErr, io.EOF) {
			return nil
		}
		if nextErr != nil && !errors.Is(nextErr, tar.ErrInsecurePath) {
			return fmt.Errorf("reading tar entry: %w", nextErr)
		}

		if isMetadataHeader(hdr) {
			continue
		}

		target, err := securePath(absDest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", hdr.Name, err)
			}
		case tar.TypeReg, tar.TypeRegA: //nolint:staticcheck // TypeRegA still appears in old npm tarballs
			if err := writeFile(target, tr, 0o644); err != nil {
				return fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
			restoreMode(target, hdr.FileInfo().Mode())
		default:
			// Links, devices and FIFOs are skipped.
			continue
		}
	}
}

// isMetadataHeader reports PAX/GNU bookkeeping entries that carry no file.
func isMetadataHeader(hdr *tar.Header) bool {
	switch hdr.Typeflag {
	case tar.TypeXHeader, tar.TypeXGlobalHeader, tar.TypeGNULongName, tar.TypeGNULongLink:
		return true
	}
	return hdr.Name == "pax_global_header"
}

// restoreMode applies the entry's permission bits. Filesystems that do not
// support POSIX modes are tolerated.
func restoreMode(path string, mode os.FileMode) {
	if mode.Perm() == 0 {
		return
	}
	_ = os.Chmod(path, mode.Perm())
}
