// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Entry describes a single archive member. An empty Body with a trailing
// slash in Name produces a directory; a non-empty Link produces a symlink.
type Entry struct {
	Name string
	Body string
	Mode int64
	Link string
}

// Files converts a name->content map to entries in sorted order.
func Files(files map[string]string) []Entry {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, Entry{Name: name, Body: files[name]})
	}
	return entries
}

// ZipBytes builds a zip archive in memory.
func ZipBytes(t testing.TB, entries []Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
		switch {
		case e.Link != "":
			hdr.SetMode(os.ModeSymlink | 0o777)
		case e.Mode != 0:
			hdr.SetMode(os.FileMode(e.Mode))
		}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", e.Name, err)
		}
		body := e.Body
		if e.Link != "" {
			body = e.Link
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("writing zip entry %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	return buf.Bytes()
}

// TarGzBytes builds a gzip-compressed tar archive in memory.
func TarGzBytes(t testing.TB, entries []Entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for _, e := range entries {
		mode := e.Mode
		if mode == 0 {
			mode = 0o644
		}
		hdr := &tar.Header{Name: e.Name, Mode: mode, Size: int64(len(e.Body)), Typeflag: tar.TypeReg}
		switch {
		case e.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
			hdr.Size = 0
		case len(e.Name) > 0 && e.Name[len(e.Name)-1] == '/':
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0o755
			hdr.Size = 0
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing tar header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				t.Fatalf("writing tar body %s: %v", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar writer: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return buf.Bytes()
}

// WriteZip writes a zip archive to dir/name and returns its path.
func WriteZip(t testing.TB, dir, name string, entries []Entry) string {
	t.Helper()
	return writeBytes(t, filepath.Join(dir, name), ZipBytes(t, entries))
}

// WriteTarGz writes a tar.gz archive to dir/name and returns its path.
func WriteTarGz(t testing.TB, dir, name string, entries []Entry) string {
	t.Helper()
	return writeBytes(t, filepath.Join(dir, name), TarGzBytes(t, entries))
}

func writeBytes(t testing.TB, path string, data []byte) string {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
