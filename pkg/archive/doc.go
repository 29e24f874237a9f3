// SPDX-License-Identifier: MPL-2.0

// Package archive extracts zip and gzip-compressed tar archives into a
// destination directory.
//
// Every entry is resolved against the destination and rejected with a
// *SecurityError when it would land outside of it (zip-slip). Symbolic and
// hard links are never recreated. POSIX permission bits carried by tar
// entries are restored on a best-effort basis.
package archive
