// SPDX-License-Identifier: MPL-2.0

//go:build unix

package install

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isContention reports whether a rename failure is worth retrying as a
// copy: cross-device moves, busy files, permission refusals and targets
// that could not be replaced.
func isContention(err error) bool {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case unix.EXDEV, unix.EBUSY, unix.ETXTBSY, unix.EACCES, unix.EPERM, unix.ENOTEMPTY, unix.EEXIST:
		return true
	default:
		return false
	}
}
