// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package install

import (
	"errors"
	"io/fs"
	"os"
)

// isContention treats every rename failure except a missing source as
// contention. Windows reports sharing violations from antivirus and
// indexers this way.
func isContention(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && !errors.Is(err, fs.ErrNotExist)
}
