// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
)

// ErrUnsafePath is the sentinel wrapped by SecurityError.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// SecurityError reports an archive entry whose normalized path is not
// contained in the extraction destination.
type SecurityError struct {
	Entry string
	Dest  string
}

// Error implements the error interface.
func (e *SecurityError) Error() string {
	return fmt.Sprintf("bad archive entry %q: resolves outside of %s", e.Entry, e.Dest)
}

// Unwrap returns ErrUnsafePath so callers can use errors.Is.
func (e *SecurityError) Unwrap() error {
	return ErrUnsafePath
}
