// SPDX-License-Identifier: MPL-2.0

// Package fslock takes advisory cross-process locks on directories that are
// about to be rewritten.
//
// The lock file is a zero-byte sibling of the locked directory, so that the
// directory itself can be wiped while the lock is held. An orphaned lock
// file is harmless: the kernel drops the lock when the descriptor closes,
// including on a crash.
package fslock

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

var (
	// ErrLocked is returned by TryAcquire when another process holds the lock.
	ErrLocked = errors.New("lock is held by another process")
	// ErrUnsupported is returned on platforms without flock.
	ErrUnsupported = errors.New("file locking not available on this platform")
)

const pollInterval = 100 * time.Millisecond

// PathFor returns the lock file guarding dir: <parent>/.<name>.lock.
func PathFor(dir string) string {
	dir = filepath.Clean(dir)
	return filepath.Join(filepath.Dir(dir), "."+filepath.Base(dir)+".lock")
}

// Acquire blocks until the lock at path is held or ctx is done.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		l, err := TryAcquire(path)
		if !errors.Is(err, ErrLocked) {
			return l, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for %s: %w", path, ctx.Err())
		case <-ticker.C:
		}
	}
}
