// SPDX-License-Identifier: MPL-2.0

//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package fslock

// Lock is the stub used where flock is unavailable.
type Lock struct{}

// TryAcquire always fails with ErrUnsupported; callers proceed unlocked.
func TryAcquire(string) (*Lock, error) {
	return nil, ErrUnsupported
}

// Release is a no-op.
func (l *Lock) Release() error { return nil }
