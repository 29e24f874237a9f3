// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a resolver that cannot provide the
	// requested version. A Chain moves on to the next resolver only on
	// this error.
	ErrNotFound = errors.New("executable not found")

	// ErrUnresolved is the sentinel wrapped by ResolutionError.
	ErrUnresolved = errors.New("could not resolve esbuild")

	// ErrUnsupportedPlatform is the sentinel wrapped by UnsupportedPlatformError.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrIntegrity is the sentinel wrapped by IntegrityError.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrInvalidVersion is returned for versions that are neither semver nor
	// an mvnpm build.
	ErrInvalidVersion = errors.New("invalid esbuild version")
)

type (
	// ResolutionError reports that no resolver produced an executable for
	// Version. Err holds the underlying cause, if any.
	ResolutionError struct {
		Version string
		Err     error
	}

	// UnsupportedPlatformError is returned when no esbuild build exists for
	// the operating system and architecture pair.
	UnsupportedPlatformError struct {
		OS   string
		Arch string
	}

	// IntegrityError reports a downloaded archive whose digest does not match
	// the published one.
	IntegrityError struct {
		URL      string
		Expected string
		Got      string
	}
)

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not resolve esbuild with version %s: %v", e.Version, e.Err)
	}
	return "could not resolve esbuild with version " + e.Version
}

// Unwrap returns both ErrUnresolved and the cause so errors.Is matches
// either.
func (e *ResolutionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnresolved, e.Err}
	}
	return []error{ErrUnresolved}
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("esbuild is not available for %s/%s", e.OS, e.Arch)
}

// Unwrap returns ErrUnsupportedPlatform.
func (e *UnsupportedPlatformError) Unwrap() error { return ErrUnsupportedPlatform }

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for %s\nExpected: %s\nGot:      %s", e.URL, e.Expected, e.Got)
}

// Unwrap returns ErrIntegrity.
func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
