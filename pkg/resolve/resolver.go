// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
)

type (
	// Resolver produces the path of an esbuild executable for a version.
	// It returns an error wrapping ErrNotFound when it cannot provide that
	// version and another resolver should try.
	Resolver interface {
		Resolve(ctx context.Context, version string) (string, error)
		// Source names the resolver in logs and metrics.
		Source() string
	}

	// Chain tries resolvers in order.
	Chain []Resolver
)

// Resolve returns the first executable path produced by the chain.
func (c Chain) Resolve(ctx context.Context, version string) (string, error) {
	path, _, err := c.Lookup(ctx, version)
	return path, err
}

// Lookup is Resolve that also reports which resolver succeeded. Any error
// other than ErrNotFound stops the chain, as does a *ResolutionError from a
// resolver even when its cause wraps ErrNotFound. Errors are returned as
// *ResolutionError carrying the requested version.
func (c Chain) Lookup(ctx context.Context, version string) (path, source string, err error) {
	norm, err := NormalizeVersion(version)
	if err != nil {
		return "", "", &ResolutionError{Version: version, Err: err}
	}

	for _, r := range c {
		if err := ctx.Err(); err != nil {
			return "", "", &ResolutionError{Version: norm, Err: err}
		}
		path, err := r.Resolve(ctx, norm)
		if err == nil {
			return path, r.Source(), nil
		}
		var resErr *ResolutionError
		if errors.As(err, &resErr) {
			return "", "", err
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return "", "", &ResolutionError{Version: norm, Err: err}
	}
	return "", "", &ResolutionError{Version: norm}
}

// Source implements Resolver so chains can be nested.
func (c Chain) Source() string { return "chain" }
