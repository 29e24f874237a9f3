// SPDX-License-Identifier: MPL-2.0

package resolve

import "context"

// CacheResolver returns executables already present in the cache layout.
type CacheResolver struct {
	Layout Layout
}

// Source implements Resolver.
func (c *CacheResolver) Source() string { return "cache" }

// Resolve implements Resolver.
func (c *CacheResolver) Resolve(_ context.Context, version string) (string, error) {
	if path, ok := c.Layout.Lookup(version); ok {
		return path, nil
	}
	return "", ErrNotFound
}
