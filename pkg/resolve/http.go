// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff/v4"
)

const (
	// maxTarballBytes bounds a downloaded archive (256 MB).
	maxTarballBytes = 256 << 20

	// maxJSONResponseBytes bounds registry metadata responses (10 MB).
	maxJSONResponseBytes = 10 << 20
)

var errTarballTooLarge = errors.New("esbuild tarball too large")

// fetchHTTP performs a GET. Server errors and rate limiting are retryable;
// other unexpected statuses are permanent.
func (d *DownloadResolver) fetchHTTP(ctx context.Context, src string) (io.ReadCloser, int64, error) {
	resp, err := d.get(ctx, src)
	if err != nil {
		return nil, 0, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, resp.ContentLength, nil
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	default:
		_ = resp.Body.Close()
		return nil, 0, backoff.Permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

func (d *DownloadResolver) get(ctx context.Context, src string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// redactURL strips query parameters and fragments from a URL for safe
// inclusion in logs and error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String()
}
