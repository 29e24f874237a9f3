// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
)

const (
	// NpmURLTemplate is the default download location of esbuild builds.
	NpmURLTemplate = "https://registry.npmjs.org/@esbuild/{classifier}/-/{archive}"

	// MvnpmURLTemplate serves esbuild builds republished by mvnpm.
	MvnpmURLTemplate = "https://github.com/mvnpm/esbuild/releases/download/v{release}/{archive}"

	// DefaultRegistryURL is queried for published integrity digests.
	DefaultRegistryURL = "https://registry.npmjs.org"

	// tarballName is the cached download inside the version directory.
	tarballName = "esbuild.tgz"

	defaultRetries       = 3
	defaultRetryInterval = 500 * time.Millisecond
)

type (
	// DownloadResolver fetches the platform tarball and extracts it into the
	// cache layout. Failures are reported as *ResolutionError rather than
	// ErrNotFound since it is the last resort.
	DownloadResolver struct {
		layout        Layout
		client        *http.Client
		urlTemplate   string
		registryURL   string
		integrity     string
		verify        bool
		retries       uint64
		retryInterval time.Duration
		progress      io.Writer
		s3            S3API
		s3Region      string
		s3Endpoint    string
		userAgent     string
		maxBytes      int64
		logger        *log.Logger
	}

	// DownloadOption configures a DownloadResolver.
	DownloadOption func(*DownloadResolver)
)

// WithHTTPClient sets the HTTP client used for downloads and registry
// lookups.
func WithHTTPClient(c *http.Client) DownloadOption {
	return func(d *DownloadResolver) { d.client = c }
}

// WithURLTemplate overrides the download location for every version. The
// template may contain {classifier}, {version}, {release} and {archive}.
// Templates starting with s3:// are fetched from S3.
func WithURLTemplate(tmpl string) DownloadOption {
	return func(d *DownloadResolver) { d.urlTemplate = tmpl }
}

// WithRegistryURL overrides the npm registry used for integrity lookups.
func WithRegistryURL(u string) DownloadOption {
	return func(d *DownloadResolver) { d.registryURL = strings.TrimRight(u, "/") }
}

// WithIntegrity pins the expected subresource integrity string, e.g.
// "sha512-...". It takes precedence over registry verification.
func WithIntegrity(sri string) DownloadOption {
	return func(d *DownloadResolver) { d.integrity = strings.TrimSpace(sri) }
}

// WithRegistryVerification enables checking downloads against the digest
// published in the npm registry.
func WithRegistryVerification(enabled bool) DownloadOption {
	return func(d *DownloadResolver) { d.verify = enabled }
}

// WithRetries sets how many times a failed download is retried.
func WithRetries(n uint64) DownloadOption {
	return func(d *DownloadResolver) { d.retries = n }
}

// WithRetryInterval sets the initial backoff interval between retries.
func WithRetryInterval(interval time.Duration) DownloadOption {
	return func(d *DownloadResolver) { d.retryInterval = interval }
}

// WithProgress renders a progress bar on w while downloading.
func WithProgress(w io.Writer) DownloadOption {
	return func(d *DownloadResolver) { d.progress = w }
}

// WithS3Client sets the client used for s3:// templates.
func WithS3Client(c S3API) DownloadOption {
	return func(d *DownloadResolver) { d.s3 = c }
}

// WithS3Region configures the lazily created S3 client.
func WithS3Region(region, endpoint string) DownloadOption {
	return func(d *DownloadResolver) {
		d.s3Region = region
		d.s3Endpoint = endpoint
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) DownloadOption {
	return func(d *DownloadResolver) { d.userAgent = ua }
}

// WithDownloadLogger sets the logger.
func WithDownloadLogger(logger *log.Logger) DownloadOption {
	return func(d *DownloadResolver) { d.logger = logger }
}

// NewDownloadResolver creates a DownloadResolver writing into layout.
func NewDownloadResolver(layout Layout, opts ...DownloadOption) *DownloadResolver {
	d := &DownloadResolver{
		layout:        layout,
		client:        http.DefaultClient,
		registryURL:   DefaultRegistryURL,
		retries:       defaultRetries,
		retryInterval: defaultRetryInterval,
		userAgent:     "bundlekit/dev",
		maxBytes:      maxTarballBytes,
		logger:        log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Source implements Resolver.
func (d *DownloadResolver) Source() string { return "download" }

// URL returns the download location of version.
func (d *DownloadResolver) URL(version string) string {
	tmpl := d.urlTemplate
	if tmpl == "" {
		tmpl = NpmURLTemplate
		if isMvnpmBuild(version) {
			tmpl = MvnpmURLTemplate
		}
	}
	return strings.NewReplacer(
		"{classifier}", d.layout.Classifier,
		"{version}", version,
		"{release}", mvnpmRelease(version),
		"{archive}", archiveName(d.layout.Classifier, version),
	).Replace(tmpl)
}

// Resolve implements Resolver. A tarball left by an earlier run is reused;
// one that fails to extract is deleted so the next call downloads again.
func (d *DownloadResolver) Resolve(ctx context.Context, version string) (string, error) {
	dir := d.layout.Dir(version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &ResolutionError{Version: version, Err: err}
	}
	tarball := filepath.Join(dir, tarballName)
	src := d.URL(version)

	if _, err := os.Stat(tarball); errors.Is(err, fs.ErrNotExist) {
		d.logger.Info("downloading esbuild", "version", version, "url", redactURL(src))
		if err := d.download(ctx, src, tarball, version); err != nil {
			return "", &ResolutionError{Version: version, Err: err}
		}
	} else {
		d.logger.Debug("esbuild tarball already downloaded", "path", tarball)
	}

	if err := d.checkIntegrity(ctx, tarball, src, version); err != nil {
		_ = os.Remove(tarball)
		return "", &ResolutionError{Version: version, Err: err}
	}

	path, err := d.extractTarball(tarball, version)
	if err != nil {
		_ = os.Remove(tarball)
		return "", &ResolutionError{Version: version, Err: err}
	}
	return path, nil
}

func (d *DownloadResolver) extractTarball(tarball, version string) (_ string, err error) {
	f, err := os.Open(tarball)
	if err != nil {
		return "", err
	}
	defer func() {
		// Read-only file handle.
		_ = f.Close()
	}()

	d.logger.Debug("extracting esbuild", "from", tarball, "to", d.layout.Dir(version))
	return d.layout.extract(f, version)
}

// download fetches src into dst through a uniquely named temporary file so
// concurrent resolutions never observe a partial tarball.
func (d *DownloadResolver) download(ctx context.Context, src, dst, version string) error {
	tmp := filepath.Join(filepath.Dir(dst), "."+tarballName+"-"+uuid.NewString())
	defer func() { _ = os.Remove(tmp) }()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.retryInterval
	b := backoff.WithContext(backoff.WithMaxRetries(policy, d.retries), ctx)

	attempt := 0
	op := func() error {
		attempt++
		if attempt > 1 {
			d.logger.Warn("retrying esbuild download", "attempt", attempt, "url", redactURL(src))
		}
		body, size, err := d.fetch(ctx, src)
		if err != nil {
			return err
		}
		defer func() { _ = body.Close() }() // read-only response body
		return d.writeFile(tmp, body, size, version)
	}
	if err := backoff.Retry(op, b); err != nil {
		return fmt.Errorf("downloading %s: %w", redactURL(src), err)
	}
	return os.Rename(tmp, dst)
}

func (d *DownloadResolver) writeFile(path string, body io.Reader, size int64, version string) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return backoff.Permanent(err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var w io.Writer = f
	if d.progress != nil {
		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(d.progress),
			progressbar.OptionSetDescription("esbuild "+version),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		w = io.MultiWriter(f, bar)
	}

	n, err := io.Copy(w, io.LimitReader(body, d.maxBytes+1))
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if n > d.maxBytes {
		return backoff.Permanent(fmt.Errorf("%w: more than %d bytes", errTarballTooLarge, d.maxBytes))
	}
	return nil
}

// fetch dispatches on the URL scheme.
func (d *DownloadResolver) fetch(ctx context.Context, src string) (io.ReadCloser, int64, error) {
	if strings.HasPrefix(src, s3Scheme) {
		return d.fetchS3(ctx, src)
	}
	return d.fetchHTTP(ctx, src)
}
