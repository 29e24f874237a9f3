// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/bundlekit/bundlekit/internal/bundled"
	"github.com/bundlekit/bundlekit/internal/config"
	"github.com/bundlekit/bundlekit/internal/logging"
	"github.com/bundlekit/bundlekit/internal/metrics"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services for one invocation. Cobra handlers receive it
	// and never reach for package globals.
	App struct {
		Config     ConfigProvider
		HTTPClient *http.Client
		Bundled    fs.FS
		Metrics    *metrics.Prom
		stdout     io.Writer
		stderr     io.Writer

		// Set by the root command before any subcommand runs.
		cfg     *config.Config
		cfgPath string
		logger  *log.Logger
		verbose bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		HTTPClient *http.Client
		Bundled    fs.FS
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		LoadWithSource(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Bundled == nil {
		deps.Bundled = bundled.Archives()
	}

	return &App{
		Config:     deps.Config,
		HTTPClient: deps.HTTPClient,
		Bundled:    deps.Bundled,
		Metrics:    metrics.New(),
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
		cfg:        config.DefaultConfig(),
		logger:     logging.Discard(),
	}
}

// httpClient returns the injected client or one honoring download.timeout.
func (a *App) httpClient() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return &http.Client{Timeout: a.cfg.Download.Timeout}
}

// flushMetrics writes the metrics textfile when one is configured. Failures
// are logged; they never fail the command.
func (a *App) flushMetrics() {
	if a.cfg.Metrics.Textfile == "" {
		return
	}
	if err := a.Metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.logger.Warn("could not write metrics", "path", a.cfg.Metrics.Textfile, "err", err)
	}
}
