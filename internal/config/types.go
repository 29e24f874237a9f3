// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultEsbuildVersion is resolved when neither the project file nor
	// the configuration pins a version.
	DefaultEsbuildVersion = "0.25.0"

	// DefaultCompositeGroup is the Maven group whose artifacts bundle
	// several npm packages.
	DefaultCompositeGroup = "org.mvnpm.at.mvnpm"

	// LogLevelDebug logs per-package progress.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs summaries.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs recoverable problems only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs failures only.
	LogLevelError LogLevel = "error"

	// LogFormatText writes human-readable lines.
	LogFormatText LogFormat = "text"
	// LogFormatJSON writes one JSON object per line.
	LogFormatJSON LogFormat = "json"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat is returned when a LogFormat value is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format")
)

type (
	// LogLevel is the minimum level written by the logger.
	LogLevel string

	// LogFormat selects the log encoding.
	LogFormat string

	// Config is the root configuration.
	Config struct {
		Esbuild  EsbuildConfig  `json:"esbuild" mapstructure:"esbuild"`
		Install  InstallConfig  `json:"install" mapstructure:"install"`
		Download DownloadConfig `json:"download" mapstructure:"download"`
		Log      LogConfig      `json:"log" mapstructure:"log"`
		Metrics  MetricsConfig  `json:"metrics" mapstructure:"metrics"`
	}

	// EsbuildConfig configures executable resolution.
	EsbuildConfig struct {
		Version string `json:"version" mapstructure:"version"`
		// DownloadURL overrides the download template; empty picks npm or
		// mvnpm depending on the version.
		DownloadURL string `json:"download_url" mapstructure:"download_url"`
		// Integrity pins the tarball digest as an SRI string.
		Integrity string `json:"integrity" mapstructure:"integrity"`
		// Verify checks downloads against the npm registry digest.
		Verify   bool     `json:"verify" mapstructure:"verify"`
		CacheDir string   `json:"cache_dir" mapstructure:"cache_dir"`
		S3       S3Config `json:"s3" mapstructure:"s3"`
	}

	// S3Config configures the client used for s3:// download templates.
	S3Config struct {
		Region   string `json:"region" mapstructure:"region"`
		Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	}

	// InstallConfig configures dependency synchronization.
	InstallConfig struct {
		// NodeModules is the target directory, relative to the project file.
		NodeModules     string   `json:"node_modules" mapstructure:"node_modules"`
		CompositeGroups []string `json:"composite_groups" mapstructure:"composite_groups"`
		// Lock takes an advisory lock next to the target during sync.
		Lock bool `json:"lock" mapstructure:"lock"`
	}

	// DownloadConfig tunes network access.
	DownloadConfig struct {
		Retries  int           `json:"retries" mapstructure:"retries"`
		Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
		Progress bool          `json:"progress" mapstructure:"progress"`
	}

	// LogConfig configures the logger.
	LogConfig struct {
		Level  LogLevel  `json:"level" mapstructure:"level"`
		Format LogFormat `json:"format" mapstructure:"format"`
	}

	// MetricsConfig configures the Prometheus textfile export.
	MetricsConfig struct {
		// Textfile is written after each command when set.
		Textfile string `json:"textfile" mapstructure:"textfile"`
	}

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidLogFormatError is returned when a LogFormat value is not recognized.
	// It wraps ErrInvalidLogFormat for errors.Is() compatibility.
	InvalidLogFormatError struct {
		Value LogFormat
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Esbuild: EsbuildConfig{
			Version: DefaultEsbuildVersion,
			Verify:  true,
		},
		Install: InstallConfig{
			NodeModules:     "node_modules",
			CompositeGroups: []string{DefaultCompositeGroup},
			Lock:            true,
		},
		Download: DownloadConfig{
			Retries:  3,
			Timeout:  2 * time.Minute,
			Progress: true,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface.
func (e *InvalidLogFormatError) Error() string {
	return fmt.Sprintf("invalid log format %q (valid: text, json)", e.Value)
}

// Unwrap returns ErrInvalidLogFormat for errors.Is() compatibility.
func (e *InvalidLogFormatError) Unwrap() error { return ErrInvalidLogFormat }

// IsValid returns whether the LogFormat is one of the defined formats.
func (f LogFormat) IsValid() (bool, []error) {
	switch f {
	case LogFormatText, LogFormatJSON:
		return true, nil
	default:
		return false, []error{&InvalidLogFormatError{Value: f}}
	}
}

// Validate checks the values CUE cannot see, i.e. those that came from the
// environment after schema validation.
func (c *Config) Validate() error {
	var errs []error
	if _, fieldErrs := c.Log.Level.IsValid(); len(fieldErrs) > 0 {
		errs = append(errs, fieldErrs...)
	}
	if _, fieldErrs := c.Log.Format.IsValid(); len(fieldErrs) > 0 {
		errs = append(errs, fieldErrs...)
	}
	if c.Download.Retries < 0 {
		errs = append(errs, fmt.Errorf("download.retries must not be negative, got %d", c.Download.Retries))
	}
	if c.Download.Timeout < 0 {
		errs = append(errs, fmt.Errorf("download.timeout must not be negative, got %s", c.Download.Timeout))
	}
	return errors.Join(errs...)
}
