// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bundlekit/bundlekit/internal/cueutil"
	"github.com/bundlekit/bundlekit/internal/issue"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "bundlekit"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. BUNDLEKIT_LOG_LEVEL.
	EnvPrefix = "BUNDLEKIT"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the bundlekit configuration directory: %APPDATA% on
// Windows, ~/Library/Application Support on macOS and $XDG_CONFIG_HOME
// (default ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the path of the user config file in dir, or in ConfigDir
// when dir is empty.
func FilePath(dir string) (string, error) {
	cfgDir, err := configDirWithOverride(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("esbuild.version", defaults.Esbuild.Version)
	v.SetDefault("esbuild.download_url", defaults.Esbuild.DownloadURL)
	v.SetDefault("esbuild.integrity", defaults.Esbuild.Integrity)
	v.SetDefault("esbuild.verify", defaults.Esbuild.Verify)
	v.SetDefault("esbuild.cache_dir", defaults.Esbuild.CacheDir)
	v.SetDefault("esbuild.s3.region", defaults.Esbuild.S3.Region)
	v.SetDefault("esbuild.s3.endpoint", defaults.Esbuild.S3.Endpoint)
	v.SetDefault("install.node_modules", defaults.Install.NodeModules)
	v.SetDefault("install.composite_groups", defaults.Install.CompositeGroups)
	v.SetDefault("install.lock", defaults.Install.Lock)
	v.SetDefault("download.retries", defaults.Download.Retries)
	v.SetDefault("download.timeout", defaults.Download.Timeout)
	v.SetDefault("download.progress", defaults.Download.Progress)
	v.SetDefault("log.level", string(defaults.Log.Level))
	v.SetDefault("log.format", string(defaults.Log.Format))
	v.SetDefault("metrics.textfile", defaults.Metrics.Textfile)

	// Every key has a default, so AutomaticEnv sees all of them on Unmarshal.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadWithOptions performs option-driven config loading and reports the file
// it read, if any.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()
	resolvedPath := ""

	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'bundlekit config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cuePath, err := FilePath(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}
		switch {
		case fileExists(cuePath):
			resolvedPath = cuePath
		case fileExists(ConfigFileName + "." + ConfigFileExt):
			resolvedPath = ConfigFileName + "." + ConfigFileExt
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'bundlekit issue config-invalid' for the list of keys").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check the " + EnvPrefix + "_* environment variables").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates the file at path against #Config and merges it
// over the defaults. Fields are optional, so the document is decoded without
// requiring concrete values.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.Decode[map[string]any](configSchema, data, "#Config",
		cueutil.WithConcrete(false),
		cueutil.WithFilename(path),
	)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration into dir (ConfigDir
// when empty) unless a file already exists. It returns the file path and
// whether it was created.
func CreateDefaultConfig(dir string) (string, bool, error) {
	cfgPath, err := FilePath(dir)
	if err != nil {
		return "", false, err
	}

	if fileExists(cfgPath) {
		return cfgPath, false, nil
	}

	if err := Save(cfgPath, DefaultConfig()); err != nil {
		return "", false, err
	}
	return cfgPath, true, nil
}

// Save writes cfg as CUE to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a CUE document accepted by the schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// bundlekit configuration\n")
	sb.WriteString("// Environment variables such as BUNDLEKIT_ESBUILD_VERSION override these values.\n\n")

	sb.WriteString("esbuild: {\n")
	fmt.Fprintf(&sb, "\tversion: %q\n", cfg.Esbuild.Version)
	if cfg.Esbuild.DownloadURL != "" {
		fmt.Fprintf(&sb, "\tdownload_url: %q\n", cfg.Esbuild.DownloadURL)
	}
	if cfg.Esbuild.Integrity != "" {
		fmt.Fprintf(&sb, "\tintegrity: %q\n", cfg.Esbuild.Integrity)
	}
	fmt.Fprintf(&sb, "\tverify: %v\n", cfg.Esbuild.Verify)
	if cfg.Esbuild.CacheDir != "" {
		fmt.Fprintf(&sb, "\tcache_dir: %q\n", cfg.Esbuild.CacheDir)
	}
	if cfg.Esbuild.S3.Region != "" || cfg.Esbuild.S3.Endpoint != "" {
		sb.WriteString("\ts3: {\n")
		if cfg.Esbuild.S3.Region != "" {
			fmt.Fprintf(&sb, "\t\tregion: %q\n", cfg.Esbuild.S3.Region)
		}
		if cfg.Esbuild.S3.Endpoint != "" {
			fmt.Fprintf(&sb, "\t\tendpoint: %q\n", cfg.Esbuild.S3.Endpoint)
		}
		sb.WriteString("\t}\n")
	}
	sb.WriteString("}\n")

	sb.WriteString("\ninstall: {\n")
	fmt.Fprintf(&sb, "\tnode_modules: %q\n", cfg.Install.NodeModules)
	sb.WriteString("\tcomposite_groups: [")
	for i, g := range cfg.Install.CompositeGroups {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%q", g)
	}
	sb.WriteString("]\n")
	fmt.Fprintf(&sb, "\tlock: %v\n", cfg.Install.Lock)
	sb.WriteString("}\n")

	sb.WriteString("\ndownload: {\n")
	fmt.Fprintf(&sb, "\tretries: %d\n", cfg.Download.Retries)
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.Download.Timeout.String())
	fmt.Fprintf(&sb, "\tprogress: %v\n", cfg.Download.Progress)
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Log.Level)
	fmt.Fprintf(&sb, "\tformat: %q\n", cfg.Log.Format)
	sb.WriteString("}\n")

	if cfg.Metrics.Textfile != "" {
		sb.WriteString("\nmetrics: {\n")
		fmt.Fprintf(&sb, "\ttextfile: %q\n", cfg.Metrics.Textfile)
		sb.WriteString("}\n")
	}

	return sb.String()
}
