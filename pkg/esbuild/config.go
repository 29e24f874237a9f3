// SPDX-License-Identifier: MPL-2.0

package esbuild

// Output formats.
const (
	FormatIIFE Format = "iife"
	FormatCJS  Format = "cjs"
	FormatESM  Format = "esm"
)

// Target platforms.
const (
	PlatformBrowser Platform = "browser"
	PlatformNode    Platform = "node"
	PlatformNeutral Platform = "neutral"
)

// Content loaders.
const (
	LoaderBase64    Loader = "base64"
	LoaderBinary    Loader = "binary"
	LoaderCopy      Loader = "copy"
	LoaderCSS       Loader = "css"
	LoaderDataURL   Loader = "dataurl"
	LoaderLocalCSS  Loader = "local-css"
	LoaderGlobalCSS Loader = "global-css"
	LoaderEmpty     Loader = "empty"
	LoaderFile      Loader = "file"
	LoaderJS        Loader = "js"
	LoaderJSON      Loader = "json"
	LoaderJSX       Loader = "jsx"
	LoaderText      Loader = "text"
	LoaderTS        Loader = "ts"
	LoaderTSX       Loader = "tsx"
)

type (
	// Format is the esbuild --format value.
	Format string

	// Platform is the esbuild --platform value.
	Platform string

	// Loader is an esbuild content loader name.
	Loader string

	// Config holds the esbuild options bundlekit understands. Field order
	// matches the flag order produced by Args.
	Config struct {
		Bundle           bool              `toml:"bundle"`
		EntryPoints      []string          `toml:"entry_points"`
		Minify           bool              `toml:"minify"`
		Loader           map[string]Loader `toml:"loader"`
		PreserveSymlinks bool              `toml:"preserve_symlinks"`
		Target           string            `toml:"target"`
		Outdir           string            `toml:"outdir"`
		Packages         string            `toml:"packages"`
		Platform         Platform          `toml:"platform"`
		Serve            bool              `toml:"serve"`
		Sourcemap        bool              `toml:"sourcemap"`
		Splitting        bool              `toml:"splitting"`
		Alias            map[string]string `toml:"alias"`
		Define           map[string]string `toml:"define"`
		Format           Format            `toml:"format"`
		ChunkNames       string            `toml:"chunk_names"`
		EntryNames       string            `toml:"entry_names"`
		AssetNames       string            `toml:"asset_names"`
		PublicPath       string            `toml:"public_path"`
		External         []string          `toml:"external"`
	}
)

// DefaultLoaders maps the file extensions bundled web assets commonly use to
// their loaders.
func DefaultLoaders() map[string]Loader {
	return map[string]Loader{
		".css":   LoaderCSS,
		".json":  LoaderJSON,
		".jsx":   LoaderJSX,
		".tsx":   LoaderTSX,
		".ts":    LoaderTS,
		".js":    LoaderJS,
		".svg":   LoaderFile,
		".gif":   LoaderFile,
		".png":   LoaderFile,
		".jpg":   LoaderFile,
		".woff":  LoaderFile,
		".woff2": LoaderFile,
		".ttf":   LoaderFile,
		".eot":   LoaderFile,
	}
}

// DefaultConfig returns a minified, split ESM bundle with hashed names and
// the default loaders.
func DefaultConfig() Config {
	return Config{
		Bundle:     true,
		Minify:     true,
		Sourcemap:  true,
		Splitting:  true,
		Format:     FormatESM,
		EntryNames: "[name]-[hash]",
		AssetNames: "assets/[name]-[hash]",
		Loader:     DefaultLoaders(),
	}
}
