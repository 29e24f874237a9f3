// SPDX-License-Identifier: MPL-2.0

package issue

//nolint:gochecknoglobals // catalog
var issues = map[Id]*Issue{
	ArchiveUnsafePathId: {
		id: ArchiveUnsafePathId,
		mdMsg: `
# Archive entry escapes the extraction directory

One of the dependency archives contains an entry whose path would be written
outside of the directory it is being extracted into (for example
` + "`../../etc/passwd`" + `). Extraction was stopped before that entry was written.

## Things you can try
- Check where the jar or tarball came from; a legitimate WebJar or mvnpm
  artifact never contains such entries.
- Download the artifact again from the repository and compare its checksum.`,
		extLinks: []HttpLink{"https://security.snyk.io/research/zip-slip-vulnerability"},
	},

	IncompatiblePackagingId: {
		id: IncompatiblePackagingId,
		mdMsg: `
# Incompatible mvnpm packaging

The artifact declares an ` + "`mvnpm.packaging`" + ` version in its
` + "`pom.properties`" + ` that this version of bundlekit does not understand.

## Things you can try
- Upgrade bundlekit.
- Pin the dependency to an older release of the artifact.`,
		docLinks: []HttpLink{"https://mvnpm.org"},
	},

	PackageRootNotFoundId: {
		id: PackageRootNotFoundId,
		mdMsg: `
# No package root found

No ` + "`package.json`" + ` (and, for mvnpm artifacts, no usable
` + "`META-INF/importmap.json`" + `) was found in the artifact. The dependency
was skipped and nothing was installed for it.

## Things you can try
- Make sure the jar is a WebJar or mvnpm artifact and not, e.g., a sources jar.
- Run ` + "`bundlekit manifest`" + ` to see what was installed.`,
	},

	ResolutionFailedId: {
		id: ResolutionFailedId,
		mdMsg: `
# esbuild could not be resolved

No bundled archive or cached executable was available and the download
failed.

## Things you can try
- Check network access to the npm registry, or configure a mirror:
~~~cue
esbuild: download_url: "https://mirror.example.com/@esbuild/{classifier}/-/{archive}"
~~~
- Point ` + "`esbuild.cache_dir`" + ` at a directory that already contains ` + "`esbuild-<version>`" + `.
- Verify the version exists: ` + "`bundlekit resolve --version 0.25.0`" + `.`,
		docLinks: []HttpLink{"https://esbuild.github.io/getting-started/#download-a-build"},
	},

	UnsupportedPlatformId: {
		id: UnsupportedPlatformId,
		mdMsg: `
# Platform not supported

esbuild builds are only resolved for Linux, macOS and Windows on x64 and
arm64.

## Things you can try
- Install esbuild yourself and place it in
  ` + "`<cache_dir>/esbuild-<version>/package/bin/esbuild`" + `.`,
	},

	IntegrityMismatchId: {
		id: IntegrityMismatchId,
		mdMsg: `
# Download integrity check failed

The downloaded tarball does not match the expected digest. The file was
deleted.

## Things you can try
- Retry; the download may have been truncated.
- If you pinned ` + "`esbuild.integrity`" + `, make sure it belongs to this version and platform.
- Set ` + "`esbuild.verify: false`" + ` only when downloading from a trusted mirror.`,
		extLinks: []HttpLink{"https://developer.mozilla.org/en-US/docs/Web/Security/Subresource_Integrity"},
	},

	ConfigInvalidId: {
		id: ConfigInvalidId,
		mdMsg: `
# Invalid configuration

The configuration file does not match the schema.

## Keys
~~~cue
esbuild: {
	version:      "0.25.0"
	download_url: ""        // npm registry by default
	integrity:    ""        // e.g. "sha512-..."
	verify:       true
	cache_dir:    ""        // system temp dir by default
	s3: {region: "", endpoint: ""}
}
install: {
	node_modules:     "node_modules"
	composite_groups: ["org.mvnpm.at.mvnpm"]
	lock:             true
}
download: {retries: 3, timeout: "2m", progress: true}
log: {level: "info", format: "text"}
metrics: textfile: ""
~~~

## Things you can try
- Print the effective configuration: ` + "`bundlekit config show`" + `.
- Write a fresh default file: ` + "`bundlekit config init`" + `.`,
		docLinks: []HttpLink{"https://cuelang.org/docs/"},
	},

	ProjectFileInvalidId: {
		id: ProjectFileInvalidId,
		mdMsg: `
# Invalid bundlekit.toml

## Example
~~~toml
node_modules = "node_modules"

[esbuild]
version = "0.25.0"
entry_points = ["src/app.js"]
outdir = "dist"

[[dependency]]
path = "libs/lit-3.1.0.jar"
~~~

Each dependency needs a ` + "`path`" + `; ` + "`id`" + ` and ` + "`kind`" + ` are derived
from it when omitted.`,
		extLinks: []HttpLink{"https://toml.io/en/v1.0.0"},
	},

	LockBusyId: {
		id: LockBusyId,
		mdMsg: `
# Target directory is locked

Another bundlekit process is synchronizing the same target directory.

## Things you can try
- Wait for the other process to finish.
- If none is running, the lock is released automatically; a stale
  ` + "`.<dir>.lock`" + ` file next to the target is harmless.
- Pass ` + "`--no-lock`" + ` when you serialize runs yourself.`,
	},

	BuildFailedId: {
		id: BuildFailedId,
		mdMsg: `
# esbuild failed

esbuild exited with a non-zero status. Its output is shown above.

## Things you can try
- Rerun with ` + "`--verbose`" + ` to see the exact command line.
- Check the ` + "`[esbuild]`" + ` section of bundlekit.toml.`,
		docLinks: []HttpLink{"https://esbuild.github.io/api/"},
	},
}
