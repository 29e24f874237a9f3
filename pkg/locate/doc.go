// SPDX-License-Identifier: MPL-2.0

// Package locate finds the importable package roots inside an extracted
// dependency artifact.
//
// Discovery runs in three steps: the artifact coordinates are read from an
// embedded pom.properties (rejecting unsupported packaging markers), the
// kind-specific resource prefix is searched breadth-first for package.json
// files, and for mvnpm artifacts without any package.json an import map is
// used to synthesize one.
package locate
