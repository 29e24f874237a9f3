// SPDX-License-Identifier: MPL-2.0

package webdep

import (
	"fmt"
	"strings"
)

// GAV is a Maven coordinate.
type GAV struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// String returns "group:artifact:version".
func (g GAV) String() string {
	return g.GroupID + ":" + g.ArtifactID + ":" + g.Version
}

// ParseGAV parses "group:artifact:version".
func ParseGAV(s string) (GAV, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return GAV{}, fmt.Errorf("invalid coordinate %q: want group:artifact:version", s)
	}
	for _, p := range parts {
		if p == "" {
			return GAV{}, fmt.Errorf("invalid coordinate %q: empty component", s)
		}
	}
	return GAV{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
}

// ParseRepositoryPath extracts the coordinate of a jar stored in a Maven
// repository layout under org/mvnpm or org/webjars:
//
//	.../org/mvnpm/at/lit/lit/3.1.0/lit-3.1.0.jar -> org.mvnpm.at.lit:lit:3.1.0
func ParseRepositoryPath(p string) (GAV, bool) {
	// Backslashes are normalized regardless of host OS.
	segs := strings.Split(strings.ReplaceAll(p, `\`, "/"), "/")
	if len(segs) < 5 {
		return GAV{}, false
	}

	n := len(segs)
	file, version, artifact := segs[n-1], segs[n-2], segs[n-3]
	if file != artifact+"-"+version+".jar" {
		return GAV{}, false
	}

	start := -1
	for i := 0; i+1 < n-3; i++ {
		if segs[i] == "org" && (segs[i+1] == "mvnpm" || segs[i+1] == "webjars") {
			start = i
		}
	}
	if start < 0 {
		return GAV{}, false
	}

	return GAV{
		GroupID:    strings.Join(segs[start:n-3], "."),
		ArtifactID: artifact,
		Version:    version,
	}, true
}
