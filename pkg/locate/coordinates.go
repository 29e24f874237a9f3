// SPDX-License-Identifier: MPL-2.0

package locate

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/magiconair/properties"
	"golang.org/x/mod/semver"
)

const (
	// PomProperties is the coordinate file Maven embeds in every jar.
	PomProperties = "pom.properties"
	// MarkerKey carries the packaging-format version of mvnpm artifacts.
	MarkerKey = "mvnpm.packagingVersion"
)

// ErrIncompatiblePackaging is wrapped by IncompatiblePackagingError.
var ErrIncompatiblePackaging = errors.New("incompatible packaging format")

// IncompatiblePackagingError is returned when an artifact declares a
// packaging-format major version this tool cannot install.
type IncompatiblePackagingError struct {
	ID     string
	Marker string
}

// Error implements the error interface.
func (e *IncompatiblePackagingError) Error() string {
	return fmt.Sprintf("dependency %s uses packaging format %q which is not supported; upgrade bundlekit or pin an older version of the dependency", e.ID, e.Marker)
}

// Unwrap returns ErrIncompatiblePackaging.
func (e *IncompatiblePackagingError) Unwrap() error {
	return ErrIncompatiblePackaging
}

// Coordinates are the Maven coordinates read from pom.properties.
type Coordinates struct {
	GroupID    string
	ArtifactID string
	Version    string
	// Marker is the packaging-format version, empty when absent.
	Marker string
}

// ReadCoordinates returns the coordinates of the first pom.properties found
// breadth-first under dir, preferring META-INF/maven. The boolean is false
// when the artifact carries none.
func ReadCoordinates(dir string) (Coordinates, bool, error) {
	var hits []string
	var err error
	for _, root := range []string{filepath.Join(dir, "META-INF", "maven"), dir} {
		hits, err = breadthFirst(root, named(PomProperties), false)
		if err != nil {
			return Coordinates{}, false, err
		}
		if len(hits) > 0 {
			break
		}
	}
	if len(hits) == 0 {
		return Coordinates{}, false, nil
	}

	p, err := properties.LoadFile(hits[0], properties.UTF8)
	if err != nil {
		return Coordinates{}, false, fmt.Errorf("reading %s: %w", hits[0], err)
	}
	return Coordinates{
		GroupID:    p.GetString("groupId", ""),
		ArtifactID: p.GetString("artifactId", ""),
		Version:    p.GetString("version", ""),
		Marker:     strings.TrimSpace(p.GetString(MarkerKey, "")),
	}, true, nil
}

// checkMarker validates the packaging marker major against supported.
func checkMarker(id string, c Coordinates, supported []string) error {
	if c.Marker == "" {
		return nil
	}
	v := c.Marker
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	major := semver.Major(v)
	if major == "" || !slices.Contains(supported, major) {
		return &IncompatiblePackagingError{ID: id, Marker: c.Marker}
	}
	return nil
}
