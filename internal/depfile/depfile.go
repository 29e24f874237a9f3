// SPDX-License-Identifier: MPL-2.0

// Package depfile reads bundlekit.toml, the per-project declaration of web
// dependency archives and esbuild options.
package depfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bundlekit/bundlekit/pkg/esbuild"
	"github.com/bundlekit/bundlekit/pkg/webdep"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the conventional project file name.
const FileName = "bundlekit.toml"

var (
	// ErrInvalid is wrapped by every validation failure.
	ErrInvalid = errors.New("invalid project file")
	// ErrUnknownKind is returned when a dependency kind cannot be derived.
	ErrUnknownKind = errors.New("cannot derive dependency kind")
)

type (
	// File is a decoded bundlekit.toml.
	File struct {
		// NodeModules overrides the configured target directory.
		NodeModules  string       `toml:"node_modules,omitempty"`
		Esbuild      Esbuild      `toml:"esbuild"`
		Dependencies []Dependency `toml:"dependency"`

		// dir is the directory relative paths are resolved against.
		dir string
	}

	// Esbuild holds the build options. Keys absent from the file keep the
	// values of esbuild.DefaultConfig.
	Esbuild struct {
		Version string `toml:"version,omitempty"`
		esbuild.Config
	}

	// Dependency is one [[dependency]] entry.
	Dependency struct {
		ID   string `toml:"id,omitempty"`
		Path string `toml:"path"`
		Kind string `toml:"kind,omitempty"`
	}

	// FieldError reports a problem with one entry.
	FieldError struct {
		Path  string
		Field string
		Err   error
	}
)

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Field, e.Err)
}

// Unwrap returns the cause and ErrInvalid.
func (e *FieldError) Unwrap() []error {
	return []error{ErrInvalid, e.Err}
}

// Load reads and validates the project file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}
	f, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes data; relative dependency paths are resolved against dir.
// Unknown keys are rejected.
func Parse(data []byte, dir string) (*File, error) {
	f := &File{
		Esbuild: Esbuild{Config: esbuild.DefaultConfig()},
		dir:     dir,
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: unknown keys:\n%s", ErrInvalid, strict.String())
		}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return nil, fmt.Errorf("%w: line %d, column %d: %s", ErrInvalid, row, col, de.Error())
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) validate() error {
	var errs []error
	seen := make(map[string]int)
	for i, d := range f.Dependencies {
		path := fmt.Sprintf("dependency[%d]", i)
		if strings.TrimSpace(d.Path) == "" {
			errs = append(errs, &FieldError{Path: path, Field: "path", Err: errors.New("must not be empty")})
			continue
		}
		if d.Kind != "" {
			if _, err := webdep.ParseKind(d.Kind); err != nil {
				errs = append(errs, &FieldError{Path: path, Field: "kind", Err: err})
			}
		}
		if d.ID == "" {
			continue
		}
		if first, dup := seen[d.ID]; dup {
			errs = append(errs, &FieldError{
				Path: path, Field: "id",
				Err: fmt.Errorf("%q already declared by dependency[%d]", d.ID, first),
			})
			continue
		}
		seen[d.ID] = i
	}
	return errors.Join(errs...)
}

// Dir returns the directory the file was loaded from.
func (f *File) Dir() string {
	return f.dir
}

// Resolve makes p absolute relative to the project directory.
func (f *File) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(f.dir, p)
}

// WebDependencies converts the entries into synchronizer input, deriving
// missing ids and kinds.
func (f *File) WebDependencies() ([]webdep.WebDependency, error) {
	deps := make([]webdep.WebDependency, 0, len(f.Dependencies))
	for i, d := range f.Dependencies {
		archive := f.Resolve(d.Path)

		kind, err := d.kind(archive)
		if err != nil {
			return nil, &FieldError{Path: fmt.Sprintf("dependency[%d]", i), Field: "kind", Err: err}
		}

		if d.ID != "" {
			deps = append(deps, webdep.New(d.ID, archive, kind))
		} else {
			deps = append(deps, webdep.FromPath(archive, kind))
		}
	}
	return deps, nil
}

// kind returns the declared kind, else the one implied by the Maven group of
// the id or of the repository path.
func (d Dependency) kind(archive string) (webdep.Kind, error) {
	if d.Kind != "" {
		return webdep.ParseKind(d.Kind)
	}
	if gav, err := webdep.ParseGAV(d.ID); err == nil {
		if k, ok := webdep.KindForGroup(gav.GroupID); ok {
			return k, nil
		}
	}
	if gav, ok := webdep.ParseRepositoryPath(archive); ok {
		if k, ok := webdep.KindForGroup(gav.GroupID); ok {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w for %s: set kind = \"mvnpm\" or \"webjars\"", ErrUnknownKind, d.Path)
}

// EsbuildVersion returns the pinned version or fallback.
func (f *File) EsbuildVersion(fallback string) string {
	if f.Esbuild.Version != "" {
		return f.Esbuild.Version
	}
	return fallback
}
