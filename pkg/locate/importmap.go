// SPDX-License-Identifier: MPL-2.0

package locate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	// ImportMapFile is the archive-relative location of the import map.
	ImportMapFile = "META-INF/importmap.json"

	// importMapBase is the directory import-map values are relative to.
	importMapBase = "META-INF/resources"

	defaultVersion = "0.0.0"
)

const importMapSchema = `{
  "type": "object",
  "required": ["imports"],
  "properties": {
    "imports": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  }
}`

var errNoScript = errors.New("import map declares no script")

// importMap is the decoded import map.
type importMap struct {
	Imports map[string]string `json:"imports"`
}

// syntheticPackage is the minimal package.json written for import-map
// packages.
type syntheticPackage struct {
	Name    string          `json:"name"`
	Version string          `json:"version"`
	Main    string          `json:"main"`
	Browser map[string]bool `json:"browser"`
}

func readImportMap(path string) (*importMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := validateImportMap(raw); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}

	var m importMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &m, nil
}

func validateImportMap(v any) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("importmap.schema.json", bytes.NewReader([]byte(importMapSchema))); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile("importmap.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	return schema.Validate(v)
}

// importMapPackage is a package inferred from an import map.
type importMapPackage struct {
	name string
	root string // archive-relative, slash separated
	main string
}

// packagesFromImportMap infers package roots. Trailing-slash specifiers
// ("lit/" -> "/_static/lit/3.1.0/") name roots directly; the bare
// specifier of the same package supplies the main entry. Without any
// trailing-slash specifier the first script entry is used.
func packagesFromImportMap(m *importMap) ([]importMapPackage, error) {
	keys := make([]string, 0, len(m.Imports))
	for k := range m.Imports {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pkgs []importMapPackage
	for _, k := range keys {
		if !strings.HasSuffix(k, "/") || len(k) < 2 {
			continue
		}
		name := strings.TrimSuffix(k, "/")
		root := strings.TrimSuffix(m.Imports[k], "/") + "/"
		main := "index.js"
		if v, ok := m.Imports[name]; ok {
			main = mainEntry(name, root, v)
		}
		pkgs = append(pkgs, importMapPackage{name: name, root: root, main: main})
	}
	if len(pkgs) > 0 {
		return pkgs, nil
	}

	for _, k := range keys {
		v := m.Imports[k]
		if !strings.Contains(v, ".js") {
			continue
		}
		var root string
		if i := strings.Index(v, k); i >= 0 {
			root = v[:i+len(k)] + "/"
		} else {
			root = v[:strings.LastIndex(v, "/")+1]
		}
		return []importMapPackage{{name: k, root: root, main: mainEntry(k, root, v)}}, nil
	}
	return nil, errNoScript
}

// mainEntry returns the script path relative to the package root, falling
// back to the part following "<name>/" in the value.
func mainEntry(name, root, value string) string {
	if strings.HasPrefix(value, root) {
		return strings.TrimPrefix(value, root)
	}
	if i := strings.Index(value, name); i >= 0 && i+len(name)+1 <= len(value) {
		return value[i+len(name)+1:]
	}
	return value
}

// rootDir resolves an import-map value against the extraction directory
// and rejects values that escape it.
func rootDir(extractedDir, value string) (string, bool) {
	rel := strings.TrimPrefix(value, "/")
	rel = strings.TrimPrefix(rel, "./")
	base := filepath.Join(extractedDir, filepath.FromSlash(importMapBase))
	dir := filepath.Join(base, filepath.FromSlash(rel))
	r, err := filepath.Rel(extractedDir, dir)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	return dir, true
}

func writePackageJSON(dir, name, version, main string) error {
	pkg := syntheticPackage{
		Name:    name,
		Version: version,
		Main:    main,
		Browser: map[string]bool{"fs": false, "path": false, "os": false},
	}
	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, PackageJSON), append(data, '\n'), 0o644)
}
