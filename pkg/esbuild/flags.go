// SPDX-License-Identifier: MPL-2.0

package esbuild

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"unicode"
)

type (
	// flagSpec binds one Config field to its flag and JSON encodings.
	flagSpec struct {
		// key is the camelCase JSON key; the flag name is its kebab form.
		key  string
		flag string
		// args appends the command-line form of the field, if set.
		args func(c *Config, out []string) []string
		// value returns the JSON value and whether it should be emitted.
		value func(c *Config) (any, bool)
	}
)

// flagTable lists the Config fields in flag order.
//
//nolint:gochecknoglobals // built once, read-only
var flagTable = []flagSpec{
	boolFlag("bundle", func(c *Config) bool { return c.Bundle }),
	positional("entryPoints", func(c *Config) []string { return c.EntryPoints }),
	boolFlag("minify", func(c *Config) bool { return c.Minify }),
	mapFlag("loader", func(c *Config) map[string]string { return loaderMap(c.Loader) }),
	boolFlag("preserveSymlinks", func(c *Config) bool { return c.PreserveSymlinks }),
	enumFlag("target", func(c *Config) string { return c.Target }),
	stringFlag("outdir", func(c *Config) string { return c.Outdir }),
	enumFlag("packages", func(c *Config) string { return c.Packages }),
	enumFlag("platform", func(c *Config) string { return string(c.Platform) }),
	withoutJSON(boolFlag("serve", func(c *Config) bool { return c.Serve })),
	boolFlag("sourcemap", func(c *Config) bool { return c.Sourcemap }),
	boolFlag("splitting", func(c *Config) bool { return c.Splitting }),
	mapFlag("alias", func(c *Config) map[string]string { return c.Alias }),
	mapFlag("define", func(c *Config) map[string]string { return c.Define }),
	enumFlag("format", func(c *Config) string { return string(c.Format) }),
	stringFlag("chunkNames", func(c *Config) string { return c.ChunkNames }),
	stringFlag("entryNames", func(c *Config) string { return c.EntryNames }),
	stringFlag("assetNames", func(c *Config) string { return c.AssetNames }),
	stringFlag("publicPath", func(c *Config) string { return c.PublicPath }),
	listFlag("external", func(c *Config) []string { return c.External }),
}

// Args returns the command-line arguments for c. Entry points are
// positional.
func (c *Config) Args() []string {
	var out []string
	for _, f := range flagTable {
		out = f.args(c, out)
	}
	return out
}

// JSON returns c as a JSON object keyed by camelCase field names, for
// script-based runners. Booleans are always present; empty values are
// omitted.
func (c *Config) JSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, f := range flagTable {
		if f.value == nil {
			continue
		}
		v, ok := f.value(c)
		if !ok {
			continue
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, _ := json.Marshal(f.key) //nolint:errcheck // strings always marshal
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func boolFlag(key string, get func(*Config) bool) flagSpec {
	f := flagSpec{key: key, flag: kebab(key)}
	f.args = func(c *Config, out []string) []string {
		if get(c) {
			out = append(out, "--"+f.flag)
		}
		return out
	}
	f.value = func(c *Config) (any, bool) { return get(c), true }
	return f
}

// stringFlag emits --name=value verbatim.
func stringFlag(key string, get func(*Config) string) flagSpec {
	f := flagSpec{key: key, flag: kebab(key)}
	f.args = func(c *Config, out []string) []string {
		if v := get(c); v != "" {
			out = append(out, "--"+f.flag+"="+v)
		}
		return out
	}
	f.value = func(c *Config) (any, bool) {
		v := get(c)
		return v, v != ""
	}
	return f
}

// enumFlag emits --name=value with the value lowercased.
func enumFlag(key string, get func(*Config) string) flagSpec {
	return stringFlag(key, func(c *Config) string { return strings.ToLower(get(c)) })
}

// listFlag emits --name:item for each item.
func listFlag(key string, get func(*Config) []string) flagSpec {
	f := flagSpec{key: key, flag: kebab(key)}
	f.args = func(c *Config, out []string) []string {
		for _, item := range get(c) {
			out = append(out, "--"+f.flag+":"+item)
		}
		return out
	}
	f.value = func(c *Config) (any, bool) {
		v := get(c)
		return v, len(v) > 0
	}
	return f
}

// mapFlag emits --name:key=value in key order. Underscores in values become
// dashes.
func mapFlag(key string, get func(*Config) map[string]string) flagSpec {
	f := flagSpec{key: key, flag: kebab(key)}
	f.args = func(c *Config, out []string) []string {
		m := get(c)
		for _, k := range sortedKeys(m) {
			out = append(out, "--"+f.flag+":"+k+"="+strings.ReplaceAll(m[k], "_", "-"))
		}
		return out
	}
	f.value = func(c *Config) (any, bool) {
		m := get(c)
		if len(m) == 0 {
			return nil, false
		}
		dashed := make(map[string]string, len(m))
		for k, v := range m {
			dashed[k] = strings.ReplaceAll(v, "_", "-")
		}
		return dashed, true
	}
	return f
}

func positional(key string, get func(*Config) []string) flagSpec {
	f := listFlag(key, get)
	f.args = func(c *Config, out []string) []string {
		return append(out, get(c)...)
	}
	return f
}

func withoutJSON(f flagSpec) flagSpec {
	f.value = nil
	return f
}

func loaderMap(m map[string]Loader) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = strings.ToLower(string(v))
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// kebab converts a camelCase name to kebab-case.
func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
